package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"k9log/internal/ledger"
	"k9log/internal/storage/memory"
)

func seed(t *testing.T, store *memory.Store, day string, kind ledger.Kind, amount int64) {
	t.Helper()
	at, err := ledger.ParseDate(day)
	if err != nil {
		t.Fatalf("bad date %s: %v", day, err)
	}
	store.Now = func() time.Time { return at.Add(12 * time.Hour) }
	if _, err := store.Append(kind, decimal.NewFromInt(amount), ""); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestWeeklyWindowIsTrailingSevenDays(t *testing.T) {
	store := memory.New()

	seed(t, store, "2024-03-01", ledger.KindWalk, 75)   // outside
	seed(t, store, "2024-03-03", ledger.KindWalk, 75)   // inside (boundary)
	seed(t, store, "2024-03-07", ledger.KindWalk, 75)   // inside
	seed(t, store, "2024-03-08", ledger.KindPayment, 30)
	seed(t, store, "2024-03-10", ledger.KindCreditGiven, 20)

	ref := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	weekly, err := New(store).Weekly(ref)
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if weekly.WalkCount != 2 {
		t.Errorf("WalkCount = %d, want 2", weekly.WalkCount)
	}
	if !weekly.WalkTotal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("WalkTotal = %s, want 150", weekly.WalkTotal)
	}
	if !weekly.PaymentCreditTotal.Equal(decimal.NewFromInt(50)) {
		t.Errorf("PaymentCreditTotal = %s, want 50", weekly.PaymentCreditTotal)
	}
}

func TestFullReportTotals(t *testing.T) {
	store := memory.New()

	seed(t, store, "2024-03-01", ledger.KindWalk, 75)
	seed(t, store, "2024-03-02", ledger.KindWalk, 75)
	seed(t, store, "2024-03-03", ledger.KindPayment, 100)

	full, err := New(store).Full()
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if full.WalkCount != 2 {
		t.Errorf("WalkCount = %d, want 2", full.WalkCount)
	}
	if !full.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Balance = %s, want 50", full.Balance)
	}
	if !full.PaymentCreditTotal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("PaymentCreditTotal = %s, want 100", full.PaymentCreditTotal)
	}
	if len(full.Transactions) != 3 {
		t.Fatalf("%d transactions, want 3", len(full.Transactions))
	}
	// newest first
	if full.Transactions[0].Kind != ledger.KindPayment {
		t.Errorf("first transaction = %s, want the newest (payment)", full.Transactions[0].Kind)
	}
}

func TestRecentDelegatesOrdering(t *testing.T) {
	store := memory.New()
	seed(t, store, "2024-03-01", ledger.KindWalk, 75)
	seed(t, store, "2024-03-05", ledger.KindWalk, 75)

	entries, err := New(store).Recent(5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("%d entries, want 2", len(entries))
	}
	if !entries[0].Timestamp.After(entries[1].Timestamp) {
		t.Fatal("entries not newest-first")
	}
}
