// Package report builds read-only summaries over the transaction log.
// Nothing here mutates the store.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"k9log/internal/ledger"
)

// WeeklySummary covers the trailing 7 days ending at the reference time.
type WeeklySummary struct {
	WalkCount          int
	WalkTotal          decimal.Decimal
	PaymentCreditTotal decimal.Decimal
}

// FullReport is the all-time view: every transaction newest first plus
// the derived totals shown in the detailed report.
type FullReport struct {
	Transactions       []ledger.Transaction
	WalkCount          int
	WalkTotal          decimal.Decimal
	PaymentCreditTotal decimal.Decimal
	Balance            decimal.Decimal
}

// Aggregator answers the report queries against a ledger store.
type Aggregator struct {
	store ledger.Store
}

func New(store ledger.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Weekly summarizes the trailing 7 days ending at ref. The window is
// date-granular: entries dated from seven days before ref through ref
// itself are included.
func (a *Aggregator) Weekly(ref time.Time) (WeeklySummary, error) {
	sum, err := a.store.Summarize(ref.AddDate(0, 0, -7), ref)
	if err != nil {
		return WeeklySummary{}, err
	}
	return WeeklySummary{
		WalkCount:          sum.WalkCount,
		WalkTotal:          sum.WalkTotal,
		PaymentCreditTotal: sum.PaymentCreditTotal,
	}, nil
}

// Full returns the complete log, newest first, with derived totals.
func (a *Aggregator) Full() (FullReport, error) {
	transactions, err := a.store.AllTransactions(ledger.Descending)
	if err != nil {
		return FullReport{}, err
	}
	balance, err := a.store.CurrentBalance()
	if err != nil {
		return FullReport{}, err
	}
	sum := ledger.Summarize(transactions)
	return FullReport{
		Transactions:       transactions,
		WalkCount:          sum.WalkCount,
		WalkTotal:          sum.WalkTotal,
		PaymentCreditTotal: sum.PaymentCreditTotal,
		Balance:            balance,
	}, nil
}

// EntriesInRange lists transactions dated within [from, to], ascending.
// Used as the preview step before a range cleanup.
func (a *Aggregator) EntriesInRange(from, to time.Time) ([]ledger.Transaction, error) {
	return a.store.EntriesInRange(from, to)
}

// Recent lists the n newest transactions. Used as the preview step
// before a "last N entries" cleanup.
func (a *Aggregator) Recent(n int) ([]ledger.Transaction, error) {
	return a.store.RecentEntries(n)
}
