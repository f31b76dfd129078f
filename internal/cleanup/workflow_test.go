package cleanup

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"k9log/internal/ledger"
	"k9log/internal/storage/memory"
)

const (
	adminID = "admin-1"
	userID  = "user-2"
)

func newWorkflow(store ledger.Store, admins ...string) *Workflow {
	allowed := make(map[string]bool)
	for _, id := range admins {
		allowed[id] = true
	}
	w := New(store, func(id string) bool { return allowed[id] }, nil)
	w.now = func() time.Time { return time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC) }
	return w
}

func seedWalk(t *testing.T, store *memory.Store, day string) ledger.Transaction {
	t.Helper()
	at, err := ledger.ParseDate(day)
	if err != nil {
		t.Fatalf("bad date %s: %v", day, err)
	}
	store.Now = func() time.Time { return at.Add(9 * time.Hour) }
	tx, err := store.Append(ledger.KindWalk, decimal.NewFromInt(75), "Dog walk")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return tx
}

func logSize(t *testing.T, store ledger.Store) int {
	t.Helper()
	log, err := store.AllTransactions(ledger.Ascending)
	if err != nil {
		t.Fatalf("AllTransactions: %v", err)
	}
	return len(log)
}

func TestNonAdminDeniedAtEntry(t *testing.T) {
	store := memory.New()
	seedWalk(t, store, "2024-03-09")
	w := newWorkflow(store, adminID)

	reply := w.Start(userID)
	if !reply.Terminal {
		t.Fatal("denial should be terminal")
	}
	if !strings.Contains(reply.Text, "admin") {
		t.Fatalf("denial text = %q", reply.Text)
	}
	if w.Active(userID) {
		t.Fatal("no session should exist for a denied identity")
	}
	if logSize(t, store) != 1 {
		t.Fatal("log must be unchanged")
	}
}

func TestAdminRevokedMidSessionIsDenied(t *testing.T) {
	store := memory.New()
	seedWalk(t, store, "2024-03-09")

	allowed := map[string]bool{adminID: true}
	w := New(store, func(id string) bool { return allowed[id] }, nil)
	w.now = func() time.Time { return time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC) }

	w.Start(adminID)
	reply := w.Handle(adminID, "1")
	if reply.Terminal {
		t.Fatalf("expected preview, got terminal reply %q", reply.Text)
	}

	// Role changes between steps; the confirm step is the boundary.
	allowed[adminID] = false
	reply = w.Handle(adminID, "yes")
	if !reply.Terminal || !strings.Contains(reply.Text, "admin") {
		t.Fatalf("expected denial, got %+v", reply)
	}
	if logSize(t, store) != 1 {
		t.Fatal("log must be unchanged after mid-session denial")
	}
}

func TestCustomRangeStartAfterEndKeepsStart(t *testing.T) {
	store := memory.New()
	seedWalk(t, store, "2024-02-15")
	w := newWorkflow(store, adminID)

	w.Start(adminID)
	w.Handle(adminID, "4")
	reply := w.Handle(adminID, "2024-02-10")
	if !strings.Contains(reply.Text, "end date") {
		t.Fatalf("expected end-date prompt, got %q", reply.Text)
	}

	reply = w.Handle(adminID, "2024-01-01")
	if reply.Terminal {
		t.Fatal("start > end must not terminate the session")
	}
	if !strings.Contains(reply.Text, "2024-02-10") {
		t.Fatalf("re-prompt should mention the kept start date, got %q", reply.Text)
	}

	// The kept start date still anchors the range.
	reply = w.Handle(adminID, "2024-02-28")
	if !strings.Contains(reply.Text, "About to delete 1 entries") {
		t.Fatalf("expected preview, got %q", reply.Text)
	}
}

func TestMalformedDateReprompts(t *testing.T) {
	store := memory.New()
	seedWalk(t, store, "2024-02-15")
	w := newWorkflow(store, adminID)

	w.Start(adminID)
	w.Handle(adminID, "4")

	reply := w.Handle(adminID, "15/02/2024")
	if reply.Terminal || !strings.Contains(reply.Text, "start date") {
		t.Fatalf("expected start-date re-prompt, got %+v", reply)
	}
	// Still awaiting the start date: a valid date now moves to the end prompt.
	reply = w.Handle(adminID, "2024-02-01")
	if !strings.Contains(reply.Text, "end date") {
		t.Fatalf("expected end-date prompt, got %q", reply.Text)
	}
}

func TestPresetLastEntriesPreviewsAndDeletes(t *testing.T) {
	store := memory.New()
	for _, day := range []string{"2024-01-01", "2024-01-05", "2024-02-01", "2024-03-01"} {
		seedWalk(t, store, day)
	}
	balanceBefore, _ := store.CurrentBalance()
	w := newWorkflow(store, adminID)

	w.Start(adminID)
	reply := w.Handle(adminID, "3")
	if !strings.Contains(reply.Text, "About to delete 4 entries") {
		t.Fatalf("expected a preview of all 4 entries, got %q", reply.Text)
	}

	reply = w.Handle(adminID, "yes")
	if !reply.Terminal || !strings.Contains(reply.Text, "Deleted 4 entries") {
		t.Fatalf("expected deletion of 4 entries, got %+v", reply)
	}
	if logSize(t, store) != 0 {
		t.Fatal("log should be empty after deletion")
	}

	balanceAfter, _ := store.CurrentBalance()
	if !balanceAfter.Equal(balanceBefore) {
		t.Fatalf("balance changed from %s to %s", balanceBefore, balanceAfter)
	}
	if w.Active(adminID) {
		t.Fatal("session should be closed after deletion")
	}
}

func TestEmptyPreviewShortCircuits(t *testing.T) {
	w := newWorkflow(memory.New(), adminID)

	w.Start(adminID)
	reply := w.Handle(adminID, "1")
	if !reply.Terminal {
		t.Fatal("empty preview must terminate without a confirm step")
	}
	if !strings.Contains(reply.Text, "Nothing to clean up") {
		t.Fatalf("expected informational message, got %q", reply.Text)
	}
	if w.Active(adminID) {
		t.Fatal("session should be closed")
	}
}

func TestUnknownInputAtPreviewIsIgnored(t *testing.T) {
	store := memory.New()
	seedWalk(t, store, "2024-03-09")
	w := newWorkflow(store, adminID)

	w.Start(adminID)
	w.Handle(adminID, "1")

	reply := w.Handle(adminID, "maybe later")
	if !reply.Ignored {
		t.Fatalf("unknown input should be ignored, got %+v", reply)
	}
	if logSize(t, store) != 1 {
		t.Fatal("nothing may be deleted on ignored input")
	}

	// The preview is still standing; decline works.
	reply = w.Handle(adminID, "no")
	if !reply.Terminal || logSize(t, store) != 1 {
		t.Fatalf("decline should cancel without deleting, got %+v", reply)
	}
}

func TestCancelFromAnyState(t *testing.T) {
	store := memory.New()
	seedWalk(t, store, "2024-03-09")

	inputs := [][]string{
		{},                  // choosing option
		{"4"},               // awaiting start date
		{"4", "2024-01-01"}, // awaiting end date
		{"1"},               // preview shown
	}
	for _, steps := range inputs {
		w := newWorkflow(store, adminID)
		w.Start(adminID)
		for _, in := range steps {
			w.Handle(adminID, in)
		}
		reply := w.Handle(adminID, "cancel")
		if !reply.Terminal || !strings.Contains(reply.Text, "cancelled") {
			t.Fatalf("cancel after %v: got %+v", steps, reply)
		}
		if w.Active(adminID) {
			t.Fatalf("cancel after %v: session still active", steps)
		}
	}
	if logSize(t, store) != 1 {
		t.Fatal("cancel paths must not delete anything")
	}
}

func TestConfirmDeletesCustomRange(t *testing.T) {
	store := memory.New()
	seedWalk(t, store, "2024-01-10")
	seedWalk(t, store, "2024-01-20")
	survivor := seedWalk(t, store, "2024-02-20")
	w := newWorkflow(store, adminID)

	w.Start(adminID)
	w.Handle(adminID, "4")
	w.Handle(adminID, "2024-01-01")
	w.Handle(adminID, "2024-01-31")

	reply := w.Handle(adminID, "yes")
	if !strings.Contains(reply.Text, "Deleted 2 entries") {
		t.Fatalf("got %q", reply.Text)
	}
	log, _ := store.AllTransactions(ledger.Ascending)
	if len(log) != 1 || log[0].ID != survivor.ID {
		t.Fatalf("wrong survivors: %+v", log)
	}
}

// failingStore makes every deletion fail.
type failingStore struct {
	ledger.Store
}

var errDisk = errors.New("disk I/O error")

func (f *failingStore) DeleteRange(from, to time.Time) (int64, error) {
	return 0, &ledger.StorageError{Op: "delete_range", Err: errDisk}
}

func (f *failingStore) DeleteByIDs(ids []uint) (int64, error) {
	return 0, &ledger.StorageError{Op: "delete_by_ids", Err: errDisk}
}

func TestStorageErrorAtConfirmTerminates(t *testing.T) {
	inner := memory.New()
	seedWalk(t, inner, "2024-03-09")
	w := newWorkflow(&failingStore{Store: inner}, adminID)

	w.Start(adminID)
	w.Handle(adminID, "1")

	reply := w.Handle(adminID, "yes")
	if !reply.Terminal {
		t.Fatal("a failed deletion must still terminate the session")
	}
	if !strings.Contains(reply.Text, "disk I/O error") {
		t.Fatalf("error text should reach the operator, got %q", reply.Text)
	}
	if w.Active(adminID) {
		t.Fatal("session must not stay stuck in preview")
	}
}

func TestPreviewTruncatesLongWalkList(t *testing.T) {
	store := memory.New()
	for day := 1; day <= 12; day++ {
		seedWalk(t, store, time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	}
	w := newWorkflow(store, adminID)

	w.Start(adminID)
	w.Handle(adminID, "4")
	w.Handle(adminID, "2024-01-01")
	reply := w.Handle(adminID, "2024-01-31")

	if !strings.Contains(reply.Text, "...and 4 more") {
		t.Fatalf("expected truncation marker for 12 walks, got %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Walks: 12") {
		t.Fatalf("expected per-kind count, got %q", reply.Text)
	}
}
