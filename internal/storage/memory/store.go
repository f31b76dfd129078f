// Package memory provides an in-memory ledger.Store, mainly for tests
// and for running the bot without a database file.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"k9log/internal/ledger"
)

// Store keeps the transaction log in a slice guarded by a mutex.
type Store struct {
	mu      sync.Mutex
	entries []ledger.Transaction
	balance decimal.Decimal
	nextID  uint

	// Now supplies timestamps for appended entries; tests override it
	// to pin dates.
	Now func() time.Time
}

// New returns an empty store with a zero balance.
func New() *Store {
	return &Store{
		balance: decimal.Zero,
		nextID:  1,
		Now:     time.Now,
	}
}

func (s *Store) Append(kind ledger.Kind, amount decimal.Decimal, description string) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := ledger.Transaction{
		ID:          s.nextID,
		Timestamp:   s.Now(),
		Amount:      ledger.StoredAmount(kind, amount),
		Kind:        kind,
		Description: description,
	}
	s.nextID++
	s.entries = append(s.entries, tx)
	s.balance = ledger.BalanceAfter(s.balance, kind, amount)
	return tx, nil
}

func (s *Store) CurrentBalance() (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

func (s *Store) SetBalance(amount decimal.Decimal) (ledger.Transaction, error) {
	return s.Append(ledger.KindInitialBalance, amount, "Initial balance set to "+amount.StringFixed(2)+" MDL")
}

func (s *Store) AllTransactions(order ledger.Order) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ledger.Transaction, len(s.entries))
	copy(out, s.entries)
	sortEntries(out, order)
	return out, nil
}

func (s *Store) EntriesInRange(from, to time.Time) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := ledger.DayStart(from)
	end := ledger.DayStart(to).Add(24 * time.Hour)
	var out []ledger.Transaction
	for _, e := range s.entries {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			out = append(out, e)
		}
	}
	sortEntries(out, ledger.Ascending)
	return out, nil
}

func (s *Store) RecentEntries(n int) ([]ledger.Transaction, error) {
	if n <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ledger.Transaction, len(s.entries))
	copy(out, s.entries)
	sortEntries(out, ledger.Descending)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *Store) DeleteRange(from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := ledger.DayStart(from)
	end := ledger.DayStart(to).Add(24 * time.Hour)
	var kept []ledger.Transaction
	var deleted int64
	for _, e := range s.entries {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

func (s *Store) DeleteByIDs(ids []uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[uint]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []ledger.Transaction
	var deleted int64
	for _, e := range s.entries {
		if drop[e.ID] {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

func (s *Store) Summarize(from, to time.Time) (ledger.RangeSummary, error) {
	entries, err := s.EntriesInRange(from, to)
	if err != nil {
		return ledger.RangeSummary{}, err
	}
	return ledger.Summarize(entries), nil
}

func (s *Store) Stats(now time.Time) (ledger.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := ledger.Stats{TotalEarned: decimal.Zero}
	today := ledger.DayStart(now)
	for _, e := range s.entries {
		if e.Kind != ledger.KindWalk {
			continue
		}
		stats.TotalWalks++
		stats.TotalEarned = stats.TotalEarned.Add(e.Amount)
		if ledger.DayStart(e.Timestamp.In(now.Location())).Equal(today) {
			stats.WalksToday++
		}
	}
	return stats, nil
}

func sortEntries(entries []ledger.Transaction, order ledger.Order) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if order == ledger.Descending {
			a, b = b, a
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})
}

var _ ledger.Store = (*Store)(nil)
