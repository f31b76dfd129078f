package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store is the durable transaction log plus its derived balance cell.
// Implementations must make Append and SetBalance atomic: the row and
// the balance update land together or not at all.
//
// Range operations (EntriesInRange, DeleteRange, Summarize) compare the
// date component of timestamps, inclusive on both ends.
type Store interface {
	// Append records a transaction and applies its balance rule.
	// amount is a positive magnitude for walk/payment/credit_given.
	Append(kind Kind, amount decimal.Decimal, description string) (Transaction, error)

	// CurrentBalance reads the balance cell. Never recomputed from the
	// log on this path.
	CurrentBalance() (decimal.Decimal, error)

	// SetBalance overwrites the balance and records an initial_balance
	// audit transaction carrying the absolute target value.
	SetBalance(amount decimal.Decimal) (Transaction, error)

	// AllTransactions returns the full log in the requested insertion order.
	AllTransactions(order Order) ([]Transaction, error)

	// EntriesInRange returns transactions whose date falls within
	// [from, to], ascending.
	EntriesInRange(from, to time.Time) ([]Transaction, error)

	// RecentEntries returns the n most recent transactions, newest
	// first, id as tie-break for equal timestamps.
	RecentEntries(n int) ([]Transaction, error)

	// DeleteRange removes all transactions dated within [from, to] and
	// returns how many were removed. The balance cell is left untouched:
	// cleanup prunes historical detail, the balance stays authoritative.
	DeleteRange(from, to time.Time) (int64, error)

	// DeleteByIDs removes exactly the listed transactions; unknown ids
	// are silently ignored. The balance cell is left untouched.
	DeleteByIDs(ids []uint) (int64, error)

	// Summarize aggregates walks and payments/credits dated within [from, to].
	Summarize(from, to time.Time) (RangeSummary, error)

	// Stats returns the display snapshot counters relative to now.
	Stats(now time.Time) (Stats, error)
}
