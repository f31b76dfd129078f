package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a transaction and decides how it affects the balance.
type Kind string

const (
	KindWalk           Kind = "walk"
	KindPayment        Kind = "payment"
	KindCreditGiven    Kind = "credit_given"
	KindInitialBalance Kind = "initial_balance"
)

// Transaction is a single immutable entry in the log. The store assigns
// ID and Timestamp; entries are only ever removed by the admin cleanup.
type Transaction struct {
	ID          uint
	Timestamp   time.Time
	Amount      decimal.Decimal
	Kind        Kind
	Description string
}

// Order controls the direction of full-log reads.
type Order int

const (
	Ascending Order = iota
	Descending
)

// RangeSummary aggregates the transactions of a date window.
// PaymentCreditTotal is the magnitude of money received, not the
// (negative) stored sum.
type RangeSummary struct {
	WalkCount          int
	WalkTotal          decimal.Decimal
	PaymentCreditTotal decimal.Decimal
}

// Stats is the pull-style snapshot consumed by the status display.
type Stats struct {
	TotalWalks  int
	WalksToday  int
	TotalEarned decimal.Decimal
}

// DayStart truncates t to midnight in its own location. Range queries
// compare date components, so both store implementations normalize
// boundaries through this.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
