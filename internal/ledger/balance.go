package ledger

import "github.com/shopspring/decimal"

// DefaultWalkPrice is what a single completed walk earns (MDL).
const DefaultWalkPrice = 75

// StoredAmount returns the signed amount recorded in the log for a
// transaction of the given kind. amount is always a positive magnitude,
// except for initial_balance where it is the absolute target value.
func StoredAmount(kind Kind, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case KindPayment, KindCreditGiven:
		return amount.Abs().Neg()
	default:
		// walk stores the positive earning, initial_balance stores the
		// target value itself for audit purposes.
		return amount
	}
}

// BalanceAfter applies one transaction to a running balance. Walks add,
// payments and credits subtract their magnitude, and initial_balance
// sets the balance to the given value outright rather than adding it.
func BalanceAfter(prev decimal.Decimal, kind Kind, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case KindWalk:
		return prev.Add(amount)
	case KindPayment, KindCreditGiven:
		return prev.Sub(amount.Abs())
	case KindInitialBalance:
		return amount
	default:
		return prev
	}
}

// Summarize folds entries into a range summary; payments and credits
// contribute their magnitude rather than their (negative) stored amount.
func Summarize(entries []Transaction) RangeSummary {
	sum := RangeSummary{
		WalkTotal:          decimal.Zero,
		PaymentCreditTotal: decimal.Zero,
	}
	for _, e := range entries {
		switch e.Kind {
		case KindWalk:
			sum.WalkCount++
			sum.WalkTotal = sum.WalkTotal.Add(e.Amount)
		case KindPayment, KindCreditGiven:
			sum.PaymentCreditTotal = sum.PaymentCreditTotal.Add(e.Amount.Abs())
		}
	}
	return sum
}

// Replay folds a transaction log in creation order into the balance it
// produces. The store's balance cell must always agree with this.
func Replay(log []Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range log {
		switch tx.Kind {
		case KindInitialBalance:
			balance = tx.Amount
		default:
			balance = balance.Add(tx.Amount)
		}
	}
	return balance
}
