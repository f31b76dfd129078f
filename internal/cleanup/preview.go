package cleanup

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"k9log/internal/ledger"
)

// How many walk entries to list before truncating to head and tail.
const (
	previewListLimit = 8
	previewHead      = 4
	previewTail      = 4
)

// Preview summarizes what a pending deletion would remove.
type Preview struct {
	Total int

	WalkCount    int
	WalkTotal    decimal.Decimal
	PaymentCount int
	PaymentTotal decimal.Decimal
	CreditCount  int
	CreditTotal  decimal.Decimal

	WalkHead    []ledger.Transaction
	WalkTail    []ledger.Transaction
	WalkOmitted int
}

func buildPreview(entries []ledger.Transaction) Preview {
	p := Preview{
		Total:        len(entries),
		WalkTotal:    decimal.Zero,
		PaymentTotal: decimal.Zero,
		CreditTotal:  decimal.Zero,
	}
	var walks []ledger.Transaction
	for _, e := range entries {
		switch e.Kind {
		case ledger.KindWalk:
			p.WalkCount++
			p.WalkTotal = p.WalkTotal.Add(e.Amount)
			walks = append(walks, e)
		case ledger.KindPayment:
			p.PaymentCount++
			p.PaymentTotal = p.PaymentTotal.Add(e.Amount.Abs())
		case ledger.KindCreditGiven:
			p.CreditCount++
			p.CreditTotal = p.CreditTotal.Add(e.Amount.Abs())
		}
	}
	if len(walks) <= previewListLimit {
		p.WalkHead = walks
	} else {
		p.WalkHead = walks[:previewHead]
		p.WalkTail = walks[len(walks)-previewTail:]
		p.WalkOmitted = len(walks) - previewHead - previewTail
	}
	return p
}

func (p Preview) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "About to delete %d entries:\n", p.Total)
	fmt.Fprintf(&b, "- Walks: %d (%s MDL)\n", p.WalkCount, p.WalkTotal.StringFixed(2))
	fmt.Fprintf(&b, "- Payments: %d (%s MDL)\n", p.PaymentCount, p.PaymentTotal.StringFixed(2))
	fmt.Fprintf(&b, "- Credits: %d (%s MDL)\n", p.CreditCount, p.CreditTotal.StringFixed(2))

	if len(p.WalkHead) > 0 {
		b.WriteString("\nWalk entries:\n")
		for _, e := range p.WalkHead {
			fmt.Fprintf(&b, "  %s  %s MDL\n", e.Timestamp.Format("2006-01-02"), e.Amount.StringFixed(2))
		}
		if p.WalkOmitted > 0 {
			fmt.Fprintf(&b, "  ...and %d more\n", p.WalkOmitted)
		}
		for _, e := range p.WalkTail {
			fmt.Fprintf(&b, "  %s  %s MDL\n", e.Timestamp.Format("2006-01-02"), e.Amount.StringFixed(2))
		}
	}

	b.WriteString("\nDelete these entries? This cannot be undone. (yes/no)")
	return b.String()
}
