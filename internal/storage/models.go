package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"k9log/internal/ledger"
)

// Transaction is the persisted form of a ledger entry.
type Transaction struct {
	ID          uint            `gorm:"primaryKey"`
	Timestamp   time.Time       `gorm:"index:idx_timestamp;index:idx_kind_timestamp,priority:2;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Kind        string          `gorm:"index:idx_kind;index:idx_kind_timestamp,priority:1;not null"`
	Description string
}

// Balance is the single derived-balance row (always id 1), a
// materialized cache of the fold over the transaction log.
type Balance struct {
	ID             uint            `gorm:"primaryKey"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

const balanceRowID = 1

func (t Transaction) toLedger() ledger.Transaction {
	return ledger.Transaction{
		ID:          t.ID,
		Timestamp:   t.Timestamp,
		Amount:      t.Amount,
		Kind:        ledger.Kind(t.Kind),
		Description: t.Description,
	}
}

func toLedgerSlice(rows []Transaction) []ledger.Transaction {
	out := make([]ledger.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.toLedger()
	}
	return out
}
