package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"k9log/internal/ledger"
)

// Database is the sqlite-backed ledger store. Every mutator runs inside
// a single gorm transaction so the log row and the balance cell move in
// lockstep.
type Database struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

// NewDatabase opens (creating if needed) the sqlite file and migrates
// the schema. The balance row is seeded with zero on first run.
func NewDatabase(dbPath string, log *slog.Logger) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		// WAL keeps the reader-side display loop from blocking writes.
		dsn += "?_journal_mode=WAL&_synchronous=NORMAL"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&Transaction{}, &Balance{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	seed := Balance{ID: balanceRowID, CurrentBalance: decimal.Zero}
	if err := db.FirstOrCreate(&seed, Balance{ID: balanceRowID}).Error; err != nil {
		return nil, fmt.Errorf("failed to seed balance row: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}
	return &Database{
		db:  db,
		log: log.With("component", "storage"),
		now: time.Now,
	}, nil
}

// Append records a transaction and applies its balance rule atomically.
func (d *Database) Append(kind ledger.Kind, amount decimal.Decimal, description string) (ledger.Transaction, error) {
	row := Transaction{
		Timestamp:   d.now(),
		Amount:      ledger.StoredAmount(kind, amount),
		Kind:        string(kind),
		Description: description,
	}
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		var bal Balance
		if err := tx.First(&bal, balanceRowID).Error; err != nil {
			return err
		}
		bal.CurrentBalance = ledger.BalanceAfter(bal.CurrentBalance, kind, amount)
		return tx.Save(&bal).Error
	})
	if err != nil {
		return ledger.Transaction{}, &ledger.StorageError{Op: "append", Err: err}
	}
	d.log.Info("transaction recorded",
		"id", row.ID,
		"kind", row.Kind,
		"amount", row.Amount.StringFixed(2))
	return row.toLedger(), nil
}

// CurrentBalance reads the balance cell; O(1), never folds the log.
func (d *Database) CurrentBalance() (decimal.Decimal, error) {
	var bal Balance
	if err := d.db.First(&bal, balanceRowID).Error; err != nil {
		return decimal.Zero, &ledger.StorageError{Op: "current_balance", Err: err}
	}
	return bal.CurrentBalance, nil
}

// SetBalance overwrites the balance cell and logs an initial_balance
// transaction carrying the absolute target value.
func (d *Database) SetBalance(amount decimal.Decimal) (ledger.Transaction, error) {
	description := fmt.Sprintf("Initial balance set to %s MDL", amount.StringFixed(2))
	return d.Append(ledger.KindInitialBalance, amount, description)
}

// AllTransactions returns the full log in the requested insertion order.
func (d *Database) AllTransactions(order ledger.Order) ([]ledger.Transaction, error) {
	sort := "timestamp ASC, id ASC"
	if order == ledger.Descending {
		sort = "timestamp DESC, id DESC"
	}
	var rows []Transaction
	if err := d.db.Order(sort).Find(&rows).Error; err != nil {
		return nil, &ledger.StorageError{Op: "all_transactions", Err: err}
	}
	return toLedgerSlice(rows), nil
}

// EntriesInRange returns transactions dated within [from, to], ascending.
func (d *Database) EntriesInRange(from, to time.Time) ([]ledger.Transaction, error) {
	start, end := rangeBounds(from, to)
	var rows []Transaction
	err := d.db.
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, &ledger.StorageError{Op: "entries_in_range", Err: err}
	}
	return toLedgerSlice(rows), nil
}

// RecentEntries returns the n newest transactions, id breaking timestamp ties.
func (d *Database) RecentEntries(n int) ([]ledger.Transaction, error) {
	if n <= 0 {
		return nil, nil
	}
	var rows []Transaction
	err := d.db.
		Order("timestamp DESC, id DESC").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, &ledger.StorageError{Op: "recent_entries", Err: err}
	}
	return toLedgerSlice(rows), nil
}

// DeleteRange removes all transactions dated within [from, to] and
// returns the count removed. The balance cell is deliberately left
// untouched: cleanup prunes historical detail only.
func (d *Database) DeleteRange(from, to time.Time) (int64, error) {
	start, end := rangeBounds(from, to)
	var deleted int64
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Transaction{}).
			Where("timestamp >= ? AND timestamp < ?", start, end).
			Count(&deleted).Error; err != nil {
			return err
		}
		return tx.
			Where("timestamp >= ? AND timestamp < ?", start, end).
			Delete(&Transaction{}).Error
	})
	if err != nil {
		return 0, &ledger.StorageError{Op: "delete_range", Err: err}
	}
	d.log.Info("deleted transactions by range",
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
		"count", deleted)
	return deleted, nil
}

// DeleteByIDs removes exactly the listed transactions; unknown ids are
// silently ignored. The balance cell is left untouched.
func (d *Database) DeleteByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := d.db.Where("id IN ?", ids).Delete(&Transaction{})
	if res.Error != nil {
		return 0, &ledger.StorageError{Op: "delete_by_ids", Err: res.Error}
	}
	d.log.Info("deleted transactions by id", "count", res.RowsAffected)
	return res.RowsAffected, nil
}

// Summarize aggregates walks and payments/credits dated within [from, to].
func (d *Database) Summarize(from, to time.Time) (ledger.RangeSummary, error) {
	entries, err := d.EntriesInRange(from, to)
	if err != nil {
		return ledger.RangeSummary{}, err
	}
	return ledger.Summarize(entries), nil
}

// Stats returns the display snapshot counters relative to now.
func (d *Database) Stats(now time.Time) (ledger.Stats, error) {
	var rows []Transaction
	if err := d.db.Where("kind = ?", string(ledger.KindWalk)).Find(&rows).Error; err != nil {
		return ledger.Stats{}, &ledger.StorageError{Op: "stats", Err: err}
	}
	stats := ledger.Stats{TotalEarned: decimal.Zero}
	today := ledger.DayStart(now)
	for _, r := range rows {
		stats.TotalWalks++
		stats.TotalEarned = stats.TotalEarned.Add(r.Amount)
		if ledger.DayStart(r.Timestamp.In(now.Location())).Equal(today) {
			stats.WalksToday++
		}
	}
	return stats, nil
}

// rangeBounds widens a date-granular inclusive range to half-open
// timestamp bounds.
func rangeBounds(from, to time.Time) (time.Time, time.Time) {
	return ledger.DayStart(from), ledger.DayStart(to).Add(24 * time.Hour)
}

var _ ledger.Store = (*Database)(nil)
