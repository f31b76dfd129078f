// Package stats tracks bot liveness counters and merges them with the
// ledger's walk statistics into the snapshot the status display pulls.
package stats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"k9log/internal/ledger"
)

// Snapshot is a point-in-time view of the bot and the ledger.
type Snapshot struct {
	Running        bool
	Uptime         time.Duration
	MessageCount   int
	LastActivity   time.Time
	TotalWalks     int
	WalksToday     int
	TotalEarned    decimal.Decimal
	CurrentBalance decimal.Decimal
}

// Tracker is safe for concurrent use; the display loop reads it while
// the message handler updates it.
type Tracker struct {
	mu           sync.Mutex
	store        ledger.Store
	log          *slog.Logger
	start        time.Time
	running      bool
	messageCount int
	lastActivity time.Time
	now          func() time.Time
}

func NewTracker(store ledger.Store, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		store: store,
		log:   log.With("component", "stats"),
		start: time.Now(),
		now:   time.Now,
	}
}

// SetRunning flips the liveness flag shown on the status screen.
func (t *Tracker) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = running
}

// RecordActivity notes one handled message.
func (t *Tracker) RecordActivity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messageCount++
	t.lastActivity = t.now()
}

// Snapshot merges tracker counters with the store's walk stats. Store
// failures are logged and reported as zero values so the display never
// kills the bot.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	snap := Snapshot{
		Running:        t.running,
		Uptime:         t.now().Sub(t.start),
		MessageCount:   t.messageCount,
		LastActivity:   t.lastActivity,
		TotalEarned:    decimal.Zero,
		CurrentBalance: decimal.Zero,
	}
	now := t.now()
	t.mu.Unlock()

	ledgerStats, err := t.store.Stats(now)
	if err != nil {
		t.log.Error("failed to read ledger stats", "error", err)
		return snap
	}
	snap.TotalWalks = ledgerStats.TotalWalks
	snap.WalksToday = ledgerStats.WalksToday
	snap.TotalEarned = ledgerStats.TotalEarned

	balance, err := t.store.CurrentBalance()
	if err != nil {
		t.log.Error("failed to read balance", "error", err)
		return snap
	}
	snap.CurrentBalance = balance
	return snap
}
