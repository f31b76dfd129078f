// Package display drives the optional status display: a background
// loop cycling through a few stat frames, with fire-and-forget
// ephemeral notifications layered on top. The display never mutates
// ledger state; it only pulls snapshots.
package display

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"k9log/internal/stats"
)

// Screen renders one frame of short text lines. Implementations may be
// real hardware or a log sink; rendering failures are non-fatal.
type Screen interface {
	Render(lines []string) error
}

// LogScreen writes frames to the structured log. It stands in when no
// physical display is attached.
type LogScreen struct {
	Log *slog.Logger
}

func (s *LogScreen) Render(lines []string) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	for _, line := range lines {
		log.Debug("display", "line", line)
	}
	return nil
}

// SnapshotFunc supplies the stats shown on the cycling frames.
type SnapshotFunc func() stats.Snapshot

const frameCount = 4

// Manager cycles frames on a fixed interval. A nil *Manager is a valid
// absent display: Notify on it is a no-op.
type Manager struct {
	screen   Screen
	snapshot SnapshotFunc
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	frame     int
	note      string
	noteUntil time.Time
}

func NewManager(screen Screen, snapshot SnapshotFunc, interval time.Duration, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Manager{
		screen:   screen,
		snapshot: snapshot,
		interval: interval,
		log:      log.With("component", "display"),
		now:      time.Now,
	}
}

// Notify shows an ephemeral message for the given duration, replacing
// the cycling frames. Safe to call on a nil manager.
func (m *Manager) Notify(text string, d time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.note = text
	m.noteUntil = m.now().Add(d)
	m.mu.Unlock()
	m.render()
}

// Run drives the refresh loop until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.render()
			m.mu.Lock()
			m.frame = (m.frame + 1) % frameCount
			m.mu.Unlock()
		}
	}
}

func (m *Manager) render() {
	m.mu.Lock()
	note := m.note
	active := m.noteUntil.After(m.now())
	frame := m.frame
	m.mu.Unlock()

	var lines []string
	if active && note != "" {
		lines = []string{"K9 LOG BOT", "", note}
	} else {
		lines = m.frameLines(frame)
	}
	if err := m.screen.Render(lines); err != nil {
		m.log.Warn("render failed", "error", err)
	}
}

func (m *Manager) frameLines(frame int) []string {
	snap := m.snapshot()
	switch frame {
	case 0:
		status := "OFFLINE"
		if snap.Running {
			status = "ONLINE"
		}
		return []string{
			"K9 LOG BOT",
			"Status: " + status,
			fmt.Sprintf("Up: %s", snap.Uptime.Round(time.Second)),
		}
	case 1:
		return []string{
			"BALANCE",
			snap.CurrentBalance.StringFixed(2) + " MDL",
		}
	case 2:
		return []string{
			"WALKS",
			fmt.Sprintf("Today: %d", snap.WalksToday),
			fmt.Sprintf("Total: %d", snap.TotalWalks),
			fmt.Sprintf("Earned: %s", snap.TotalEarned.StringFixed(2)),
		}
	default:
		now := m.now()
		return []string{
			now.Format("15:04:05"),
			now.Format("Mon Jan 2"),
			fmt.Sprintf("Msgs: %d", snap.MessageCount),
		}
	}
}
