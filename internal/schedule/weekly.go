// Package schedule runs the weekly summary job at a fixed weekday and
// time of day, independent of request handling.
package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Weekly fires once per week at Weekday Hour:Minute local time.
type Weekly struct {
	Weekday time.Weekday
	Hour    int
	Minute  int

	log *slog.Logger
	now func() time.Time
}

func NewWeekly(weekday time.Weekday, hour, minute int, log *slog.Logger) *Weekly {
	if log == nil {
		log = slog.Default()
	}
	return &Weekly{
		Weekday: weekday,
		Hour:    hour,
		Minute:  minute,
		log:     log.With("component", "schedule"),
		now:     time.Now,
	}
}

// Next returns the first scheduled instant strictly after t.
func (w *Weekly) Next(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), w.Hour, w.Minute, 0, 0, t.Location())
	days := (int(w.Weekday) - int(t.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(t) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Run blocks until ctx is done, invoking job at each scheduled instant.
// Job failures are logged and do not stop the schedule.
func (w *Weekly) Run(ctx context.Context, job func(context.Context) error) error {
	for {
		next := w.Next(w.now())
		w.log.Info("next weekly report scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(w.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := job(ctx); err != nil {
			w.log.Error("weekly job failed", "error", err)
		}
	}
}
