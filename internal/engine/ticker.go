package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Ticker drives the autonomous side of the world: periodic faction decision
// cycles and threat decay. Player-triggered operations interleave freely.
type Ticker struct {
	world    *World
	interval time.Duration
}

// NewTicker creates a ticker. Interval must be positive.
func NewTicker(w *World, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Ticker{world: w, interval: interval}
}

// Run blocks until ctx is cancelled, ticking every interval. A busy world
// skips the cycle rather than queueing behind player actions.
func (t *Ticker) Run(ctx context.Context) {
	slog.Info("world ticker started", "interval", t.interval)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("world ticker stopped")
			return
		case <-ticker.C:
			t.step(ctx)
		}
	}
}

func (t *Ticker) step(ctx context.Context) {
	start := time.Now()

	if err := t.world.DecayThreats(ctx, t.interval); err != nil {
		if errors.Is(err, ErrBusy) {
			slog.Debug("decay skipped, world busy")
		} else {
			slog.Error("threat decay failed", "error", err)
		}
	}

	res, err := t.world.Tick(ctx, "")
	switch {
	case errors.Is(err, ErrBusy):
		slog.Debug("tick skipped, world busy")
	case err != nil:
		slog.Error("faction tick failed", "error", err)
	default:
		slog.Info("world tick complete",
			"factions_changed", len(res.Factions),
			"events", len(res.Events),
			"elapsed", time.Since(start),
		)
	}
}
