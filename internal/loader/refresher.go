package loader

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Refresher reloads on a fixed interval until its context ends.
type Refresher struct {
	loader   *Loader
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewRefresher creates a Refresher. An interval of zero loads once and stops.
func NewRefresher(l *Loader, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Refresher {
	return &Refresher{
		loader:   l,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Run performs an initial load, then one load per tick. It returns when ctx
// is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("refresher started", "interval", r.interval)
	r.load(ctx)

	if r.interval <= 0 {
		r.logger.Info("periodic refresh disabled")
		return
	}

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			r.load(ctx)
		}
	}
}

func (r *Refresher) load(ctx context.Context) {
	res := r.loader.Load(ctx, false)
	if res.Err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("scheduled load failed", "error", res.Err)
		}
		return
	}
	r.logger.Info("scheduled load complete", "count", len(res.Data))
}
