package core

import (
	"context"
	"log/slog"
	"time"
)

// StartRefreshScheduler reloads the sheets in the background.
// It loads immediately, then every interval; an interval of zero or less
// loads once and returns. Failed loads are logged and the previous snapshot
// keeps serving. The scheduler stops when the context is cancelled.
func (a *App) StartRefreshScheduler(ctx context.Context, interval time.Duration) {
	slog.Info("refresh scheduler started", "interval", interval.String())

	// Run immediately on startup
	a.runRefreshJob(ctx)

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			a.runRefreshJob(ctx)
		}
	}
}

// runRefreshJob performs one refresh cycle.
func (a *App) runRefreshJob(ctx context.Context) {
	start := time.Now()

	snap, err := a.Refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("site refresh failed",
			"error", err,
			"code", MapError(err).Code,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	slog.Debug("site refresh completed",
		"load_id", snap.LoadID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
