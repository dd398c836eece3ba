package core

// sweeper.go removes expired sessions from stores that do not expire keys
// on their own. The Redis store relies on key TTLs and is never swept.

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/vizboard/internal/store"
)

// StartSessionSweeper sweeps the session store every interval until ctx is
// cancelled. It returns immediately when the store expires entries itself.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	sweeper, ok := s.store.(store.Sweeper)
	if !ok {
		slog.Debug("session store expires entries itself, sweeper not started")
		return
	}

	slog.Info("session sweeper started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case now := <-ticker.C:
			s.sweep(sweeper, now)
		}
	}
}

func (s *Service) sweep(sweeper store.Sweeper, now time.Time) {
	start := time.Now()
	removed := sweeper.Sweep(now)
	if removed > 0 {
		slog.Info("expired sessions removed",
			"sessions", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
