package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	markinguc "sarpras-backend/internal/usecase/marking"
)

const sweepBatchSize = 200

// Sweeper periodically flips expired-but-still-active markings to their
// stored expired status. Expiry itself is always derived from expires_at;
// the sweep only keeps the stored column honest for reporting queries.
type Sweeper struct {
	markings *markinguc.Usecase
	log      *zap.Logger
	interval time.Duration
}

func NewSweeper(markings *markinguc.Usecase, log *zap.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{markings: markings, log: log, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled. The first sweep fires
// immediately so a restart catches up right away.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		s.sweep(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.markings.Sweep(ctx, sweepBatchSize)
	if err != nil {
		s.log.Error("marking sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("marking sweep done", zap.Int("expired", n))
	}
}
