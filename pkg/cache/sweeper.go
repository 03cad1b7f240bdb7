package cache

import (
	"context"
	"time"

	"github.com/saint0x/repoexplain/pkg/log"
)

// DefaultSweepInterval is how often expired rows are purged.
const DefaultSweepInterval = 6 * time.Hour

// Sweeper periodically deletes expired explanations.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// NewSweeper creates a sweeper. A non-positive interval uses
// DefaultSweepInterval.
func NewSweeper(store *Store, interval time.Duration, logger *log.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval, logger: logger, now: time.Now}
}

// Sweep runs one purge.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Removed %d expired cache entries", n)
	}
	return n, nil
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Debug("Cache sweeper running every %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Cache sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
