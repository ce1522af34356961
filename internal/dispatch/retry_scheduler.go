package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kaziconnect/notify-engine/internal/repository"
)

// RetryScheduler polls the delivery log for failed records whose backoff
// window has elapsed and resubmits them through the dispatcher's retry
// pool.
//
// This DB-backed approach means retries survive server restarts: scheduled
// retry times are persisted, not held in memory. Each sweep is capped at
// batchSize so recovery after a long outage does unbounded work in bounded
// slices.
type RetryScheduler struct {
	repo       repository.DeliveryRepository
	dispatcher *Dispatcher
	interval   time.Duration
	batchSize  int
	logger     *zap.Logger

	now func() time.Time
}

func NewRetryScheduler(
	repo repository.DeliveryRepository,
	dispatcher *Dispatcher,
	interval time.Duration,
	batchSize int,
	logger *zap.Logger,
) *RetryScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &RetryScheduler{
		repo:       repo,
		dispatcher: dispatcher,
		interval:   interval,
		batchSize:  batchSize,
		logger:     logger,
		now:        time.Now,
	}
}

// Run sweeps once immediately (so already-due retries do not wait for the
// first ticker edge) and then on every interval. Stops cleanly when ctx is
// cancelled, which is how tests shut it down deterministically.
func (s *RetryScheduler) Run(ctx context.Context) {
	s.logger.Info("retry scheduler started",
		zap.Duration("interval", s.interval),
		zap.Int("batch_size", s.batchSize),
	)

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retry scheduler stopping")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep resubmits one batch of due retries. Exported so tests can drive
// the scheduler without waiting on wall-clock ticks.
func (s *RetryScheduler) Sweep(ctx context.Context) {
	records, err := s.repo.FindRetryable(ctx, s.now().UTC(), s.batchSize)
	if err != nil {
		s.logger.Error("retry sweep query failed", zap.Error(err))
		return
	}

	for _, rec := range records {
		if err := s.dispatcher.Resubmit(ctx, rec); err != nil {
			s.logger.Error("failed to resubmit delivery",
				zap.String("delivery_id", rec.ID), zap.Error(err))
		}
	}

	if len(records) > 0 {
		s.logger.Info("resubmitted due retries", zap.Int("count", len(records)))
	}
}
