package repository

import (
	"context"
	"time"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// DeliveryRepository defines all persistence operations for delivery records.
// The pgx implementation is in pg_delivery_repo.go.
// Tests use a hand-written mock (mock_delivery_repo.go).
//
// Records are append-only: every method below is a single-record insert or
// status transition, never a delete. No multi-record transactions are needed,
// which keeps the store shardable by record id.
type DeliveryRepository interface {
	Create(ctx context.Context, d *domain.DeliveryRecord) error
	GetByID(ctx context.Context, id string) (*domain.DeliveryRecord, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.DeliveryRecord, int, error)

	MarkSent(ctx context.Context, id string, providerMsgID string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, retryCount int, errMsg string) error
	MarkSuppressed(ctx context.Context, id string, reason string) error

	// ScheduleRetry records a failed attempt that still has retries left:
	// status=failed, retry_count=retryCount, next_retry_at=nextRetry.
	ScheduleRetry(ctx context.Context, id string, retryCount int, nextRetry time.Time, errMsg string) error

	// MarkRetrying moves a failed record back to pending and clears
	// next_retry_at, so the scheduler can never pick the same record twice.
	MarkRetrying(ctx context.Context, id string) error

	// FindRetryable returns at most limit records with status=failed,
	// next_retry_at <= now and retry_count < max_retries, oldest due first.
	FindRetryable(ctx context.Context, now time.Time, limit int) ([]*domain.DeliveryRecord, error)
}
