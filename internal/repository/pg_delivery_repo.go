package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

type pgDeliveryRepository struct {
	pool *pgxpool.Pool
}

// NewPgDeliveryRepository returns a DeliveryRepository backed by PostgreSQL.
func NewPgDeliveryRepository(pool *pgxpool.Pool) DeliveryRepository {
	return &pgDeliveryRepository{pool: pool}
}

const deliveryColumns = `id, user_id, channel, recipient, subject, content, html_body,
	       category, priority, status, silent, retry_count, max_retries, next_retry_at,
	       provider_msg_id, error_message, created_at, sent_at, updated_at`

func (r *pgDeliveryRepository) Create(ctx context.Context, d *domain.DeliveryRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO delivery_records
			(id, user_id, channel, recipient, subject, content, html_body,
			 category, priority, status, silent, retry_count, max_retries, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		d.ID, d.UserID, d.Channel, d.Recipient, d.Subject, d.Content, d.HTMLBody,
		d.Category, d.Priority, d.Status, d.Silent, d.RetryCount, d.MaxRetries, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery record: %w", err)
	}
	return nil
}

func (r *pgDeliveryRepository) GetByID(ctx context.Context, id string) (*domain.DeliveryRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_records WHERE id = $1`, id)

	d, err := scanDelivery(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return d, err
}

func (r *pgDeliveryRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.DeliveryRecord, int, error) {
	where, args := buildListWhere(f)
	offset := (f.Page - 1) * f.Limit

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM delivery_records"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count delivery records: %w", err)
	}

	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`SELECT `+deliveryColumns+`
		FROM delivery_records%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list delivery records: %w", err)
	}
	defer rows.Close()

	records, err := scanDeliveries(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *pgDeliveryRepository) MarkSent(ctx context.Context, id, providerMsgID string, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE delivery_records
		SET status = 'sent', provider_msg_id = $1, sent_at = $2,
		    error_message = NULL, next_retry_at = NULL, updated_at = NOW()
		WHERE id = $3`, providerMsgID, sentAt, id)
	return err
}

func (r *pgDeliveryRepository) MarkFailed(ctx context.Context, id string, retryCount int, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE delivery_records
		SET status = 'failed', retry_count = $1, error_message = $2,
		    next_retry_at = NULL, updated_at = NOW()
		WHERE id = $3`, retryCount, errMsg, id)
	return err
}

func (r *pgDeliveryRepository) MarkSuppressed(ctx context.Context, id, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE delivery_records
		SET status = 'suppressed', error_message = $1, updated_at = NOW()
		WHERE id = $2`, reason, id)
	return err
}

func (r *pgDeliveryRepository) ScheduleRetry(ctx context.Context, id string, retryCount int, nextRetry time.Time, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE delivery_records
		SET status = 'failed', retry_count = $1, next_retry_at = $2,
		    error_message = $3, updated_at = NOW()
		WHERE id = $4`, retryCount, nextRetry, errMsg, id)
	return err
}

func (r *pgDeliveryRepository) MarkRetrying(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE delivery_records
		SET status = 'pending', next_retry_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'failed'`, id)
	return err
}

func (r *pgDeliveryRepository) FindRetryable(ctx context.Context, now time.Time, limit int) ([]*domain.DeliveryRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+deliveryColumns+`
		FROM delivery_records
		WHERE status = 'failed'
		  AND retry_count < max_retries
		  AND next_retry_at <= $1
		ORDER BY next_retry_at
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("find retryable: %w", err)
	}
	defer rows.Close()
	return scanDeliveries(rows)
}

// ---- scanning helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (*domain.DeliveryRecord, error) {
	var d domain.DeliveryRecord
	err := row.Scan(
		&d.ID, &d.UserID, &d.Channel, &d.Recipient, &d.Subject, &d.Content, &d.HTMLBody,
		&d.Category, &d.Priority, &d.Status, &d.Silent, &d.RetryCount, &d.MaxRetries, &d.NextRetryAt,
		&d.ProviderMsgID, &d.ErrorMessage, &d.CreatedAt, &d.SentAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDeliveries(rows pgx.Rows) ([]*domain.DeliveryRecord, error) {
	var records []*domain.DeliveryRecord
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery record: %w", err)
		}
		records = append(records, d)
	}
	return records, rows.Err()
}

func buildListWhere(f domain.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.Channel != nil {
		add("channel = $%d", *f.Channel)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
