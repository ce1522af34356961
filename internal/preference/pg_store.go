package preference

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Store backed by the notification_preferences table.
func NewPgStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Get(ctx context.Context, userID string) (*Preferences, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, sms_enabled, email_enabled, push_enabled, in_app_enabled,
		       frequency, quiet_hours_start, quiet_hours_end, categories, updated_at
		FROM notification_preferences WHERE user_id = $1`, userID)

	var (
		p          Preferences
		categories []string
	)
	err := row.Scan(
		&p.UserID, &p.SMSEnabled, &p.EmailEnabled, &p.PushEnabled, &p.InAppEnabled,
		&p.Frequency, &p.QuietHoursStart, &p.QuietHoursEnd, &categories, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Defaults(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	p.Categories = make([]domain.Category, len(categories))
	for i, c := range categories {
		p.Categories[i] = domain.Category(c)
	}
	return &p, nil
}
