package preference

import "context"

// Store reads user notification preferences. Implementations must return
// Defaults (not an error) for users without a stored row, so a missing
// preference record never blocks delivery.
type Store interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
}
