package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
//
// Validation errors fail fast: no delivery record is created and no provider
// is contacted. Provider-side failures are never surfaced as errors here —
// they are recorded on the DeliveryRecord and handled by the retry scheduler.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidChannel   = errors.New("invalid channel: must be sms, email, push, or in_app")
	ErrInvalidCategory  = errors.New("invalid category: must be transactional, marketing, or alert")
	ErrInvalidPriority  = errors.New("invalid priority: must be low, normal, or high")
	ErrMissingUserID    = errors.New("user_id must not be empty")
	ErrInvalidRecipient = errors.New("recipient must not be empty")
	ErrInvalidPhone     = errors.New("recipient is not a valid phone number")
	ErrInvalidEmail     = errors.New("recipient is not a valid email address")
	ErrInvalidContent   = errors.New("content must be between 1 and 4096 characters")
	ErrChannelDisabled  = errors.New("channel is disabled: missing provider configuration")
)

// IsValidationError reports whether err is a caller mistake (malformed
// request) rather than a delivery-side failure.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidChannel),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrMissingUserID),
		errors.Is(err, ErrInvalidRecipient),
		errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidContent):
		return true
	}
	return false
}
