package preference

import (
	"time"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// Frequency controls digest batching. Only marketing messages are batched;
// transactional and alert traffic is always immediate.
type Frequency string

const (
	FrequencyImmediate   Frequency = "immediate"
	FrequencyDailyDigest Frequency = "daily_digest"
	FrequencyWeekly      Frequency = "weekly_digest"
)

// Preferences is a user's notification configuration. It is owned and
// mutated by the platform's settings surface; this engine only reads it.
type Preferences struct {
	UserID          string            `json:"user_id"`
	SMSEnabled      bool              `json:"sms_enabled"`
	EmailEnabled    bool              `json:"email_enabled"`
	PushEnabled     bool              `json:"push_enabled"`
	InAppEnabled    bool              `json:"in_app_enabled"`
	Frequency       Frequency         `json:"frequency"`
	QuietHoursStart string            `json:"quiet_hours_start"` // "22:00"; empty = no quiet hours
	QuietHoursEnd   string            `json:"quiet_hours_end"`   // "07:00"
	Categories      []domain.Category `json:"categories"`        // empty = all categories enabled
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Defaults is what a user without a stored row gets: everything on,
// immediate delivery, no quiet hours.
func Defaults(userID string) *Preferences {
	return &Preferences{
		UserID:       userID,
		SMSEnabled:   true,
		EmailEnabled: true,
		PushEnabled:  true,
		InAppEnabled: true,
		Frequency:    FrequencyImmediate,
	}
}

func (p *Preferences) ChannelEnabled(ch domain.Channel) bool {
	switch ch {
	case domain.ChannelSMS:
		return p.SMSEnabled
	case domain.ChannelEmail:
		return p.EmailEnabled
	case domain.ChannelPush:
		return p.PushEnabled
	case domain.ChannelInApp:
		return p.InAppEnabled
	}
	return false
}

func (p *Preferences) CategoryEnabled(cat domain.Category) bool {
	if len(p.Categories) == 0 {
		return true
	}
	for _, c := range p.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
