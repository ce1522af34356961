package domain

import "time"

// Channel is the delivery medium for a notification.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelPush, ChannelInApp:
		return true
	}
	return false
}

// Category classifies a notification for preference filtering.
// Alerts are urgent: they bypass quiet hours (delivered silently).
type Category string

const (
	CategoryTransactional Category = "transactional"
	CategoryMarketing     Category = "marketing"
	CategoryAlert         Category = "alert"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryTransactional, CategoryMarketing, CategoryAlert:
		return true
	}
	return false
}

// Urgent categories are still delivered during quiet hours.
func (c Category) Urgent() bool {
	return c == CategoryAlert
}

// Priority is caller-supplied metadata carried on the delivery record.
// It does not influence scheduling — the primary/retry pool split is the
// concurrency model — but it is persisted and surfaced so operators and
// analytics can segment traffic.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Status tracks the lifecycle of a delivery record.
//
//	pending → sent                      terminal success
//	pending → failed                    retried while retry_count < max_retries
//	failed  → pending → sent | failed   via the retry scheduler
//	pending → suppressed                terminal, preference gate said no
type Status string

const (
	StatusPending    Status = "pending"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
	StatusSuppressed Status = "suppressed"
)

// NotificationRequest is the immutable input to the dispatcher.
// Recipient is the raw value as supplied by the caller; the dispatcher
// normalizes it before anything is persisted.
type NotificationRequest struct {
	UserID    string   `json:"user_id"`
	Channel   Channel  `json:"channel"`
	Recipient string   `json:"recipient"`
	Subject   string   `json:"subject,omitempty"`
	Content   string   `json:"content"`
	HTMLBody  string   `json:"html_body,omitempty"`
	Category  Category `json:"category"`
	Priority  Priority `json:"priority,omitempty"`
	Language  string   `json:"language,omitempty"`
}

func (r *NotificationRequest) Validate() error {
	if !r.Channel.IsValid() {
		return ErrInvalidChannel
	}
	if !r.Category.IsValid() {
		return ErrInvalidCategory
	}
	if r.Priority != "" && !r.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if r.UserID == "" {
		return ErrMissingUserID
	}
	if r.Recipient == "" {
		return ErrInvalidRecipient
	}
	if r.Content == "" || len(r.Content) > 4096 {
		return ErrInvalidContent
	}
	return nil
}

// DeliveryRecord is the durable unit of work: one notification attempt and
// its retry history. Records are append-only — they are mutated through
// status transitions but never deleted.
//
// Invariants: RetryCount <= MaxRetries; NextRetryAt is set only while
// Status == failed and RetryCount < MaxRetries.
type DeliveryRecord struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Channel       Channel    `json:"channel"`
	Recipient     string     `json:"-"` // unmasked; never serialized into responses or logs
	Subject       string     `json:"subject,omitempty"`
	Content       string     `json:"content"`
	HTMLBody      string     `json:"-"`
	Category      Category   `json:"category"`
	Priority      Priority   `json:"priority"`
	Status        Status     `json:"status"`
	Silent        bool       `json:"silent,omitempty"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProviderMsgID *string    `json:"provider_message_id,omitempty"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MaskedRecipient is what appears in API responses and log lines.
func (d *DeliveryRecord) MaskedRecipient() string {
	if d.Channel == ChannelEmail {
		return MaskEmail(d.Recipient)
	}
	return MaskPhone(d.Recipient)
}

// DeliveryResult is the outcome summary returned to the original caller.
// Because delivery is asynchronous, Success means "accepted", not "sent";
// the definitive state lives on the DeliveryRecord.
type DeliveryResult struct {
	Success   bool    `json:"success"`
	ID        string  `json:"id,omitempty"`
	Status    Status  `json:"status,omitempty"`
	Recipient string  `json:"recipient,omitempty"` // masked
	MessageID *string `json:"message_id,omitempty"`
	Error     string  `json:"error,omitempty"`
	WillRetry bool    `json:"will_retry,omitempty"`
}

// ListFilter holds query parameters for paginated delivery listing.
type ListFilter struct {
	UserID  *string
	Status  *Status
	Channel *Channel
	Page    int
	Limit   int
}
