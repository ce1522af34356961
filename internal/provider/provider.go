package provider

import (
	"context"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// SendResult is the successful outcome of one provider call.
type SendResult struct {
	MessageID string
}

// Adapter translates a delivery record into a provider wire request and
// interprets the response. One implementation per channel.
// Mocking this interface in tests gives full control over provider behaviour
// without making real network calls.
type Adapter interface {
	Send(ctx context.Context, d *domain.DeliveryRecord) (*SendResult, error)
	Channel() domain.Channel
}

// Registry maps channels to their adapters. Channels without an adapter
// (or with a disabled one) still accept dispatches; the send fails
// terminally instead of crashing the service.
type Registry map[domain.Channel]Adapter

func (r Registry) For(ch domain.Channel) (Adapter, bool) {
	a, ok := r[ch]
	return a, ok
}
