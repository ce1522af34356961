package dispatch

import (
	"context"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// Handle is what a caller gets back from Dispatch: an awaitable reference
// to an accepted delivery. Most callers ignore it — the HTTP surface
// answers "accepted" as soon as validation passes — but tests and
// synchronous callers can Wait for the attempt's outcome.
type Handle struct {
	id       string
	accepted domain.DeliveryResult
	done     chan struct{}
	result   domain.DeliveryResult
}

func newHandle(rec *domain.DeliveryRecord) *Handle {
	return &Handle{
		id: rec.ID,
		accepted: domain.DeliveryResult{
			Success:   true,
			ID:        rec.ID,
			Status:    domain.StatusPending,
			Recipient: rec.MaskedRecipient(),
		},
		done: make(chan struct{}),
	}
}

// resolve publishes the attempt outcome. Must be called exactly once.
func (h *Handle) resolve(result domain.DeliveryResult) {
	h.result = result
	close(h.done)
}

// ID is the delivery record id, usable for later store lookups.
func (h *Handle) ID() string { return h.id }

// Accepted is the immediate "request accepted" summary: delivery is
// asynchronous, so this reports the pending state, not the send outcome.
func (h *Handle) Accepted() domain.DeliveryResult { return h.accepted }

// Done is closed once this attempt reached a terminal per-attempt state
// (sent, suppressed, failed, or failed-with-retry-scheduled).
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the attempt resolves or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) (domain.DeliveryResult, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return domain.DeliveryResult{}, ctx.Err()
	}
}
