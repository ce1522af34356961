package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// ProviderError classifies provider call failures as retryable or terminal.
// Retryability is carried as a value, not encoded in control flow: the
// dispatcher branches on Retryable(err), never on error types escaping a
// worker.
type ProviderError struct {
	StatusCode int
	Message    string
	Retryable  bool
	Cause      error
}

func (e *ProviderError) Error() string {
	parts := make([]string, 0, 3)
	parts = append(parts, "provider error")
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// Retryable reports whether a failed send should be scheduled for retry.
// Timeouts count as provider errors (retryable); a cancelled context means
// the service is shutting down, and a disabled channel can never succeed.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, domain.ErrChannelDisabled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Unknown failure: retrying is the safe default, the ceiling bounds it.
	return true
}
