package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// PushAdapter delivers through an HTTP push gateway. Push is best-effort:
// NewPushAdapter degrades to a logged no-op when the gateway is not
// configured, so the other channels keep working with no push credentials
// deployed at all.
type PushAdapter struct {
	client     *resty.Client
	gatewayURL string
	apiKey     string
	logger     *zap.Logger
}

type pushRequest struct {
	DeviceToken string `json:"device_token"`
	Title       string `json:"title,omitempty"`
	Body        string `json:"body"`
	Silent      bool   `json:"silent"`
}

type pushResponse struct {
	MessageID string `json:"message_id"`
}

func NewPushAdapter(gatewayURL, apiKey string, timeout time.Duration, logger *zap.Logger) *PushAdapter {
	a := &PushAdapter{gatewayURL: gatewayURL, apiKey: apiKey, logger: logger}
	if gatewayURL == "" {
		logger.Warn("push gateway not configured: push channel degraded to no-op")
		return a
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	a.client = client
	return a
}

func (a *PushAdapter) Channel() domain.Channel { return domain.ChannelPush }

func (a *PushAdapter) Send(ctx context.Context, d *domain.DeliveryRecord) (*SendResult, error) {
	if a.client == nil {
		a.logger.Debug("push no-op: gateway not configured",
			zap.String("delivery_id", d.ID))
		return &SendResult{}, nil
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+a.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(pushRequest{
			DeviceToken: d.Recipient,
			Title:       d.Subject,
			Body:        d.Content,
			Silent:      d.Silent,
		}).
		Post(a.gatewayURL)
	if err != nil {
		return nil, &ProviderError{
			Message:   "push gateway request failed",
			Retryable: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("push gateway returned status %d", resp.StatusCode()),
			Retryable:  true,
		}
	}

	var parsed pushResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		// delivered but the ack body is garbage; do not retry a success
		a.logger.Warn("unparseable push gateway response", zap.Error(err))
	}
	return &SendResult{MessageID: parsed.MessageID}, nil
}

// DisabledAdapter fills a registry slot for a channel whose provider is not
// configured. Sends fail terminally (never retried) instead of crashing.
type DisabledAdapter struct {
	ch domain.Channel
}

func NewDisabledAdapter(ch domain.Channel) *DisabledAdapter {
	return &DisabledAdapter{ch: ch}
}

func (a *DisabledAdapter) Channel() domain.Channel { return a.ch }

func (a *DisabledAdapter) Send(_ context.Context, _ *domain.DeliveryRecord) (*SendResult, error) {
	return nil, domain.ErrChannelDisabled
}

var (
	_ Adapter = (*PushAdapter)(nil)
	_ Adapter = (*DisabledAdapter)(nil)
)
