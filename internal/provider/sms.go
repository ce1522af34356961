package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// SMSAdapter delivers through an HTTP SMS gateway. The gateway takes a
// form-encoded request (username, to, message, from) authenticated by an
// API key header, and answers 2xx with a JSON body carrying per-recipient
// message ids in a nested recipients array.
type SMSAdapter struct {
	client   *resty.Client
	endpoint string
	username string
	apiKey   string
	senderID string
}

// smsResponse maps the gateway's nested response structure.
type smsResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number     string `json:"number"`
			MessageID  string `json:"messageId"`
			StatusCode int    `json:"statusCode"`
			Status     string `json:"status"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

func NewSMSAdapter(endpoint, username, apiKey, senderID string, timeout time.Duration) *SMSAdapter {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0) // retries are the scheduler's job, not the HTTP client's

	return &SMSAdapter{
		client:   client,
		endpoint: endpoint,
		username: username,
		apiKey:   apiKey,
		senderID: senderID,
	}
}

func (a *SMSAdapter) Channel() domain.Channel { return domain.ChannelSMS }

// Send posts the message to the gateway. Any non-2xx status, transport
// failure, or unparseable response is a retryable ProviderError — the
// gateway gives no reliable way to distinguish permanent rejections.
func (a *SMSAdapter) Send(ctx context.Context, d *domain.DeliveryRecord) (*SendResult, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("apiKey", a.apiKey).
		SetFormData(map[string]string{
			"username": a.username,
			"to":       d.Recipient,
			"message":  d.Content,
			"from":     a.senderID,
		}).
		Post(a.endpoint)
	if err != nil {
		return nil, &ProviderError{
			Message:   "sms gateway request failed",
			Retryable: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("sms gateway returned status %d", resp.StatusCode()),
			Retryable:  true,
		}
	}

	var parsed smsResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, &ProviderError{
			Message:   "unparseable sms gateway response",
			Retryable: true,
			Cause:     err,
		}
	}

	recipients := parsed.SMSMessageData.Recipients
	if len(recipients) == 0 {
		return nil, &ProviderError{
			Message:   "sms gateway response contained no recipients: " + parsed.SMSMessageData.Message,
			Retryable: true,
		}
	}

	rec := recipients[0]
	if rec.StatusCode >= 400 {
		return nil, &ProviderError{
			StatusCode: rec.StatusCode,
			Message:    fmt.Sprintf("sms gateway rejected recipient: %s", rec.Status),
			Retryable:  true,
		}
	}

	return &SendResult{MessageID: rec.MessageID}, nil
}

var _ Adapter = (*SMSAdapter)(nil)
