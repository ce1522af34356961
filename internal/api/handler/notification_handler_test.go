package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kaziconnect/notify-engine/internal/dispatch"
	"github.com/kaziconnect/notify-engine/internal/domain"
	"github.com/kaziconnect/notify-engine/internal/preference"
	"github.com/kaziconnect/notify-engine/internal/provider"
	"github.com/kaziconnect/notify-engine/internal/ratelimiter"
	"github.com/kaziconnect/notify-engine/internal/repository"
	"github.com/kaziconnect/notify-engine/internal/worker"
)

type stubAdapter struct {
	ch    domain.Channel
	calls int
}

func (s *stubAdapter) Send(context.Context, *domain.DeliveryRecord) (*provider.SendResult, error) {
	s.calls++
	return &provider.SendResult{MessageID: "msg-1"}, nil
}

func (s *stubAdapter) Channel() domain.Channel { return s.ch }

type stubPrefStore struct{ prefs *preference.Preferences }

func (s *stubPrefStore) Get(_ context.Context, userID string) (*preference.Preferences, error) {
	if s.prefs != nil {
		return s.prefs, nil
	}
	return preference.Defaults(userID), nil
}

// newTestHandler wires a NotificationHandler over unstarted zero-capacity
// pools, so dispatches complete inline and tests can assert on the stored
// record right after the request returns.
func newTestHandler(repo repository.DeliveryRepository, prefs preference.Store, adapters provider.Registry) *NotificationHandler {
	logger := zap.NewNop()
	primary := worker.NewPool("primary", 1, 0, logger)
	retry := worker.NewPool("retry", 1, 0, logger)
	d := dispatch.NewDispatcher(repo, prefs, adapters, primary, retry,
		ratelimiter.New(1000), dispatch.Options{}, logger, dispatch.Hooks{})
	return NewNotificationHandler(d, logger)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestSendSMSAccepted(t *testing.T) {
	repo := repository.NewMockDeliveryRepository()
	adapter := &stubAdapter{ch: domain.ChannelSMS}
	h := newTestHandler(repo, &stubPrefStore{}, provider.Registry{domain.ChannelSMS: adapter})

	rr := postJSON(t, h.SendSMS, `{"user_id":"user-1","phone":"0701234567","message":"hello"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}

	var result domain.DeliveryResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.ID == "" {
		t.Error("response missing delivery id")
	}
	if result.Recipient != "+2567****567" {
		t.Errorf("response recipient = %q, want masked", result.Recipient)
	}
	if adapter.calls != 1 {
		t.Errorf("adapter called %d times, want 1", adapter.calls)
	}
}

func TestSendSMSValidation(t *testing.T) {
	repo := repository.NewMockDeliveryRepository()
	h := newTestHandler(repo, &stubPrefStore{}, provider.Registry{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{`, want: http.StatusBadRequest},
		{name: "missing user id", body: `{"phone":"0701234567","message":"hi"}`, want: http.StatusUnprocessableEntity},
		{name: "bad phone", body: `{"user_id":"u1","phone":"abc","message":"hi"}`, want: http.StatusUnprocessableEntity},
		{name: "empty message", body: `{"user_id":"u1","phone":"0701234567"}`, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := postJSON(t, h.SendSMS, tt.body); rr.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}

	if _, total, _ := repo.List(context.Background(), domain.ListFilter{}); total != 0 {
		t.Errorf("rejected requests created %d records", total)
	}
}

func TestSendEmailSuppressedReportsImmediately(t *testing.T) {
	prefs := preference.Defaults("user-1")
	prefs.EmailEnabled = false

	repo := repository.NewMockDeliveryRepository()
	adapter := &stubAdapter{ch: domain.ChannelEmail}
	h := newTestHandler(repo, &stubPrefStore{prefs: prefs}, provider.Registry{domain.ChannelEmail: adapter})

	rr := postJSON(t, h.SendEmail,
		`{"user_id":"user-1","email":"jdoe@example.com","subject":"hi","message":"hello"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}

	var result domain.DeliveryResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != domain.StatusSuppressed {
		t.Errorf("response status = %s, want suppressed", result.Status)
	}
	if adapter.calls != 0 {
		t.Errorf("suppressed request reached the provider %d times", adapter.calls)
	}
}

func TestSendWelcomePrefersPhone(t *testing.T) {
	repo := repository.NewMockDeliveryRepository()
	sms := &stubAdapter{ch: domain.ChannelSMS}
	email := &stubAdapter{ch: domain.ChannelEmail}
	h := newTestHandler(repo, &stubPrefStore{}, provider.Registry{
		domain.ChannelSMS:   sms,
		domain.ChannelEmail: email,
	})

	rr := postJSON(t, h.SendWelcome,
		`{"user_id":"user-1","phone":"0701234567","email":"jdoe@example.com","name":"Amina"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}
	if sms.calls != 1 || email.calls != 0 {
		t.Errorf("sms calls = %d, email calls = %d; want sms only", sms.calls, email.calls)
	}

	records, _, err := repo.List(context.Background(), domain.ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want 1", len(records))
	}
	if !strings.Contains(records[0].Content, "Amina") {
		t.Errorf("welcome content missing name: %q", records[0].Content)
	}
}

func TestSendDeadlineReminderIsAlert(t *testing.T) {
	repo := repository.NewMockDeliveryRepository()
	sms := &stubAdapter{ch: domain.ChannelSMS}
	h := newTestHandler(repo, &stubPrefStore{}, provider.Registry{domain.ChannelSMS: sms})

	rr := postJSON(t, h.SendDeadlineReminder,
		`{"user_id":"user-1","phone":"0701234567","job_title":"Driver","deadline":"1 July"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}

	records, _, err := repo.List(context.Background(), domain.ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want 1", len(records))
	}
	if records[0].Category != domain.CategoryAlert {
		t.Errorf("category = %s, want alert", records[0].Category)
	}
	if records[0].Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, want high", records[0].Priority)
	}
}
