package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

func smsRecord() *domain.DeliveryRecord {
	return &domain.DeliveryRecord{
		ID:        "delivery-1",
		Channel:   domain.ChannelSMS,
		Recipient: "+256701234567",
		Content:   "your application was received",
	}
}

func TestSMSAdapterSend(t *testing.T) {
	var gotAPIKey, gotTo, gotUsername, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apiKey")
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotTo = r.PostFormValue("to")
		gotUsername = r.PostFormValue("username")
		gotFrom = r.PostFormValue("from")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"SMSMessageData": {
				"Message": "Sent to 1/1",
				"Recipients": [
					{"number": "+256701234567", "messageId": "ATXid_123", "statusCode": 101, "status": "Success"}
				]
			}
		}`))
	}))
	defer srv.Close()

	a := NewSMSAdapter(srv.URL, "kaziconnect", "secret-key", "KAZI", 5*time.Second)
	result, err := a.Send(context.Background(), smsRecord())
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.MessageID != "ATXid_123" {
		t.Errorf("MessageID = %q, want %q", result.MessageID, "ATXid_123")
	}
	if gotAPIKey != "secret-key" {
		t.Errorf("apiKey header = %q, want %q", gotAPIKey, "secret-key")
	}
	if gotTo != "+256701234567" || gotUsername != "kaziconnect" || gotFrom != "KAZI" {
		t.Errorf("form data to=%q username=%q from=%q", gotTo, gotUsername, gotFrom)
	}
}

func TestSMSAdapterSendFailures(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		wantStatusCode int
	}{
		{
			name:           "gateway error status",
			status:         http.StatusInternalServerError,
			body:           `{"error": "internal"}`,
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:   "unparseable body",
			status: http.StatusOK,
			body:   `not json`,
		},
		{
			name:   "no recipients",
			status: http.StatusOK,
			body:   `{"SMSMessageData": {"Message": "InvalidPhoneNumber", "Recipients": []}}`,
		},
		{
			name:   "recipient rejected",
			status: http.StatusOK,
			body: `{"SMSMessageData": {"Recipients": [
				{"number": "+256701234567", "statusCode": 406, "status": "UserInBlacklist"}
			]}}`,
			wantStatusCode: 406,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			a := NewSMSAdapter(srv.URL, "kaziconnect", "secret-key", "KAZI", 5*time.Second)
			_, err := a.Send(context.Background(), smsRecord())
			if err == nil {
				t.Fatal("Send() succeeded, want error")
			}

			var provErr *ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("error type = %T, want *ProviderError", err)
			}
			if !provErr.Retryable {
				t.Error("gateway failures should be retryable")
			}
			if tt.wantStatusCode != 0 && provErr.StatusCode != tt.wantStatusCode {
				t.Errorf("StatusCode = %d, want %d", provErr.StatusCode, tt.wantStatusCode)
			}
		})
	}
}

func TestSMSAdapterSendConnectionRefused(t *testing.T) {
	// Closed server: transport error, still retryable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := NewSMSAdapter(srv.URL, "kaziconnect", "secret-key", "KAZI", time.Second)
	_, err := a.Send(context.Background(), smsRecord())
	if err == nil {
		t.Fatal("Send() succeeded against a closed server")
	}
	if !Retryable(err) {
		t.Error("transport failure should be retryable")
	}
}
