package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/kaziconnect/notify-engine/internal/api/middleware"
	"github.com/kaziconnect/notify-engine/internal/dispatch"
	"github.com/kaziconnect/notify-engine/internal/domain"
	"github.com/kaziconnect/notify-engine/internal/template"
)

// NotificationHandler exposes the platform-facing send operations.
// Every endpoint answers 202 Accepted once validation passes; the actual
// delivery outcome is observable through the deliveries endpoints.
type NotificationHandler struct {
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

func NewNotificationHandler(dispatcher *dispatch.Dispatcher, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher, logger: logger}
}

type sendSMSRequest struct {
	UserID   string          `json:"user_id"`
	Phone    string          `json:"phone"`
	Message  string          `json:"message"`
	Category domain.Category `json:"category,omitempty"`
	Priority domain.Priority `json:"priority,omitempty"`
}

type sendEmailRequest struct {
	UserID   string          `json:"user_id"`
	Email    string          `json:"email"`
	Subject  string          `json:"subject"`
	Message  string          `json:"message"`
	HTMLBody string          `json:"html_body,omitempty"`
	Category domain.Category `json:"category,omitempty"`
	Priority domain.Priority `json:"priority,omitempty"`
}

// templateRequest is shared by the templated notification endpoints.
// Exactly one of phone/email selects the channel; phone wins when both are
// set (SMS reaches feature phones, the platform's primary audience).
type templateRequest struct {
	UserID   string `json:"user_id"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	JobTitle string `json:"job_title,omitempty"`
	Company  string `json:"company,omitempty"`
	Status   string `json:"status,omitempty"`
	Deadline string `json:"deadline,omitempty"`
	Language string `json:"language,omitempty"`
}

func (t *templateRequest) channel() (domain.Channel, string) {
	if t.Phone != "" {
		return domain.ChannelSMS, t.Phone
	}
	return domain.ChannelEmail, t.Email
}

// SendSMS handles POST /api/v1/notifications/sms
func (h *NotificationHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var req sendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Category == "" {
		req.Category = domain.CategoryTransactional
	}
	h.dispatch(w, r, domain.NotificationRequest{
		UserID:    req.UserID,
		Channel:   domain.ChannelSMS,
		Recipient: req.Phone,
		Content:   req.Message,
		Category:  req.Category,
		Priority:  req.Priority,
	})
}

// SendEmail handles POST /api/v1/notifications/email
func (h *NotificationHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Category == "" {
		req.Category = domain.CategoryTransactional
	}
	h.dispatch(w, r, domain.NotificationRequest{
		UserID:    req.UserID,
		Channel:   domain.ChannelEmail,
		Recipient: req.Email,
		Subject:   req.Subject,
		Content:   req.Message,
		HTMLBody:  req.HTMLBody,
		Category:  req.Category,
		Priority:  req.Priority,
	})
}

// SendWelcome handles POST /api/v1/notifications/welcome
func (h *NotificationHandler) SendWelcome(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTemplateRequest(w, r)
	if !ok {
		return
	}
	subject, body := template.Welcome(req.Language, req.Name)
	h.dispatchTemplated(w, r, req, subject, body, domain.CategoryTransactional, domain.PriorityNormal)
}

// SendApplicationConfirmation handles POST /api/v1/notifications/application-confirmation
func (h *NotificationHandler) SendApplicationConfirmation(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTemplateRequest(w, r)
	if !ok {
		return
	}
	subject, body := template.ApplicationConfirmation(req.Language, req.Name, req.JobTitle, req.Company)
	h.dispatchTemplated(w, r, req, subject, body, domain.CategoryTransactional, domain.PriorityNormal)
}

// SendApplicationStatusUpdate handles POST /api/v1/notifications/application-status
func (h *NotificationHandler) SendApplicationStatusUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTemplateRequest(w, r)
	if !ok {
		return
	}
	subject, body := template.StatusUpdate(req.Language, req.Name, req.JobTitle, req.Status)
	h.dispatchTemplated(w, r, req, subject, body, domain.CategoryTransactional, domain.PriorityNormal)
}

// SendDeadlineReminder handles POST /api/v1/notifications/deadline-reminder
func (h *NotificationHandler) SendDeadlineReminder(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTemplateRequest(w, r)
	if !ok {
		return
	}
	subject, body := template.DeadlineReminder(req.Language, req.JobTitle, req.Deadline)
	h.dispatchTemplated(w, r, req, subject, body, domain.CategoryAlert, domain.PriorityHigh)
}

func decodeTemplateRequest(w http.ResponseWriter, r *http.Request) (templateRequest, bool) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

func (h *NotificationHandler) dispatchTemplated(
	w http.ResponseWriter,
	r *http.Request,
	req templateRequest,
	subject, body string,
	category domain.Category,
	priority domain.Priority,
) {
	channel, recipient := req.channel()
	n := domain.NotificationRequest{
		UserID:    req.UserID,
		Channel:   channel,
		Recipient: recipient,
		Content:   body,
		Category:  category,
		Priority:  priority,
		Language:  req.Language,
	}
	if channel == domain.ChannelEmail {
		n.Subject = subject
	}
	h.dispatch(w, r, n)
}

func (h *NotificationHandler) dispatch(w http.ResponseWriter, r *http.Request, req domain.NotificationRequest) {
	handle, err := h.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		h.logger.Warn("dispatch rejected",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("channel", string(req.Channel)),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	// Suppressed dispatches resolve synchronously; report that directly
	// instead of a pending summary the caller would have to poll away.
	select {
	case <-handle.Done():
		result, _ := handle.Wait(r.Context())
		respondJSON(w, http.StatusAccepted, result)
	default:
		respondJSON(w, http.StatusAccepted, handle.Accepted())
	}
}
