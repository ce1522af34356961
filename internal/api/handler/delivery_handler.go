package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kaziconnect/notify-engine/internal/domain"
	"github.com/kaziconnect/notify-engine/internal/repository"
)

// DeliveryHandler serves the delivery log read endpoints: the only place
// the eventual outcome of an asynchronous send can be observed.
// Recipients are masked on the way out; the raw value never leaves the
// store.
type DeliveryHandler struct {
	repo   repository.DeliveryRepository
	logger *zap.Logger
}

func NewDeliveryHandler(repo repository.DeliveryRepository, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{repo: repo, logger: logger}
}

// deliveryView is the API shape of a DeliveryRecord with the recipient masked.
type deliveryView struct {
	*domain.DeliveryRecord
	Recipient string `json:"recipient"`
}

func newDeliveryView(d *domain.DeliveryRecord) deliveryView {
	return deliveryView{DeliveryRecord: d, Recipient: d.MaskedRecipient()}
}

// GetByID handles GET /api/v1/deliveries/{id}
func (h *DeliveryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newDeliveryView(d))
}

// List handles GET /api/v1/deliveries
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)
	records, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list deliveries failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list deliveries")
		return
	}

	views := make([]deliveryView, len(records))
	for i, d := range records {
		views[i] = newDeliveryView(d)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  views,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func parseListFilter(r *http.Request) domain.ListFilter {
	q := r.URL.Query()
	filter := domain.ListFilter{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	if u := q.Get("user_id"); u != "" {
		filter.UserID = &u
	}
	if s := q.Get("status"); s != "" {
		st := domain.Status(s)
		filter.Status = &st
	}
	if ch := q.Get("channel"); ch != "" {
		c := domain.Channel(ch)
		filter.Channel = &c
	}
	return filter
}
