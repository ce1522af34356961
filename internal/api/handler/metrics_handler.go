package handler

import (
	"net/http"

	"github.com/kaziconnect/notify-engine/internal/worker"
)

// MetricsHandler serves a human-readable JSON snapshot of the worker pools.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	primary *worker.Pool
	retry   *worker.Pool
}

func NewMetricsHandler(primary, retry *worker.Pool) *MetricsHandler {
	return &MetricsHandler{primary: primary, retry: retry}
}

// GetMetrics handles GET /api/v1/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"queue_depth": map[string]int{
			"primary": h.primary.QueueDepth(),
			"retry":   h.retry.QueueDepth(),
		},
	})
}
