package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kaziconnect/notify-engine/internal/api/handler"
	apimw "github.com/kaziconnect/notify-engine/internal/api/middleware"
	"github.com/kaziconnect/notify-engine/internal/dispatch"
	"github.com/kaziconnect/notify-engine/internal/repository"
	"github.com/kaziconnect/notify-engine/internal/worker"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	dispatcher *dispatch.Dispatcher,
	repo repository.DeliveryRepository,
	primary, retry *worker.Pool,
	dbPing func(ctx context.Context) error,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	nh := handler.NewNotificationHandler(dispatcher, logger)
	dh := handler.NewDeliveryHandler(repo, logger)
	mh := handler.NewMetricsHandler(primary, retry)
	hh := handler.NewHealthHandler(dbPing)

	// --- routes ---
	r.Get("/health", hh.Health)
	r.Get("/ready", hh.Ready)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Send operations — all asynchronous, all answer 202 Accepted.
		r.Post("/notifications/sms", nh.SendSMS)
		r.Post("/notifications/email", nh.SendEmail)
		r.Post("/notifications/welcome", nh.SendWelcome)
		r.Post("/notifications/application-confirmation", nh.SendApplicationConfirmation)
		r.Post("/notifications/application-status", nh.SendApplicationStatusUpdate)
		r.Post("/notifications/deadline-reminder", nh.SendDeadlineReminder)

		// Delivery log — source of truth for eventual delivery status.
		r.Get("/deliveries", dh.List)
		r.Get("/deliveries/{id}", dh.GetByID)

		// JSON pool snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
