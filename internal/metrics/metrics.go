package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	DeliveriesSent       *prometheus.CounterVec
	DeliveriesFailed     *prometheus.CounterVec
	DeliveriesSuppressed *prometheus.CounterVec
	RetriesScheduled     *prometheus.CounterVec
	DeliveryLatency      *prometheus.HistogramVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct. The queue depth gauges sample the
// worker pools lazily on every scrape, so they need no update calls.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer, primaryQueueDepth, retryQueueDepth func() int) *Metrics {
	m := &Metrics{
		DeliveriesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deliveries_sent_total",
			Help: "Total number of successfully delivered notifications.",
		}, []string{"channel"}),

		DeliveriesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deliveries_failed_total",
			Help: "Total number of permanently failed notifications (retries exhausted or channel disabled).",
		}, []string{"channel"}),

		DeliveriesSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deliveries_suppressed_total",
			Help: "Total number of notifications suppressed by the preference gate.",
		}, []string{"channel"}),

		RetriesScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_retries_scheduled_total",
			Help: "Total number of failed attempts that were scheduled for retry.",
		}, []string{"channel"}),

		DeliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "delivery_attempt_seconds",
			Help:    "Per-attempt latency from task start to provider ack.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),
	}

	reg.MustRegister(
		m.DeliveriesSent,
		m.DeliveriesFailed,
		m.DeliveriesSuppressed,
		m.RetriesScheduled,
		m.DeliveryLatency,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "primary_pool_queue_depth",
			Help: "Current number of tasks waiting in the primary send pool.",
		}, func() float64 { return float64(primaryQueueDepth()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "retry_pool_queue_depth",
			Help: "Current number of tasks waiting in the retry pool.",
		}, func() float64 { return float64(retryQueueDepth()) }),
	)

	return m
}

// DispatcherHooks returns the metric callback functions expected by
// dispatch.Hooks. Centralises the prometheus observation calls so the
// dispatcher stays metrics-agnostic.
func (m *Metrics) DispatcherHooks() (
	onSent func(domain.Channel, time.Duration),
	onFailed func(domain.Channel),
	onSuppressed func(domain.Channel),
	onRetryScheduled func(domain.Channel),
) {
	onSent = func(ch domain.Channel, latency time.Duration) {
		m.DeliveriesSent.WithLabelValues(string(ch)).Inc()
		m.DeliveryLatency.WithLabelValues(string(ch)).Observe(latency.Seconds())
	}
	onFailed = func(ch domain.Channel) {
		m.DeliveriesFailed.WithLabelValues(string(ch)).Inc()
	}
	onSuppressed = func(ch domain.Channel) {
		m.DeliveriesSuppressed.WithLabelValues(string(ch)).Inc()
	}
	onRetryScheduled = func(ch domain.Channel) {
		m.RetriesScheduled.WithLabelValues(string(ch)).Inc()
	}
	return
}
