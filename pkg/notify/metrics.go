package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll outcomes recorded in PollsTotal
const (
	ResultOK         = "ok"
	ResultError      = "error"
	ResultSkipped    = "skipped"
	ResultSuppressed = "suppressed"
)

// Metrics holds the Prometheus metrics of the notification poller
type Metrics struct {
	PollsTotal   *prometheus.CounterVec
	PollDuration prometheus.Histogram
	UnreadCount  prometheus.Gauge
	AlertsTotal  prometheus.Counter
}

// NewMetrics creates the poller metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PollsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaders_notification_polls_total",
				Help: "Notification poll attempts by result",
			},
			[]string{"result"},
		),
		PollDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leaders_notification_poll_duration_seconds",
				Help:    "Time spent fetching a page of notifications",
				Buckets: prometheus.DefBuckets,
			},
		),
		UnreadCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "leaders_notification_unread",
				Help: "Locally tracked unread notification count",
			},
		),
		AlertsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leaders_notification_alerts_total",
				Help: "New notification alerts raised",
			},
		),
	}
}
