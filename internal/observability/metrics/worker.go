package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	service  string
	registry *prometheus.Registry

	notificationsTotal *prometheus.CounterVec
	eventLag           *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	notificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdp",
			Subsystem: "notifier",
			Name:      "notifications_total",
			Help:      "Total handled transition events by target state and status.",
		},
		[]string{"service", "to_state", "status"},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sdp",
			Subsystem: "notifier",
			Name:      "event_lag_seconds",
			Help:      "Delay between transition commit and event handling.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)

	registry.MustRegister(notificationsTotal, eventLag)

	return &WorkerMetrics{
		service:            service,
		registry:           registry,
		notificationsTotal: notificationsTotal,
		eventLag:           eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) RecordNotification(toState string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if toState == "" {
		toState = "unknown"
	}
	m.notificationsTotal.WithLabelValues(m.service, toState, status).Inc()
}

func (m *WorkerMetrics) ObserveEventLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
