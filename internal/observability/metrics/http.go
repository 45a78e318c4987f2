package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	transitionsTotal      *prometheus.CounterVec
	documentsCreatedTotal *prometheus.CounterVec
	historyExportsTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sdp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sdp",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdp",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Total transition attempts by target state and outcome.",
		},
		[]string{"service", "to", "outcome"},
	)
	documentsCreatedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdp",
			Subsystem: "workflow",
			Name:      "documents_created_total",
			Help:      "Total document creation attempts by outcome.",
		},
		[]string{"service", "outcome"},
	)
	historyExportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdp",
			Subsystem: "workflow",
			Name:      "history_exports_total",
			Help:      "Total audit history workbook exports.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		transitionsTotal,
		documentsCreatedTotal,
		historyExportsTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		transitionsTotal:      transitionsTotal,
		documentsCreatedTotal: documentsCreatedTotal,
		historyExportsTotal:   historyExportsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/documents/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/v1/documents/")
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return "/v1/documents/{document_id}/" + rest[idx+1:]
	}
	return "/v1/documents/{document_id}"
}

// RecordTransition counts one transition attempt. The outcome label is
// derived from the typed error kind.
func (m *HTTPServerMetrics) RecordTransition(service string, to domain.DocumentState, err error) {
	m.transitionsTotal.WithLabelValues(service, string(to), outcomeLabel(err)).Inc()
}

func (m *HTTPServerMetrics) RecordDocumentCreated(service string, err error) {
	m.documentsCreatedTotal.WithLabelValues(service, outcomeLabel(err)).Inc()
}

func (m *HTTPServerMetrics) RecordHistoryExport(service string) {
	m.historyExportsTotal.WithLabelValues(service).Inc()
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.IsKind(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case domain.IsKind(err, domain.ErrForbidden):
		return "forbidden"
	case domain.IsKind(err, domain.ErrConcurrentModification):
		return "conflict"
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return "not_found"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
