// Package metrics — Prometheus-метрики сервиса.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wghttp"

type Metrics struct {
	reg prometheus.Gatherer

	BackendOperations *prometheus.CounterVec   // op, status
	BackendDuration   *prometheus.HistogramVec // op
	BackendErrors     *prometheus.CounterVec   // op, kind
	QueueRejected     prometheus.Counter
	HTTPRequests      *prometheus.CounterVec // method, route, status
}

// New регистрирует метрики в reg. nil — отдельный реестр (удобно в тестах).
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		reg: reg,
		BackendOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_operations_total",
			Help:      "Adapter operations by result.",
		}, []string{"op", "status"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_operation_duration_seconds",
			Help:      "Time spent inside adapter calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
		BackendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Adapter failures by error kind.",
		}, []string{"op", "kind"}),
		QueueRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_rejected_total",
			Help:      "Requests rejected because too many were already waiting.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.BackendOperations, m.BackendDuration, m.BackendErrors, m.QueueRejected, m.HTTPRequests)
	return m
}

// ObserveBackend учитывает один вызов адаптера. kind пустой при успехе.
func (m *Metrics) ObserveBackend(op string, started time.Time, kind string) {
	if m == nil {
		return
	}
	m.BackendDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if kind == "" {
		m.BackendOperations.WithLabelValues(op, "ok").Inc()
		return
	}
	m.BackendOperations.WithLabelValues(op, "error").Inc()
	m.BackendErrors.WithLabelValues(op, kind).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
