package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts backend calls by operation and outcome. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	fallback *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Backend calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		fallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "gateway",
			Name:      "batch_fallbacks_total",
			Help:      "Per-engineer batch entries replaced by a default.",
		}, []string{"field"}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.fallback)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) observe(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) fellBack(field string) {
	if m == nil {
		return
	}
	m.fallback.WithLabelValues(field).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := internal.IsAppError(err); ok {
		switch appErr.Type {
		case internal.ErrorTypeUnauthorized, internal.ErrorTypeForbidden:
			return "auth"
		case internal.ErrorTypeValidation:
			return "validation"
		case internal.ErrorTypeNotFound:
			return "not_found"
		}
		return "error"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
