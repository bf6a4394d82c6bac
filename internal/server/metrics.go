package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/psidex/chargraph/internal/session"
)

const namespace = "chargraph"

// Metrics keeps its own registry so several servers, e.g. in tests, never
// collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	ActiveSessions   prometheus.Gauge
	FramesSent       prometheus.Counter
	PayloadsRejected *prometheus.CounterVec
}

var _ session.Observer = (*sessionObserver)(nil)

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of open websocket sessions",
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Total number of PNG frames pushed to sessions",
		}),
		PayloadsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payloads_rejected_total",
				Help:      "Total number of graph payloads refused as invalid data",
			},
			[]string{"source"},
		),
	}
	m.registry.MustRegister(m.ActiveSessions, m.FramesSent, m.PayloadsRejected)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// sessionObserver feeds one websocket session's activity into m.
type sessionObserver struct {
	m *Metrics
}

func (o sessionObserver) FrameSent() {
	o.m.FramesSent.Inc()
}

func (o sessionObserver) PayloadRejected() {
	o.m.PayloadsRejected.WithLabelValues("ws").Inc()
}
