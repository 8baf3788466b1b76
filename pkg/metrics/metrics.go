package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Transitions       *prometheus.CounterVec
	StoreLatency      *prometheus.HistogramVec
	ConnectedSessions prometheus.Gauge
	MessagesSent      *prometheus.CounterVec
	MessagesDropped   *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geoattend_attendance_transitions_total",
			Help: "Attendance transition attempts by kind and outcome",
		}, []string{"kind", "outcome"}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geoattend_store_operation_seconds",
			Help:    "Latency of attendance store round trips",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ConnectedSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "geoattend_presence_sessions",
			Help: "Currently registered presence sessions",
		}),
		MessagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geoattend_presence_messages_sent_total",
			Help: "Presence messages enqueued for delivery by event type",
		}, []string{"event"}),
		MessagesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geoattend_presence_messages_dropped_total",
			Help: "Presence messages dropped because a connection queue was full or closed",
		}, []string{"event"}),
	}
}

// ObserveTransition counts a check-in or check-out attempt.
func (m *Metrics) ObserveTransition(kind, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(kind, outcome).Inc()
}

// ObserveStore records how long a store operation took.
func (m *Metrics) ObserveStore(operation string, started time.Time) {
	if m == nil {
		return
	}
	m.StoreLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// SetSessions sets the connected session gauge.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.ConnectedSessions.Set(float64(n))
}

// MessageSent counts an enqueued presence message.
func (m *Metrics) MessageSent(event string) {
	if m == nil {
		return
	}
	m.MessagesSent.WithLabelValues(event).Inc()
}

// MessageDropped counts a presence message that could not be enqueued.
func (m *Metrics) MessageDropped(event string) {
	if m == nil {
		return
	}
	m.MessagesDropped.WithLabelValues(event).Inc()
}
