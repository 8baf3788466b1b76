package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransition("check_in", "accepted")
	m.ObserveTransition("check_in", "accepted")
	m.ObserveTransition("check_in", "outside_geofence")
	m.SetSessions(3)
	m.MessageSent("attendance_update")
	m.MessageDropped("attendance_update")
	m.ObserveStore("check_in", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("check_in", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("check_in", "outside_geofence")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ConnectedSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesDropped.WithLabelValues("attendance_update")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StoreLatency))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveTransition("check_out", "accepted")
		m.ObserveStore("check_out", time.Now())
		m.SetSessions(1)
		m.MessageSent("x")
		m.MessageDropped("x")
	})
}
