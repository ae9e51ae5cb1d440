package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CodeRequested("sent")
	m.CodeRequested("sent")
	m.CodeRequested("throttled")
	m.Confirmed("verified")
	m.Saved(true, nil)
	m.Saved(false, errors.New("boom"))
	m.Searched(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CodeRequests.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CodeRequests.WithLabelValues("throttled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Confirmations.WithLabelValues("verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("update", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("false")))
}

func TestActiveFlows(t *testing.T) {
	reg := prometheus.NewRegistry()
	n := 3
	ActiveFlows(reg, func() int { return n })
	count, err := testutil.GatherAndCount(reg, "directory_verification_flows_active")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CodeRequested("sent")
		m.Confirmed("mismatch")
		m.Saved(true, nil)
		m.Searched(true)
	})
}
