package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Recorder(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Submission("engine")
	m.Submission("fallback")
	m.Submission("fallback")
	m.EngineFailure("unreachable")
	m.PersistFailure()
	m.ObserveHTTP("POST", "/analysis", "200", 150*time.Millisecond)
	m.InFlight(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("engine")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Submissions.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EngineFailures.WithLabelValues("unreachable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/analysis", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPInFlight))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
