package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveCheck("up", true, 20*time.Millisecond)
	m.ObserveCheck("up", false, 0)
	m.ObserveCheck("down", true, time.Second)
	m.ObserveNotifications(2, 1, 3)
	m.ItemProcessed("q1")
	m.ItemProcessed("q1")
	m.ItemFault("q1")
	m.SchedulerExecuted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mChecks.WithLabelValues("up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mChecks.WithLabelValues("down")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mChanges))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mNotifications.WithLabelValues("succeeded")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.mNotifications.WithLabelValues("skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mDrained.WithLabelValues("q1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mFaults.WithLabelValues("q1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mExecutions))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCheck("up", true, time.Millisecond)
		m.ObserveNotifications(1, 1, 1)
		m.ItemProcessed("q")
		m.ItemFault("q")
		m.SchedulerExecuted()
		m.Observe("GET", "/", time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Observe("GET", "/api/v1/queues", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "endpoint_status_http_request_duration_seconds")
}
