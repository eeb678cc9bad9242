package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can build as many instances as they
// like. Every method is safe on a nil receiver.
type Metrics struct {
	reg *prometheus.Registry

	mChecks        *prometheus.CounterVec
	mChanges       prometheus.Counter
	mLatency       prometheus.Histogram
	mNotifications *prometheus.CounterVec
	mDrained       *prometheus.CounterVec
	mFaults        *prometheus.CounterVec
	mExecutions    prometheus.Counter
	mHTTP          *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		mChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "endpoint_status_checks_total", Help: "Endpoint checks by resulting status",
		}, []string{"status"}),
		mChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "endpoint_status_changes_total", Help: "Checks whose status or message changed",
		}),
		mLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "endpoint_status_probe_latency_seconds",
			Help:    "HTTP probe latency",
			Buckets: prometheus.DefBuckets,
		}),
		mNotifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "endpoint_status_notifications_total", Help: "Notification outcomes per recipient",
		}, []string{"outcome"}),
		mDrained: f.NewCounterVec(prometheus.CounterOpts{
			Name: "endpoint_status_queue_items_processed_total", Help: "Queue items processed",
		}, []string{"queue"}),
		mFaults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "endpoint_status_queue_item_faults_total", Help: "Queue items whose processing faulted",
		}, []string{"queue"}),
		mExecutions: f.NewCounter(prometheus.CounterOpts{
			Name: "endpoint_status_scheduler_executions_total", Help: "Scheduler executions that enqueued endpoints",
		}),
		mHTTP: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "endpoint_status_http_request_duration_seconds",
			Help:    "Admin API request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (m *Metrics) ObserveCheck(status string, changed bool, latency time.Duration) {
	if m == nil {
		return
	}
	m.mChecks.WithLabelValues(status).Inc()
	if changed {
		m.mChanges.Inc()
	}
	if latency > 0 {
		m.mLatency.Observe(latency.Seconds())
	}
}

func (m *Metrics) ObserveNotifications(succeeded, failed, skipped int) {
	if m == nil {
		return
	}
	m.mNotifications.WithLabelValues("succeeded").Add(float64(succeeded))
	m.mNotifications.WithLabelValues("failed").Add(float64(failed))
	m.mNotifications.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) ItemProcessed(queue string) {
	if m == nil {
		return
	}
	m.mDrained.WithLabelValues(queue).Inc()
}

func (m *Metrics) ItemFault(queue string) {
	if m == nil {
		return
	}
	m.mFaults.WithLabelValues(queue).Inc()
}

func (m *Metrics) SchedulerExecuted() {
	if m == nil {
		return
	}
	m.mExecutions.Inc()
}

// Observe satisfies the HTTP middleware's recorder.
func (m *Metrics) Observe(method, path string, duration time.Duration) {
	if m == nil {
		return
	}
	m.mHTTP.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
