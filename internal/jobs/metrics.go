// Package jobmetrics instruments background job runs with Prometheus.
package jobmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Metrics holds the job collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	lastSuccess   *prometheus.GaugeVec
	notifications *prometheus.CounterVec
}

// NewMetrics registers the collectors on registerer, or on the default
// registerer when registerer is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onco_jobs_total",
			Help: "Job executions by job name and status.",
		}, []string{"job", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onco_job_duration_seconds",
			Help:    "Job execution time in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "onco_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per job.",
		}, []string{"job"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onco_job_notifications_total",
			Help: "Notification entries created by background jobs.",
		}, []string{"job"}),
	}
	registerer.MustRegister(m.runs, m.duration, m.lastSuccess, m.notifications)
	return m
}

// Tracker measures one job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts measuring a run of job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records the outcome of the run and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	finished := time.Now()
	status := statusSuccess
	if err != nil {
		status = statusFailure
	} else {
		t.metrics.lastSuccess.WithLabelValues(t.job).Set(float64(finished.Unix()))
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(finished.Sub(t.start).Seconds())
	return err
}

// AddNotifications counts notification entries produced by job.
func (m *Metrics) AddNotifications(job string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.notifications.WithLabelValues(job).Add(float64(count))
}
