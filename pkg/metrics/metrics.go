package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StagingMetrics records the health of the staging flows: upstream ERP
// round-trips, commit outcomes, and live session counts.
type StagingMetrics struct {
	upstreamDuration *prometheus.HistogramVec
	commits          *prometheus.CounterVec
	sessions         *prometheus.GaugeVec
}

// NewStagingMetrics registers the staging collectors on the given registerer.
func NewStagingMetrics(reg prometheus.Registerer) *StagingMetrics {
	m := &StagingMetrics{
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storeops",
			Subsystem: "erp",
			Name:      "request_duration_seconds",
			Help:      "Duration of upstream ERP calls by operation and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeops",
			Subsystem: "staging",
			Name:      "commits_total",
			Help:      "Commit attempts by flow (stock_in/stock_out) and outcome.",
		}, []string{"flow", "outcome"}),
		sessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "storeops",
			Subsystem: "staging",
			Name:      "active_sessions",
			Help:      "Currently open staging sessions by flow.",
		}, []string{"flow"}),
	}

	if reg != nil {
		reg.MustRegister(m.upstreamDuration, m.commits, m.sessions)
	}
	return m
}

// ObserveUpstream records one upstream call.
func (m *StagingMetrics) ObserveUpstream(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.upstreamDuration.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

// CountCommit records one commit attempt.
func (m *StagingMetrics) CountCommit(flow string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.commits.WithLabelValues(flow, outcome).Inc()
}

// SessionOpened increments the live session gauge for a flow.
func (m *StagingMetrics) SessionOpened(flow string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(flow).Inc()
}

// SessionClosed decrements the live session gauge for a flow.
func (m *StagingMetrics) SessionClosed(flow string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(flow).Dec()
}
