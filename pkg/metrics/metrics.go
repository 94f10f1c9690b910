package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accessroute"

// Metrics groups the Prometheus collectors emitted by the service. A nil *Metrics is valid
// and records nothing, which keeps tests and the CLI free of registry plumbing.
type Metrics struct {
	routes           *prometheus.CounterVec
	segments         *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	reports          *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
	planDuration     prometheus.Histogram
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		routes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_total",
			Help:      "Routes planned, by path source.",
		}, []string{"source"}),
		segments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_segments_total",
			Help:      "Classified route segments, by accessibility tag.",
		}, []string{"accessibility"}),
		upstreamFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Failed calls to external providers that were degraded locally.",
		}, []string{"provider"}),
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issue_reports_total",
			Help:      "Issue report mutations, by operation.",
		}, []string{"op"}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Calls rejected by an internal rate limiter.",
		}, []string{"limiter"}),
		planDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_plan_duration_seconds",
			Help:      "End-to-end route planning latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}
}

// RouteServed counts a planned route.
func (m *Metrics) RouteServed(source string, seconds float64) {
	if m == nil {
		return
	}
	m.routes.WithLabelValues(source).Inc()
	m.planDuration.Observe(seconds)
}

// SegmentsClassified counts segments carrying the given tag.
func (m *Metrics) SegmentsClassified(tag string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.segments.WithLabelValues(tag).Add(float64(n))
}

// UpstreamFailure counts a degraded provider call.
func (m *Metrics) UpstreamFailure(provider string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(provider).Inc()
}

// ReportMutation counts report create/delete operations.
func (m *Metrics) ReportMutation(op string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(op).Inc()
}

// RateLimited counts a call rejected by the named limiter.
func (m *Metrics) RateLimited(limiter string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(limiter).Inc()
}
