package metrics

import "github.com/prometheus/client_golang/prometheus"

// Rewrite Prometheus metrics.
var (
	RewriteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rangedex",
			Name:      "rewrite_requests_total",
			Help:      "Total number of rewrite requests",
		},
		[]string{"index", "result"},
	)

	RewriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rangedex",
			Name:      "rewrite_duration_seconds",
			Help:      "Rewrite duration in seconds, snapshot included",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"index"},
	)

	RangeConstructsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rangedex",
			Name:      "range_constructs_total",
			Help:      "Range queries and filters analyzed",
		},
		[]string{"index", "context", "outcome"}, // outcome: "kept" / "match_all"
	)

	ExtentSegmentsScannedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rangedex",
			Name:      "extent_segments_scanned_total",
			Help:      "Segments consulted while computing field extents",
		},
		[]string{"index"},
	)
)

var rewriteMetricsRegistered bool

// RegisterRewriteMetrics registers Prometheus rewrite metrics. Must be called once from main.
func RegisterRewriteMetrics() {
	if rewriteMetricsRegistered {
		return
	}
	prometheus.MustRegister(RewriteRequestsTotal)
	prometheus.MustRegister(RewriteDuration)
	prometheus.MustRegister(RangeConstructsTotal)
	prometheus.MustRegister(ExtentSegmentsScannedTotal)
	rewriteMetricsRegistered = true
}
