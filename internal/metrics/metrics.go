package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Analysis metrics
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scam_detector_analyses_total",
			Help: "Total messages analyzed, by detection method and verdict",
		},
		[]string{"method", "is_scam"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scam_detector_analysis_duration_seconds",
			Help:    "End-to-end latency of one message analysis",
			Buckets: prometheus.DefBuckets,
		},
	)

	DecisionPath = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scam_detector_decision_path_total",
			Help: "Which path of the decision policy produced the verdict",
		},
		[]string{"path"},
	)

	// Reputation cache metrics
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scam_detector_reputation_cache_hits_total",
			Help: "Reputation cache hits",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scam_detector_reputation_cache_misses_total",
			Help: "Reputation cache misses and expiries",
		},
	)

	FetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scam_detector_reputation_fetch_failures_total",
			Help: "External reputation lookups that failed or timed out",
		},
	)

	// Generative oracle metrics
	OracleCalls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scam_detector_oracle_calls_total",
			Help: "Generative oracle invocations",
		},
	)

	OracleFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scam_detector_oracle_failures_total",
			Help: "Generative oracle calls that returned no usable result",
		},
	)
)

func init() {
	prometheus.MustRegister(
		AnalysesTotal,
		AnalysisDuration,
		DecisionPath,
		CacheHits,
		CacheMisses,
		FetchFailures,
		OracleCalls,
		OracleFailures,
	)
}
