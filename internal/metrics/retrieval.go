package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotscout",
			Name:      "search_requests_total",
			Help:      "Search requests by the path that produced the results",
		},
		[]string{"path", "status"}, // path: "semantic" / "structured" / "fallback"
	)

	SearchFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotscout",
			Name:      "search_fallbacks_total",
			Help:      "Semantic-path failures recovered via the structured path",
		},
		[]string{"reason"}, // "embedding_unavailable" / "matcher_unavailable"
	)

	ScoreboardProfileFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lotscout",
			Name:      "scoreboard_profile_failures_total",
			Help:      "Interest profiles degraded to an empty result set",
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(ScoreboardProfileFailures)
	retrievalMetricsRegistered = true
}
