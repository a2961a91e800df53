// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total number of task requests handled",
		},
		[]string{"task", "status"},
	)

	MatchRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "match_request_duration_seconds",
			Help: "Duration of task request handling in seconds",
		},
		[]string{"task"},
	)

	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_candidates_scored_total",
			Help: "Total number of candidates scored",
		},
		[]string{"kind"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_cache_hits_total",
			Help: "Search cache hits and misses",
		},
		[]string{"result"},
	)

	ScoringDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_degraded_total",
			Help: "Requests where an optional sub-score input was unavailable",
		},
		[]string{"input"},
	)
)
