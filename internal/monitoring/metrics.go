package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	FeedQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_queries_total",
			Help: "Total number of feed pipeline executions",
		},
		[]string{"shape"},
	)

	FeedQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_query_duration_seconds",
			Help:    "Duration of feed pipeline executions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"shape"},
	)

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses, including absorbed backend failures",
		},
	)

	CacheInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Total number of eagerly invalidated cache keys",
		},
	)
)

// Register installs the collectors on the default registry. Call once at
// startup; tests leave the metrics unregistered.
func Register() {
	prometheus.MustRegister(
		FeedQueriesTotal,
		FeedQueryDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheInvalidationsTotal,
	)
}
