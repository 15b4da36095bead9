package services

import "github.com/prometheus/client_golang/prometheus"

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

var (
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsagg_cache_lookups_total",
			Help: "Article lookups by source kind and cache result (hit, miss, error).",
		},
		[]string{"kind", "result"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsagg_fetch_duration_seconds",
			Help:    "Latency of upstream news fetches by source kind.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(cacheLookups, fetchDuration)
}
