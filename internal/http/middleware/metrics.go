// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. Labels are
// kept bounded:
//
//   - method: HTTP verb
//   - path:   the registered Gin route (e.g. /api/v1/cache/:kind), or the raw
//     path when no route matched
//   - status: numeric status code as a string
//   - cache:  X-Cache response header (HIT, MISS), counted only when set
package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsagg",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// status is left out to keep the histogram small.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsagg",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			// cache hits are fast, upstream fetches are slow
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsagg",
			Name:      "http_requests_inflight",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsagg",
			Name:      "http_response_size_bytes",
			Help:      "Size of HTTP responses in bytes.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B..4MiB
		},
		[]string{"method", "path"},
	)

	httpCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsagg",
			Name:      "http_cache_responses_total",
			Help:      "Responses by article cache outcome as reported in X-Cache.",
		},
		[]string{"path", "cache"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, httpCache)
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
// Expose the collectors with r.GET("/metrics", gin.WrapH(promhttp.Handler())).
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
		if hit := strings.ToUpper(c.Writer.Header().Get(CacheHeader)); hit != "" {
			httpCache.WithLabelValues(path, hit).Inc()
		}
	}
}
