package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propdesk_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propdesk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propdesk_filter_pipeline_duration_seconds",
			Help:    "Duration of filter and sort passes per entity",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
		},
		[]string{"entity"},
	)

	PipelineResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propdesk_filter_pipeline_results",
			Help:    "Number of records left after filtering",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"entity"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propdesk_cache_hits_total",
			Help: "Record list cache hits",
		},
		[]string{"key"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propdesk_cache_misses_total",
			Help: "Record list cache misses",
		},
		[]string{"key"},
	)

	SourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propdesk_source_errors_total",
			Help: "Errors returned by the record source",
		},
		[]string{"operation"},
	)
)

// ObservePipeline records one filter and sort pass.
func ObservePipeline(entity string, start time.Time, results int) {
	PipelineDuration.WithLabelValues(entity).Observe(time.Since(start).Seconds())
	PipelineResults.WithLabelValues(entity).Observe(float64(results))
}

// Middleware counts requests by matched route so path parameters do not
// explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
