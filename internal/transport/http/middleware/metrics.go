package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Latency buckets sized for a small CRUD API: most handlers answer in tens of
// milliseconds, with the argon2 login path reaching into whole seconds.
var defaultLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// HTTPMetricsOptions configures request instrumentation.
type HTTPMetricsOptions struct {
	Registerer prometheus.Registerer
	Buckets    []float64
	// SkipPaths are served but not counted; defaults to the operational
	// endpoints so scrapes and probes do not drown out clinic traffic.
	SkipPaths []string
}

// HTTPMetrics records request counts and latencies per method, route and status.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec

	skip map[string]struct{}
}

// NewHTTPMetrics builds and registers the request collectors.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = defaultLatencyBuckets
	}

	skipPaths := opts.SkipPaths
	if skipPaths == nil {
		skipPaths = []string{"/metrics", "/healthz", "/readyz"}
	}

	labels := []string{"method", "route", "status"}

	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drplati",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served, by method, route and status.",
		}, labels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "drplati",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds, by method, route and status.",
			Buckets:   buckets,
		}, labels),
		skip: make(map[string]struct{}, len(skipPaths)),
	}

	for _, path := range skipPaths {
		m.skip[path] = struct{}{}
	}

	for _, collector := range []prometheus.Collector{m.Requests, m.Duration} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
	}

	return m, nil
}

// Handler instruments every request that is not on the skip list. A nil
// receiver yields a pass-through, so wiring can stay unconditional.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if _, ok := m.skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Unmatched paths collapse into one label value so probing bots
		// cannot inflate the route cardinality.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		m.Requests.With(labels).Inc()
		m.Duration.With(labels).Observe(time.Since(start).Seconds())
	}
}
