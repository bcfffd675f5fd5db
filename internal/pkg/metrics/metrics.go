package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csp",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "csp",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Plaque catalog metrics
	PlaqueFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csp",
		Subsystem: "plaques",
		Name:      "fetches_total",
		Help:      "Upstream plaque API fetches issued",
	}, []string{"kind"}) // list | search | detail | photo

	PlaqueFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csp",
		Subsystem: "plaques",
		Name:      "fetch_errors_total",
		Help:      "Upstream plaque API fetches that failed soft",
	}, []string{"kind", "reason"}) // reason: network | api | parse

	PlaqueFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "csp",
		Subsystem: "plaques",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream plaque API fetch latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"kind"})

	StaleResponsesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "csp",
		Subsystem: "loader",
		Name:      "stale_responses_dropped_total",
		Help:      "Fetch responses discarded because a newer request was issued",
	})

	LoadsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csp",
		Subsystem: "loader",
		Name:      "loads_triggered_total",
		Help:      "Primary reloads triggered, by cause",
	}, []string{"cause"}) // search | zoom | bounds | grouped | initial | load_more

	ClustersBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "csp",
		Subsystem: "cluster",
		Name:      "groups_built_total",
		Help:      "Cluster groups produced across render passes",
	})

	MarkersRendered = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "csp",
		Subsystem: "cluster",
		Name:      "markers_per_render",
		Help:      "Markers emitted per render pass",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 800},
	})

	ActiveMapSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "csp",
		Subsystem: "ws",
		Name:      "active_map_sessions",
		Help:      "Current number of connected map sessions",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csp",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csp",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
