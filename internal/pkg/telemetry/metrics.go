package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Upstream catalog health
	MetricCatalogLatency   = "catalog.fetch_latency"
	MetricCatalogSoftFails = "catalog.soft_failures"

	// Map pipeline
	MetricViewportLag  = "map.viewport_to_markers_latency"
	MetricStaleDropped = "map.stale_responses_dropped"

	// Availability
	MetricUptime = "service.uptime_percentage"
)
