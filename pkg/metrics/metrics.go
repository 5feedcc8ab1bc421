package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiot_http_requests_total",
			Help: "Total number of HTTP requests by service, method and status code",
		},
		[]string{"service", "method", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aiot_http_request_duration_seconds",
			Help:    "HTTP request latency by service and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)

	// Gateway metrics
	ProxyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiot_proxy_requests_total",
			Help: "Total number of proxied requests by upstream service and outcome",
		},
		[]string{"upstream", "outcome"},
	)

	UpstreamInstances = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aiot_upstream_healthy_instances",
			Help: "Number of healthy instances known for each upstream service",
		},
		[]string{"upstream"},
	)

	// Messaging metrics
	MQPublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiot_mq_publishes_total",
			Help: "Total number of messages published by exchange",
		},
		[]string{"exchange"},
	)

	MQConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiot_mq_consumed_total",
			Help: "Total number of messages consumed by queue and outcome",
		},
		[]string{"queue", "outcome"},
	)

	// Archiver metrics
	ArchivedRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiot_archived_rows_total",
			Help: "Total number of rows moved into archive tables",
		},
		[]string{"table"},
	)

	ArchiveRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiot_archive_runs_total",
			Help: "Total number of archive runs by outcome",
		},
		[]string{"outcome"},
	)

	// Cache metrics
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiot_cache_hits_total",
			Help: "Total number of cache lookups by key kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProxyRequestsTotal,
		UpstreamInstances,
		MQPublishesTotal,
		MQConsumedTotal,
		ArchivedRowsTotal,
		ArchiveRunsTotal,
		CacheHitsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
