// Package metrics exposes Prometheus collectors and the in-process
// component health registry backing every service's /metrics and /health
// endpoints.
package metrics
