package endpoints

import (
	"net/http"
	"time"

	"github.com/wenhsiu/aiot-in-go/pkg/metrics"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// version is overridden at build time via -ldflags
var version = "0.1.0"

type statusResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// RegisterStatusEndpoints registers the health and metrics endpoints.
// /api/status is what Consul's health check polls; /health reports the
// per-component view from the health registry.
func RegisterStatusEndpoints(s *server.Server, service string) {
	metrics.SetVersion(version)
	s.Router.HandleFunc("/api/status", handleServiceStatus(s.HealthStore, service)).Methods("GET")
	s.Router.HandleFunc("/health", handleHealth(s.HealthStore)).Methods("GET")
	s.Router.Handle("/metrics", metrics.Handler()).Methods("GET")
	s.Router.Use(middleware.Metrics(service))
}

func handleServiceStatus(healthStore store.HealthStore, service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			Status:    "ok",
			Service:   service,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		if err := healthStore.CheckConnectivity(); err != nil {
			resp.Status = "degraded"
			respondWithJSON(w, http.StatusServiceUnavailable, resp)
			return
		}

		respondWithJSON(w, http.StatusOK, resp)
	}
}

// handleHealth refreshes the database component before serving the
// registry snapshot. The other components are updated by whoever owns
// their connections.
func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	registry := metrics.HealthHandler()
	return func(w http.ResponseWriter, r *http.Request) {
		message := ""
		err := healthStore.CheckConnectivity()
		if err != nil {
			message = err.Error()
		}
		metrics.SetComponentHealth("database", err == nil, message)

		registry.ServeHTTP(w, r)
	}
}
