package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

type statusRequest struct {
	BatteryPercent float64    `json:"battery_percent"`
	State          string     `json:"state"`
	Firmware       string     `json:"firmware"`
	PayloadKg      float64    `json:"payload_kg"`
	RecordedAt     *time.Time `json:"recorded_at"`
}

type positionRequest struct {
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	AltitudeM  float64    `json:"altitude_m"`
	HeadingDeg float64    `json:"heading_deg"`
	SpeedMps   float64    `json:"speed_mps"`
	FixType    string     `json:"fix_type"`
	Satellites int        `json:"satellites"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// RegisterTelemetryEndpoints registers status and position endpoints under
// the drone routes
func RegisterTelemetryEndpoints(s *server.Server, checker *middleware.PermissionChecker) {
	telemetryStore := s.TelemetryStore
	dronesStore := s.DronesStore
	cfg := s.Config

	router := s.Router.PathPrefix("/api/drones/{id:[0-9]+}").Subrouter()
	router.Use(s.JWTMiddleware.Middleware)

	read := checker.Require("drone:read")
	report := checker.Require("drone:report")

	router.Handle("/statuses", read(handleListStatuses(telemetryStore, dronesStore, cfg.APIListLimitMax))).Methods("GET")
	router.Handle("/statuses/latest", read(handleLatestStatus(telemetryStore, dronesStore))).Methods("GET")
	router.Handle("/statuses", report(handleRecordStatus(s))).Methods("POST")

	router.Handle("/positions", read(handleListPositions(telemetryStore, dronesStore, cfg.APIListLimitMax))).Methods("GET")
	router.Handle("/positions/latest", read(handleLatestPosition(s))).Methods("GET")
	router.Handle("/positions/archive", read(handleListArchivedPositions(telemetryStore, dronesStore, cfg.APIListLimitMax))).Methods("GET")
	router.Handle("/positions", report(handleRecordPosition(s))).Methods("POST")
}

// droneExists resolves the {id} path var and confirms the drone is known
func droneExists(w http.ResponseWriter, r *http.Request, dronesStore store.DronesStore) (uint, bool) {
	id, ok := uintVar(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid drone id")
		return 0, false
	}

	if _, err := dronesStore.FetchDrone(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "drone not found")
			return 0, false
		}
		respondWithError(w, http.StatusInternalServerError, "failed to fetch drone")
		return 0, false
	}

	return id, true
}

func handleListStatuses(telemetryStore store.TelemetryStore, dronesStore store.DronesStore, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := droneExists(w, r, dronesStore)
		if !ok {
			return
		}

		limit, offset := pagination(r, maxLimit)
		statuses, err := telemetryStore.ListStatuses(id, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list statuses")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(statuses)), Items: statuses})
	}
}

func handleLatestStatus(telemetryStore store.TelemetryStore, dronesStore store.DronesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := droneExists(w, r, dronesStore)
		if !ok {
			return
		}

		status, err := telemetryStore.LatestStatus(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "no status reported yet")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch status")
			return
		}

		respondWithJSON(w, http.StatusOK, status)
	}
}

func handleRecordStatus(s *server.Server) http.HandlerFunc {
	telemetryStore := s.TelemetryStore
	dronesStore := s.DronesStore

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := droneExists(w, r, dronesStore)
		if !ok {
			return
		}

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.State == "" {
			respondWithError(w, http.StatusBadRequest, "state is required")
			return
		}

		status := &model.DroneStatus{
			DroneID:        id,
			BatteryPercent: req.BatteryPercent,
			State:          req.State,
			Firmware:       req.Firmware,
			PayloadKg:      req.PayloadKg,
		}
		if req.RecordedAt != nil {
			status.RecordedAt = *req.RecordedAt
		}

		if err := telemetryStore.RecordStatus(status); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to record status")
			return
		}

		_ = s.MQ.PublishTelemetry(r.Context(), uuid.NewString(), "status", id, status)

		respondWithJSON(w, http.StatusCreated, status)
	}
}

func handleListPositions(telemetryStore store.TelemetryStore, dronesStore store.DronesStore, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := droneExists(w, r, dronesStore)
		if !ok {
			return
		}

		since, until, ok := timeWindow(w, r)
		if !ok {
			return
		}

		limit, offset := pagination(r, maxLimit)
		positions, err := telemetryStore.ListPositions(id, since, until, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list positions")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(positions)), Items: positions})
	}
}

func handleListArchivedPositions(telemetryStore store.TelemetryStore, dronesStore store.DronesStore, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := droneExists(w, r, dronesStore)
		if !ok {
			return
		}

		since, until, ok := timeWindow(w, r)
		if !ok {
			return
		}

		limit, offset := pagination(r, maxLimit)
		positions, err := telemetryStore.ListArchivedPositions(id, since, until, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list archived positions")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(positions)), Items: positions})
	}
}

// timeWindow parses the optional since/until query bounds. Writes a 400
// and returns ok=false when either bound is malformed.
func timeWindow(w http.ResponseWriter, r *http.Request) (since, until time.Time, ok bool) {
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "since must be RFC3339")
			return since, until, false
		}
		since = parsed
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "until must be RFC3339")
			return since, until, false
		}
		until = parsed
	}
	return since, until, true
}

func handleLatestPosition(s *server.Server) http.HandlerFunc {
	telemetryStore := s.TelemetryStore
	dronesStore := s.DronesStore

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := droneExists(w, r, dronesStore)
		if !ok {
			return
		}

		// Serve from cache when a fresh sample is there
		if position := s.Cache.LatestPosition(r.Context(), id); position != nil {
			respondWithJSON(w, http.StatusOK, position)
			return
		}

		position, err := telemetryStore.LatestPosition(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "no position reported yet")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch position")
			return
		}

		s.Cache.StoreLatestPosition(r.Context(), position, s.Config.PositionTTL())

		respondWithJSON(w, http.StatusOK, position)
	}
}

// newerPosition reports whether incoming should replace cached as the
// latest known sample
func newerPosition(cached, incoming *model.DronePosition) bool {
	return cached == nil || !incoming.RecordedAt.Before(cached.RecordedAt)
}

func handleRecordPosition(s *server.Server) http.HandlerFunc {
	telemetryStore := s.TelemetryStore
	dronesStore := s.DronesStore

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := droneExists(w, r, dronesStore)
		if !ok {
			return
		}

		var req positionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
			respondWithError(w, http.StatusBadRequest, "latitude and longitude are required")
			return
		}

		fixType := req.FixType
		if fixType == "" {
			fixType = model.FixNone
		}

		position := &model.DronePosition{
			DroneID:    id,
			Latitude:   *req.Latitude,
			Longitude:  *req.Longitude,
			AltitudeM:  req.AltitudeM,
			HeadingDeg: req.HeadingDeg,
			SpeedMps:   req.SpeedMps,
			FixType:    fixType,
			Satellites: req.Satellites,
		}
		if req.RecordedAt != nil {
			position.RecordedAt = *req.RecordedAt
		}

		if err := telemetryStore.RecordPosition(position); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to record position")
			return
		}

		// Backfilled history must not displace the freshest cached sample
		if newerPosition(s.Cache.LatestPosition(r.Context(), id), position) {
			s.Cache.StoreLatestPosition(r.Context(), position, s.Config.PositionTTL())
		}
		_ = s.MQ.PublishTelemetry(r.Context(), uuid.NewString(), "position", id, position)

		respondWithJSON(w, http.StatusCreated, position)
	}
}
