package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"

	"github.com/google/uuid"
)

type droneRequest struct {
	Serial  string `json:"serial"`
	Name    string `json:"name"`
	Model   string `json:"model"`
	OwnerID *uint  `json:"owner_id"`
}

// RegisterDronesEndpoints registers the drone registry endpoints
func RegisterDronesEndpoints(s *server.Server, checker *middleware.PermissionChecker) {
	dronesStore := s.DronesStore
	cfg := s.Config

	router := s.Router.PathPrefix("/api/drones").Subrouter()
	router.Use(s.JWTMiddleware.Middleware)

	read := checker.Require("drone:read")
	write := checker.Require("drone:write")

	router.Handle("", read(handleListDrones(dronesStore, cfg.APIListLimitMax))).Methods("GET")
	router.Handle("", write(handleCreateDrone(s, dronesStore))).Methods("POST")
	router.Handle("/{id:[0-9]+}", read(handleGetDrone(dronesStore))).Methods("GET")
	router.Handle("/serial/{serial}", read(handleGetDroneBySerial(dronesStore))).Methods("GET")
	router.Handle("/{id:[0-9]+}", write(handleUpdateDrone(dronesStore))).Methods("PUT")
	router.Handle("/{id:[0-9]+}", write(handleDeleteDrone(s, dronesStore))).Methods("DELETE")
}

func handleListDrones(dronesStore store.DronesStore, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r, maxLimit)
		search := r.URL.Query().Get("search")

		drones, err := dronesStore.ListDrones(search, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list drones")
			return
		}
		count, err := dronesStore.CountDrones(search)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list drones")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: count, Items: drones})
	}
}

func handleCreateDrone(s *server.Server, dronesStore store.DronesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req droneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Serial == "" {
			respondWithError(w, http.StatusBadRequest, "serial is required")
			return
		}

		drone := &model.Drone{
			Serial:  req.Serial,
			Name:    req.Name,
			Model:   req.Model,
			OwnerID: req.OwnerID,
		}
		if err := dronesStore.CreateDrone(drone); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(w, http.StatusConflict, "serial already registered")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to create drone")
			return
		}

		_ = s.MQ.PublishEvent(r.Context(), uuid.NewString(), "drone_registered", drone.ID, drone)

		respondWithJSON(w, http.StatusCreated, drone)
	}
}

func handleGetDrone(dronesStore store.DronesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid drone id")
			return
		}

		drone, err := dronesStore.FetchDrone(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "drone not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch drone")
			return
		}

		respondWithJSON(w, http.StatusOK, drone)
	}
}

// handleGetDroneBySerial looks a drone up by its serial. Field crews scan
// serials off the airframe, not database ids.
func handleGetDroneBySerial(dronesStore store.DronesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serial := mux.Vars(r)["serial"]

		drone, err := dronesStore.FetchDroneBySerial(serial)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "drone not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch drone")
			return
		}

		respondWithJSON(w, http.StatusOK, drone)
	}
}

func handleUpdateDrone(dronesStore store.DronesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid drone id")
			return
		}

		var req droneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		drone, err := dronesStore.FetchDrone(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "drone not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to update drone")
			return
		}

		if req.Name != "" {
			drone.Name = req.Name
		}
		if req.Model != "" {
			drone.Model = req.Model
		}
		if req.OwnerID != nil {
			drone.OwnerID = req.OwnerID
		}

		if err := dronesStore.UpdateDrone(drone); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to update drone")
			return
		}

		respondWithJSON(w, http.StatusOK, drone)
	}
}

func handleDeleteDrone(s *server.Server, dronesStore store.DronesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid drone id")
			return
		}

		drone, err := dronesStore.FetchDrone(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "drone not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to delete drone")
			return
		}

		if err := dronesStore.DeleteDrone(id); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to delete drone")
			return
		}

		_ = s.MQ.PublishEvent(r.Context(), uuid.NewString(), "drone_deregistered", id, drone)

		w.WriteHeader(http.StatusNoContent)
	}
}
