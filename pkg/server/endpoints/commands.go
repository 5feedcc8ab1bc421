package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wenhsiu/aiot-in-go/pkg/audit"
	"github.com/wenhsiu/aiot-in-go/pkg/identity"
	"github.com/wenhsiu/aiot-in-go/pkg/log"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

type commandRequest struct {
	CommandType string `json:"command_type"`
	Parameters  string `json:"parameters"`
}

type commandStatusRequest struct {
	Status string `json:"status"`
}

// RegisterCommandsEndpoints registers the drone command endpoints
func RegisterCommandsEndpoints(s *server.Server, checker *middleware.PermissionChecker) {
	commandsStore := s.CommandsStore
	dronesStore := s.DronesStore
	cfg := s.Config

	router := s.Router.PathPrefix("/api/drones/{id:[0-9]+}/commands").Subrouter()
	router.Use(s.JWTMiddleware.Middleware)

	read := checker.Require("drone:read")
	control := checker.Require("drone:control")
	report := checker.Require("drone:report")

	router.Handle("", read(handleListCommands(commandsStore, dronesStore, cfg.APIListLimitMax))).Methods("GET")
	router.Handle("", control(handleDispatchCommand(s))).Methods("POST")
	router.Handle("/{commandId}", read(handleGetCommand(commandsStore))).Methods("GET")
	router.Handle("/{commandId}", control(handleUpdateCommandStatus(commandsStore))).Methods("PATCH")
	router.Handle("/{commandId}/ack", report(handleAckCommand(commandsStore))).Methods("POST")
}

func handleListCommands(commandsStore store.CommandsStore, dronesStore store.DronesStore, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := droneExists(w, r, dronesStore)
		if !ok {
			return
		}

		limit, offset := pagination(r, maxLimit)
		commands, err := commandsStore.ListCommands(id, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list commands")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(commands)), Items: commands})
	}
}

func handleDispatchCommand(s *server.Server) http.HandlerFunc {
	commandsStore := s.CommandsStore
	dronesStore := s.DronesStore

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

		var req commandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CommandType == "" {
			respondWithError(w, http.StatusBadRequest, "command_type is required")
			return
		}

		commandType, err := model.CommandTypeString(req.CommandType)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "unknown command_type")
			return
		}

		actor, _ := identity.Get(r.Context())

		command := &model.DroneCommand{
			ID:          uuid.NewString(),
			DroneID:     id,
			CommandType: commandType,
			Parameters:  req.Parameters,
			Status:      model.StatusPending,
		}
		if actor != nil {
			command.IssuedBy = actor.UserID
		}

		if err := commandsStore.CreateCommand(command); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to create command")
			return
		}

		// Publish after persisting. A broker failure leaves the command
		// pending so it can be re-dispatched.
		if err := s.MQ.PublishCommand(r.Context(), command); err != nil {
			logger := log.WithComponent("commands")
			logger.Error().Err(err).
				Str("command_id", command.ID).
				Msg("publish failed, command stays pending")
		} else if s.MQ != nil {
			if err := commandsStore.UpdateCommandStatus(command.ID, model.StatusSent, nil); err == nil {
				command.Status = model.StatusSent
			}
		}

		if actor != nil {
			audit.Log(audit.CommandEvent{
				Username:    actor.Username,
				ClientIP:    actor.RemoteIP.String(),
				CommandID:   command.ID,
				CommandType: command.CommandType.String(),
				DroneSerial: drone.Serial,
				Success:     true,
			})
		}

		respondWithJSON(w, http.StatusCreated, command)
	}
}

func handleGetCommand(commandsStore store.CommandsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commandID := muxVar(r, "commandId")
		if _, err := uuid.Parse(commandID); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid command id")
			return
		}

		command, err := commandsStore.FetchCommand(commandID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "command not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch command")
			return
		}

		respondWithJSON(w, http.StatusOK, command)
	}
}

type commandAckRequest struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleAckCommand is the HTTP acknowledgement path for deployments
// without a broker. With one, acks normally arrive over the ack queue.
func handleAckCommand(commandsStore store.CommandsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commandID := muxVar(r, "commandId")
		if _, err := uuid.Parse(commandID); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid command id")
			return
		}

		var req commandAckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		status := model.StatusCompleted
		if !req.Success {
			status = model.StatusFailed
		}
		now := time.Now().UTC()

		if err := commandsStore.UpdateCommandStatus(commandID, status, &now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "command not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to acknowledge command")
			return
		}

		command, err := commandsStore.FetchCommand(commandID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to fetch command")
			return
		}
		respondWithJSON(w, http.StatusOK, command)
	}
}

func handleUpdateCommandStatus(commandsStore store.CommandsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commandID := muxVar(r, "commandId")
		if _, err := uuid.Parse(commandID); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid command id")
			return
		}

		var req commandStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
			respondWithError(w, http.StatusBadRequest, "status is required")
			return
		}

		status, err := model.CommandStatusString(req.Status)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "unknown status")
			return
		}

		var completedAt *time.Time
		if status == model.StatusCompleted || status == model.StatusFailed {
			now := time.Now().UTC()
			completedAt = &now
		}

		if err := commandsStore.UpdateCommandStatus(commandID, status, completedAt); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "command not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to update command")
			return
		}

		command, err := commandsStore.FetchCommand(commandID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to fetch command")
			return
		}
		respondWithJSON(w, http.StatusOK, command)
	}
}
