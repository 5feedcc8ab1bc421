package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

type permissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RegisterPermissionsEndpoints registers the permission catalog endpoints
func RegisterPermissionsEndpoints(s *server.Server, checker *middleware.PermissionChecker) {
	permsStore := s.PermissionsStore

	router := s.Router.PathPrefix("/api/permissions").Subrouter()
	router.Use(s.JWTMiddleware.Middleware)

	read := checker.Require("permission:read")
	write := checker.Require("permission:write")

	router.Handle("", read(handleListPermissions(permsStore))).Methods("GET")
	router.Handle("", write(handleCreatePermission(permsStore))).Methods("POST")
	router.Handle("/{id:[0-9]+}", read(handleGetPermission(permsStore))).Methods("GET")
	router.Handle("/{id:[0-9]+}", write(handleDeletePermission(permsStore))).Methods("DELETE")
}

func handleListPermissions(permsStore store.PermissionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		permissions, err := permsStore.ListPermissions()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list permissions")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(permissions)), Items: permissions})
	}
}

func handleCreatePermission(permsStore store.PermissionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req permissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			respondWithError(w, http.StatusBadRequest, "name is required")
			return
		}

		permission := &model.Permission{Name: req.Name, Description: req.Description}
		if err := permsStore.CreatePermission(permission); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(w, http.StatusConflict, "permission name already taken")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to create permission")
			return
		}

		respondWithJSON(w, http.StatusCreated, permission)
	}
}

func handleGetPermission(permsStore store.PermissionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid permission id")
			return
		}

		permission, err := permsStore.FetchPermission(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "permission not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch permission")
			return
		}

		respondWithJSON(w, http.StatusOK, permission)
	}
}

func handleDeletePermission(permsStore store.PermissionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid permission id")
			return
		}

		if err := permsStore.DeletePermission(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "permission not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to delete permission")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
