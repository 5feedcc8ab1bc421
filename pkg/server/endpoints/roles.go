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

type roleRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type grantPermissionRequest struct {
	PermissionID uint `json:"permission_id"`
}

// RegisterRolesEndpoints registers the role management endpoints
func RegisterRolesEndpoints(s *server.Server, checker *middleware.PermissionChecker) {
	rolesStore := s.RolesStore

	router := s.Router.PathPrefix("/api/roles").Subrouter()
	router.Use(s.JWTMiddleware.Middleware)

	read := checker.Require("role:read")
	write := checker.Require("role:write")

	router.Handle("", read(handleListRoles(rolesStore))).Methods("GET")
	router.Handle("", write(handleCreateRole(rolesStore))).Methods("POST")
	router.Handle("/{id:[0-9]+}", read(handleGetRole(rolesStore))).Methods("GET")
	router.Handle("/{id:[0-9]+}", write(handleUpdateRole(rolesStore))).Methods("PUT")
	router.Handle("/{id:[0-9]+}", write(handleDeleteRole(rolesStore))).Methods("DELETE")
	router.Handle("/{id:[0-9]+}/permissions", read(handleListRolePermissions(rolesStore))).Methods("GET")
	router.Handle("/{id:[0-9]+}/permissions", write(handleGrantPermission(rolesStore))).Methods("POST")
	router.Handle("/{id:[0-9]+}/permissions/{permId:[0-9]+}", write(handleRevokePermission(rolesStore))).Methods("DELETE")
}

func handleListRoles(rolesStore store.RolesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := rolesStore.ListRoles()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list roles")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(roles)), Items: roles})
	}
}

func handleCreateRole(rolesStore store.RolesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			respondWithError(w, http.StatusBadRequest, "name is required")
			return
		}

		role := &model.Role{Name: req.Name, DisplayName: req.DisplayName}
		if err := rolesStore.CreateRole(role); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(w, http.StatusConflict, "role name already taken")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to create role")
			return
		}

		respondWithJSON(w, http.StatusCreated, role)
	}
}

func handleGetRole(rolesStore store.RolesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid role id")
			return
		}

		role, err := rolesStore.FetchRole(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "role not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch role")
			return
		}

		respondWithJSON(w, http.StatusOK, role)
	}
}

func handleUpdateRole(rolesStore store.RolesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid role id")
			return
		}

		var req roleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		role := &model.Role{ID: id, DisplayName: req.DisplayName}
		if err := rolesStore.UpdateRole(role); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "role not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to update role")
			return
		}

		updated, err := rolesStore.FetchRole(id)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to update role")
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteRole(rolesStore store.RolesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid role id")
			return
		}

		if err := rolesStore.DeleteRole(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "role not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to delete role")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListRolePermissions(rolesStore store.RolesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid role id")
			return
		}

		permissions, err := rolesStore.RolePermissions(id)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list permissions")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(permissions)), Items: permissions})
	}
}

func handleGrantPermission(rolesStore store.RolesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid role id")
			return
		}

		var req grantPermissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PermissionID == 0 {
			respondWithError(w, http.StatusBadRequest, "permission_id is required")
			return
		}

		if err := rolesStore.GrantPermission(id, req.PermissionID); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(w, http.StatusConflict, "permission already granted")
				return
			}
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "role or permission not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to grant permission")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRevokePermission(rolesStore store.RolesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid role id")
			return
		}
		permID, ok := uintVar(r, "permId")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid permission id")
			return
		}

		if err := rolesStore.RevokePermission(id, permID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "permission grant not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to revoke permission")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
