package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/wenhsiu/aiot-in-go/pkg/audit"
	"github.com/wenhsiu/aiot-in-go/pkg/identity"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

type assignRoleRequest struct {
	RoleID uint `json:"role_id"`
}

// RegisterUsersEndpoints registers the user management endpoints
func RegisterUsersEndpoints(s *server.Server, checker *middleware.PermissionChecker) {
	usersStore := s.UsersStore
	authStore := s.AuthenticateStore
	cfg := s.Config

	router := s.Router.PathPrefix("/api/users").Subrouter()
	router.Use(s.JWTMiddleware.Middleware)

	read := checker.Require("user:read")
	write := checker.Require("user:write")

	router.Handle("", read(handleListUsers(usersStore, cfg.APIListLimitMax))).Methods("GET")
	router.Handle("", write(handleCreateUser(usersStore))).Methods("POST")
	router.Handle("/{id:[0-9]+}", read(handleGetUser(usersStore))).Methods("GET")
	router.Handle("/{id:[0-9]+}", write(handleUpdateUser(usersStore))).Methods("PUT")
	router.Handle("/{id:[0-9]+}", write(handleDeleteUser(usersStore))).Methods("DELETE")
	router.Handle("/{id:[0-9]+}/password", handleChangePassword(authStore, usersStore)).Methods("PUT")
	router.Handle("/{id:[0-9]+}/roles", read(handleListUserRoles(usersStore))).Methods("GET")
	router.Handle("/{id:[0-9]+}/roles", write(handleAssignRole(s, usersStore))).Methods("POST")
	router.Handle("/{id:[0-9]+}/roles/{roleId:[0-9]+}", write(handleRemoveRole(s, usersStore))).Methods("DELETE")
}

func handleListUsers(usersStore store.UsersStore, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r, maxLimit)
		search := r.URL.Query().Get("search")

		users, err := usersStore.ListUsers(search, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		count, err := usersStore.CountUsers(search)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list users")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: count, Items: users})
	}
}

func handleCreateUser(usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to create user")
			return
		}

		user := &model.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if err := usersStore.CreateUser(user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(w, http.StatusConflict, "username already taken")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to create user")
			return
		}

		respondWithJSON(w, http.StatusCreated, user)
	}
}

func handleGetUser(usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		user, err := usersStore.FetchUser(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "user not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch user")
			return
		}

		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleUpdateUser(usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		var req updateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := usersStore.FetchUser(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "user not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to update user")
			return
		}

		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}

		if err := usersStore.UpdateUser(user); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to update user")
			return
		}

		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleDeleteUser(usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		if err := usersStore.DeleteUser(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "user not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to delete user")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// handleChangePassword lets a user change their own password. The admin
// role may change anyone's.
func handleChangePassword(authStore store.AuthenticateStore, usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		actor, ok := identity.Get(r.Context())
		if !ok || (actor.UserID != id && !actor.HasRole("admin")) {
			respondWithError(w, http.StatusForbidden, "forbidden")
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "password is required")
			return
		}

		target, err := usersStore.FetchUser(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "user not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to change password")
			return
		}

		if err := authStore.UpdatePassword(id, req.Password); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to change password")
			return
		}

		audit.Log(audit.PasswordEvent{
			Username:   actor.Username,
			TargetUser: target.Username,
			ClientIP:   actor.RemoteIP.String(),
			Success:    true,
		})

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListUserRoles(usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		roles, err := usersStore.UserRoles(id)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list roles")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(roles)), Items: roles})
	}
}

func handleAssignRole(s *server.Server, usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		var req assignRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoleID == 0 {
			respondWithError(w, http.StatusBadRequest, "role_id is required")
			return
		}

		if err := usersStore.AssignRole(id, req.RoleID); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(w, http.StatusConflict, "role already assigned")
				return
			}
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "user or role not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to assign role")
			return
		}

		// Role changes invalidate the cached permission set
		s.Cache.InvalidatePermissions(r.Context(), id)

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRemoveRole(s *server.Server, usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintVar(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		roleID, ok := uintVar(r, "roleId")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid role id")
			return
		}

		if err := usersStore.RemoveRole(id, roleID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "role assignment not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to remove role")
			return
		}

		s.Cache.InvalidatePermissions(r.Context(), id)

		w.WriteHeader(http.StatusNoContent)
	}
}
