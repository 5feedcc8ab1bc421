package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wenhsiu/aiot-in-go/pkg/audit"
	"github.com/wenhsiu/aiot-in-go/pkg/identity"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
	"github.com/wenhsiu/aiot-in-go/pkg/token"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string   `json:"token"`
	UserID    uint     `json:"user_id"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	ExpiresIn int      `json:"expires_in"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid    bool     `json:"valid"`
	UserID   uint     `json:"user_id,omitempty"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// RegisterAuthEndpoints registers login, verify and whoami
func RegisterAuthEndpoints(s *server.Server, secret []byte) {
	router := s.Router

	router.HandleFunc("/api/auth/login", handleLogin(s, secret)).Methods("POST")
	router.HandleFunc("/api/auth/verify", handleVerify(secret)).Methods("POST")

	whoami := router.PathPrefix("/api/auth/whoami").Subrouter()
	whoami.Use(s.JWTMiddleware.Middleware)
	whoami.HandleFunc("", handleWhoami()).Methods("GET")
}

func handleLogin(s *server.Server, secret []byte) http.HandlerFunc {
	authStore := s.AuthenticateStore
	usersStore := s.UsersStore
	cfg := s.Config

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		clientIP := middleware.RemoteIP(r).String()

		user, err := authStore.GetByUsername(req.Username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				audit.Log(audit.AuthenticateEvent{
					Username: req.Username, ClientIP: clientIP,
					Success: false, ErrorMessage: "unknown user",
				})
				respondWithError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "authentication failed")
			return
		}

		if !authStore.ValidatePassword(user, req.Password) {
			audit.Log(audit.AuthenticateEvent{
				Username: req.Username, ClientIP: clientIP,
				Success: false, ErrorMessage: "invalid password",
			})
			respondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		roles, err := usersStore.UserRoles(user.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "authentication failed")
			return
		}
		roleNames := make([]string, 0, len(roles))
		for _, role := range roles {
			roleNames = append(roleNames, role.Name)
		}

		ttl := cfg.TokenLifetime()
		tokenStr, err := token.Issue(secret, user, roleNames, cfg.TokenIssuer, ttl)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "token issuance failed")
			return
		}

		audit.Log(audit.AuthenticateEvent{Username: user.Username, ClientIP: clientIP, Success: true})

		respondWithJSON(w, http.StatusOK, loginResponse{
			Token:     tokenStr,
			UserID:    user.ID,
			Username:  user.Username,
			Roles:     roleNames,
			ExpiresIn: int(ttl.Seconds()),
		})
	}
}

// handleVerify is the internal endpoint other services and the gateway can
// call to check a token without sharing parsing code.
func handleVerify(secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			respondWithError(w, http.StatusBadRequest, "token is required")
			return
		}

		claims, err := token.Parse(secret, req.Token)
		if err != nil {
			respondWithJSON(w, http.StatusOK, verifyResponse{Valid: false})
			return
		}

		respondWithJSON(w, http.StatusOK, verifyResponse{
			Valid:    true,
			UserID:   claims.UserID,
			Username: claims.Username,
			Roles:    claims.Roles,
		})
	}
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"user_id":   id.UserID,
			"username":  id.Username,
			"roles":     id.Roles,
			"client_ip": id.RemoteIP.String(),
			"token_iat": id.IssuedAt.Unix(),
			"token_exp": id.ExpiresAt.Unix(),
		})
	}
}
