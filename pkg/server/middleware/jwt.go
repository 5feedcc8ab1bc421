package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/wenhsiu/aiot-in-go/pkg/identity"
	"github.com/wenhsiu/aiot-in-go/pkg/token"
)

// JWTAuthenticator is middleware that validates access tokens
type JWTAuthenticator struct {
	secret []byte
}

// NewJWTAuthenticator creates a new JWT authenticator middleware
func NewJWTAuthenticator(secret []byte) *JWTAuthenticator {
	return &JWTAuthenticator{secret: secret}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RemoteIP extracts the client IP from a request
func RemoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

// Middleware returns an HTTP middleware that validates Bearer tokens
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			unauthorized(w, "Authorization missing")
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			unauthorized(w, "Malformed authorization header")
			return
		}

		claims, err := token.Parse(j.secret, tokenStr)
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		id := &identity.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Roles:    claims.Roles,
		}
		if claims.IssuedAt != nil {
			id.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			id.ExpiresAt = claims.ExpiresAt.Time
		}
		id.WithRemoteIP(RemoteIP(r))

		r = r.WithContext(identity.Set(r.Context(), id))

		next.ServeHTTP(w, r)
	})
}
