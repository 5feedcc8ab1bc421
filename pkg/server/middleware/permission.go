package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wenhsiu/aiot-in-go/pkg/audit"
	"github.com/wenhsiu/aiot-in-go/pkg/cache"
	"github.com/wenhsiu/aiot-in-go/pkg/identity"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// PermissionChecker enforces named permissions on routes. It consults the
// Redis cache first and falls back to the authz store.
type PermissionChecker struct {
	authz store.AuthzStore
	cache *cache.Cache
	ttl   time.Duration
}

// NewPermissionChecker creates a new PermissionChecker. ttl is the cache
// lifetime for a user's permission set.
func NewPermissionChecker(authz store.AuthzStore, cch *cache.Cache, ttl time.Duration) *PermissionChecker {
	return &PermissionChecker{authz: authz, cache: cch, ttl: ttl}
}

func forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (p *PermissionChecker) permissionsFor(ctx context.Context, userID uint) ([]string, error) {
	if perms, ok := p.cache.Permissions(ctx, userID); ok {
		return perms, nil
	}

	perms, err := p.authz.PermissionsForUser(userID)
	if err != nil {
		return nil, err
	}
	p.cache.StorePermissions(ctx, userID, perms, p.ttl)
	return perms, nil
}

// Require returns a middleware enforcing the named permission. It must run
// after the JWT middleware, which populates the request identity.
func (p *PermissionChecker) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identity.Get(r.Context())
			if !ok {
				unauthorized(w, "Authorization missing")
				return
			}

			perms, err := p.permissionsFor(r.Context(), id.UserID)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "permission lookup failed"})
				return
			}

			allowed := false
			for _, perm := range perms {
				if perm == permission {
					allowed = true
					break
				}
			}

			audit.Log(audit.CheckEvent{
				Username:   id.Username,
				ClientIP:   id.RemoteIP.String(),
				Permission: permission,
				Allowed:    allowed,
			})

			if !allowed {
				forbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
