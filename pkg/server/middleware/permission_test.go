package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wenhsiu/aiot-in-go/pkg/audit"
	"github.com/wenhsiu/aiot-in-go/pkg/identity"
)

// mockAuthzStore implements store.AuthzStore for testing using testify/mock
type mockAuthzStore struct {
	mock.Mock
}

func (m *mockAuthzStore) PermissionsForUser(userID uint) ([]string, error) {
	args := m.Called(userID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockAuthzStore) HasPermission(userID uint, name string) (bool, error) {
	args := m.Called(userID, name)
	return args.Bool(0), args.Error(1)
}

func withIdentity(req *http.Request, id *identity.Identity) *http.Request {
	return req.WithContext(identity.Set(req.Context(), id))
}

func TestRequirePermission(t *testing.T) {
	audit.SetEnabled(false)
	defer audit.SetEnabled(true)

	authz := &mockAuthzStore{}
	authz.On("PermissionsForUser", uint(1)).Return([]string{"drone:read", "drone:control"}, nil)
	authz.On("PermissionsForUser", uint(2)).Return([]string{"drone:read"}, nil)

	checker := NewPermissionChecker(authz, nil, time.Minute)
	handler := checker.Require("drone:control")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed", func(t *testing.T) {
		req := withIdentity(httptest.NewRequest("POST", "/api/drones/1/commands", nil),
			&identity.Identity{UserID: 1, Username: "operator"})
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("denied", func(t *testing.T) {
		req := withIdentity(httptest.NewRequest("POST", "/api/drones/1/commands", nil),
			&identity.Identity{UserID: 2, Username: "viewer"})
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("no identity", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/drones/1/commands", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	authz.AssertExpectations(t)
}
