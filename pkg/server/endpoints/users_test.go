package endpoints

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

func TestUsersEndpoints(t *testing.T) {
	rig := newTestRig(t)
	RegisterRBACEndpoints(rig.server, testSecret)

	rig.authz.On("PermissionsForUser", uint(1)).Return([]string{"user:read", "user:write"}, nil)
	admin := bearerFor(t, 1, "admin", "admin")

	t.Run("list", func(t *testing.T) {
		rig.users.On("ListUsers", "", 100, 0).Return([]model.User{
			{ID: 1, Username: "admin"},
			{ID: 2, Username: "viewer"},
		}, nil).Once()
		rig.users.On("CountUsers", "").Return(int64(2), nil).Once()

		rr := rig.do("GET", "/api/users", "", admin)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("create", func(t *testing.T) {
		rig.users.On("CreateUser", mock.AnythingOfType("*model.User")).Return(nil).Once()

		rr := rig.do("POST", "/api/users", `{"username":"carol","email":"carol@example.com","password":"s3cret"}`, admin)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}

		var user model.User
		if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !user.IsActive {
			t.Error("new user should be active")
		}
	})

	t.Run("create duplicate username", func(t *testing.T) {
		rig.users.On("CreateUser", mock.AnythingOfType("*model.User")).Return(store.ErrDuplicate).Once()

		rr := rig.do("POST", "/api/users", `{"username":"carol","password":"s3cret"}`, admin)

		if rr.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rr.Code)
		}
	})

	t.Run("create without password", func(t *testing.T) {
		rr := rig.do("POST", "/api/users", `{"username":"dave"}`, admin)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("update partial", func(t *testing.T) {
		rig.users.On("FetchUser", uint(2)).Return(&model.User{
			ID: 2, Username: "viewer", Email: "old@example.com", IsActive: true,
		}, nil).Once()
		rig.users.On("UpdateUser", mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" && u.IsActive
		})).Return(nil).Once()

		rr := rig.do("PUT", "/api/users/2", `{"email":"new@example.com"}`, admin)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("change password", func(t *testing.T) {
		rig.users.On("FetchUser", uint(2)).Return(&model.User{ID: 2, Username: "viewer"}, nil).Once()
		rig.auth.On("UpdatePassword", uint(2), "n3wpass").Return(nil).Once()

		rr := rig.do("PUT", "/api/users/2/password", `{"password":"n3wpass"}`, admin)

		if rr.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rr.Code)
		}
	})

	t.Run("change own password", func(t *testing.T) {
		viewer := bearerFor(t, 2, "viewer", "pilot")
		rig.users.On("FetchUser", uint(2)).Return(&model.User{ID: 2, Username: "viewer"}, nil).Once()
		rig.auth.On("UpdatePassword", uint(2), "mypass").Return(nil).Once()

		rr := rig.do("PUT", "/api/users/2/password", `{"password":"mypass"}`, viewer)

		if rr.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("change another user's password forbidden", func(t *testing.T) {
		viewer := bearerFor(t, 2, "viewer", "pilot")

		rr := rig.do("PUT", "/api/users/3/password", `{"password":"mypass"}`, viewer)

		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("assign role", func(t *testing.T) {
		rig.users.On("AssignRole", uint(2), uint(3)).Return(nil).Once()

		rr := rig.do("POST", "/api/users/2/roles", `{"role_id":3}`, admin)

		if rr.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rr.Code)
		}
	})

	t.Run("assign role twice", func(t *testing.T) {
		rig.users.On("AssignRole", uint(2), uint(3)).Return(store.ErrDuplicate).Once()

		rr := rig.do("POST", "/api/users/2/roles", `{"role_id":3}`, admin)

		if rr.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rr.Code)
		}
	})

	t.Run("assign missing role", func(t *testing.T) {
		rig.users.On("AssignRole", uint(2), uint(99)).Return(store.ErrNotFound).Once()

		rr := rig.do("POST", "/api/users/2/roles", `{"role_id":99}`, admin)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("remove role", func(t *testing.T) {
		rig.users.On("RemoveRole", uint(2), uint(3)).Return(nil).Once()

		rr := rig.do("DELETE", "/api/users/2/roles/3", "", admin)

		if rr.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rr.Code)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		rig.users.On("DeleteUser", uint(9)).Return(store.ErrNotFound).Once()

		rr := rig.do("DELETE", "/api/users/9", "", admin)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})
}
