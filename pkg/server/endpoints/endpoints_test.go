package endpoints

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wenhsiu/aiot-in-go/pkg/audit"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/token"
)

var testSecret = []byte("endpoints-test-secret")

// testRig bundles a mock-backed server with its replaceable store mocks
type testRig struct {
	server    *server.Server
	auth      *MockAuthenticateStore
	users     *MockUsersStore
	roles     *MockRolesStore
	perms     *MockPermissionsStore
	authz     *MockAuthzStore
	drones    *MockDronesStore
	telemetry *MockTelemetryStore
	commands  *MockCommandsStore
	prefs     *MockPreferencesStore
	health    *MockHealthStore
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	audit.SetEnabled(false)
	t.Cleanup(func() { audit.SetEnabled(true) })

	s, _, err := NewMockTestServer(testSecret)
	if err != nil {
		t.Fatalf("failed to create mock server: %v", err)
	}

	rig := &testRig{
		server:    s,
		auth:      &MockAuthenticateStore{},
		users:     &MockUsersStore{},
		roles:     &MockRolesStore{},
		perms:     &MockPermissionsStore{},
		authz:     &MockAuthzStore{},
		drones:    &MockDronesStore{},
		telemetry: &MockTelemetryStore{},
		commands:  &MockCommandsStore{},
		prefs:     &MockPreferencesStore{},
		health:    &MockHealthStore{},
	}

	s.AuthenticateStore = rig.auth
	s.UsersStore = rig.users
	s.RolesStore = rig.roles
	s.PermissionsStore = rig.perms
	s.AuthzStore = rig.authz
	s.DronesStore = rig.drones
	s.TelemetryStore = rig.telemetry
	s.CommandsStore = rig.commands
	s.PreferencesStore = rig.prefs
	s.HealthStore = rig.health

	return rig
}

// bearerFor issues a valid token for the given identity
func bearerFor(t *testing.T, userID uint, username string, roles ...string) string {
	t.Helper()

	user := &model.User{ID: userID, Username: username}
	tokenStr, err := token.Issue(testSecret, user, roles, "aiot", time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + tokenStr
}

// do runs a request against the rig's router
func (rig *testRig) do(method, path, body, authorization string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	rr := httptest.NewRecorder()
	rig.server.Router.ServeHTTP(rr, req)
	return rr
}
