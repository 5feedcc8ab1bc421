package endpoints

import (
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
)

// Service names as registered with Consul
const (
	ServiceRBAC    = "rbac-service"
	ServiceDrone   = "drone-service"
	ServiceGeneral = "general-service"
)

func permissionChecker(s *server.Server) *middleware.PermissionChecker {
	return middleware.NewPermissionChecker(s.AuthzStore, s.Cache, s.Config.PermissionTTL())
}

// RegisterRBACEndpoints registers the RBAC service's endpoint set: auth,
// users, roles and permissions.
func RegisterRBACEndpoints(s *server.Server, secret []byte) {
	checker := permissionChecker(s)

	RegisterAuthEndpoints(s, secret)
	RegisterUsersEndpoints(s, checker)
	RegisterRolesEndpoints(s, checker)
	RegisterPermissionsEndpoints(s, checker)
	RegisterStatusEndpoints(s, ServiceRBAC)
}

// RegisterDroneEndpoints registers the drone service's endpoint set: the
// drone registry, telemetry and commands.
func RegisterDroneEndpoints(s *server.Server) {
	checker := permissionChecker(s)

	RegisterDronesEndpoints(s, checker)
	RegisterTelemetryEndpoints(s, checker)
	RegisterCommandsEndpoints(s, checker)
	RegisterStatusEndpoints(s, ServiceDrone)
}

// RegisterGeneralEndpoints registers the general service's endpoint set:
// user preferences.
func RegisterGeneralEndpoints(s *server.Server) {
	RegisterPreferencesEndpoints(s)
	RegisterStatusEndpoints(s, ServiceGeneral)
}
