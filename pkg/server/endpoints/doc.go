/*
Package endpoints provides the HTTP API handlers for the aiot services.

Each service registers a subset of the endpoints on a shared server:

	RegisterRBACEndpoints    auth, users, roles, permissions
	RegisterDroneEndpoints   drones, telemetry, commands
	RegisterGeneralEndpoints user preferences

All services expose /api/status and /metrics.
*/
package endpoints
