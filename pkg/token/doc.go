// Package token issues and validates the HS256 access tokens shared by the
// RBAC service (which mints them at login) and every other service and the
// gateway (which verify them). The signing secret comes from
// AIOT_TOKEN_SECRET and must be identical across all processes.
package token
