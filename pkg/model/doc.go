// Package model defines the database models for aiot-in-go.
//
// This package contains GORM models that map to the AIOT backend schema.
//
// # Core Models
//
//   - User, Role, Permission: RBAC principals and grants, joined through
//     user_roles and role_permissions
//   - Drone: registered devices
//   - DroneStatus, DronePosition, DroneCommand: telemetry and command
//     records, each with an append-only *_archive shadow table populated
//     by the archiver
//   - UserPreference: per-user key/value settings served by the general
//     service
package model
