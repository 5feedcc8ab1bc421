// Package audit provides audit logging for security-relevant operations.
//
// This package implements structured audit logging for operations such as
// authentication attempts, permission checks, drone command dispatch,
// password changes, and telemetry archive runs.
//
// Events are written to stdout in RFC5424 syslog format and, when
// AUDIT_DATABASE_URL is set, persisted to the audit_messages table.
package audit
