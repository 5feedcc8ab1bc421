// Package log provides the structured logging setup shared by every
// aiot-in-go service role, built on zerolog.
package log
