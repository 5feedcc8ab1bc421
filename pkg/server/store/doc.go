// Package store defines the storage interfaces used by the HTTP endpoints.
//
// Concrete implementations live in the gorm subpackage. Handlers depend only
// on these interfaces so they can be tested against mocks.
package store
