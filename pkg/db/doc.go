// Package db establishes the GORM Postgres connection shared by the
// service roles.
package db
