// Package cache provides the Redis layer in front of the drone position
// and permission stores. Entries carry short TTLs and every failure path
// falls back to Postgres.
package cache
