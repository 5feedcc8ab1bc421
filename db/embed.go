// Package db embeds the SQL migrations so production builds can run them
// without the source tree (build tag embed_migrations).
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
