// Package migrations embeds the MySQL schema migrations applied by the
// migrate:up / migrate:down commands. SQLite development databases use
// gorm AutoMigrate instead.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
