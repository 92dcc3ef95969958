// Package migrations embeds the goose migrations of the hosted Postgres
// database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
