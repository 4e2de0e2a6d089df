// Package migrations embeds the goose SQL migrations for the server's
// PostgreSQL schema. Primary keys carry their default Postgres constraint
// names (<table>_pkey): the collision-retry code matches on them.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
