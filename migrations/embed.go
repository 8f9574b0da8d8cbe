// Package migrations embeds the SQL migrations that create the raw source
// tables in an empty development or test database.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
