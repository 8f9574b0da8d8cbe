// Package scripts embeds the default schema and load scripts used to build
// the consolidated_messages table.
package scripts

import "embed"

// Default script file names.
const (
	SchemaFile = "create_consolidated_messages_table.sql"
	LoadFile   = "load_consolidated_messages.sql"
)

// FS holds the embedded SQL scripts.
//
//go:embed *.sql
var FS embed.FS
