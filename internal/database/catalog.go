package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/consolidator/internal/sqlscript"
)

// ListTables returns the names of the user tables in the database, sorted
// by name. SQLite internal tables are excluded.
func ListTables(ctx context.Context, q sqlx.QueryerContext) ([]string, error) {
	var names []string
	err := sqlx.SelectContext(ctx, q, &names, `
        SELECT name FROM sqlite_master
        WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
        ORDER BY name;
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

// TableExists reports whether a table with the given name exists.
func TableExists(ctx context.Context, q sqlx.QueryerContext, table string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?;`, table)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return n > 0, nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, q sqlx.QueryerContext, table string) (int64, error) {
	if !sqlscript.ValidIdentifier(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	var n int64
	query := "SELECT COUNT(*) FROM " + sqlscript.QuoteIdentifier(table) + ";"
	if err := sqlx.GetContext(ctx, q, &n, query); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}
