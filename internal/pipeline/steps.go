package pipeline

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/consolidator/internal/scripts"
	"github.com/edgard/consolidator/internal/sqlscript"
)

// ExecScript executes the statements of script in order on ex. The first
// failing statement stops the script.
func ExecScript(ctx context.Context, ex sqlx.ExecerContext, script scripts.Script) error {
	for i, stmt := range script.Statements {
		if _, err := ex.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: statement %d of %d: %w", script.Name, i+1, len(script.Statements), err)
		}
	}
	return nil
}

// InitSchema drops the managed tables if they exist and runs the schema
// script to recreate them. Run on a transaction, a failure leaves the
// previous tables in place once the transaction is rolled back.
func InitSchema(ctx context.Context, ex sqlx.ExecerContext, managed []string, schema scripts.Script) error {
	for _, table := range managed {
		if !sqlscript.ValidIdentifier(table) {
			return fmt.Errorf("invalid table name %q", table)
		}
		if _, err := ex.ExecContext(ctx, "DROP TABLE IF EXISTS "+sqlscript.QuoteIdentifier(table)+";"); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return ExecScript(ctx, ex, schema)
}

// LoadConsolidated runs the load script that populates the consolidated and
// dimension tables from the raw tables.
func LoadConsolidated(ctx context.Context, ex sqlx.ExecerContext, load scripts.Script) error {
	return ExecScript(ctx, ex, load)
}
