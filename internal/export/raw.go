package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
)

// TableResult is the outcome of exporting one raw table.
type TableResult struct {
	Table string
	Path  string
	Rows  int64
	Err   error
}

// Summary collects the per-table results of ExportTables.
type Summary struct {
	Results []TableResult
}

// Failed returns the results whose export failed.
func (s Summary) Failed() []TableResult {
	var failed []TableResult
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// OK reports whether every table was exported.
func (s Summary) OK() bool {
	return len(s.Failed()) == 0
}

// ExportTables writes each table to <dir>/<table>.csv. A failing table is
// logged and recorded in the summary; the remaining tables are still
// exported. Only a failure to create dir stops the batch.
func ExportTables(ctx context.Context, q sqlx.QueryerContext, dir string, tables []string, log *slog.Logger) (Summary, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	summary := Summary{Results: make([]TableResult, 0, len(tables))}
	for _, table := range tables {
		path := filepath.Join(dir, table+".csv")
		n, err := ExportTable(ctx, q, table, path)

		res := TableResult{Table: table, Path: path, Rows: n, Err: err}
		if err != nil {
			res.Rows = 0
			log.ErrorContext(ctx, "Failed to export table", "table", table, "error", err)
		} else {
			log.InfoContext(ctx, "Exported table", "table", table, "path", path, "rows", n)
		}
		summary.Results = append(summary.Results, res)
	}

	return summary, nil
}
