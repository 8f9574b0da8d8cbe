// Package report computes the data-quality summary of the consolidated
// table and renders it as plain text.
package report

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/consolidator/internal/sqlscript"
)

// TopN is the number of message types listed in the report.
const TopN = 5

// MessageTypeCount is one line of the top message types ranking.
type MessageTypeCount struct {
	Type  sql.NullString `db:"message_type"`
	Count int64          `db:"n"`
}

// Label returns the type name, or None for NULL types.
func (m MessageTypeCount) Label() string {
	if !m.Type.Valid {
		return "None"
	}
	return m.Type.String
}

// Report holds the data-quality figures of one table.
type Report struct {
	Table                 string
	TotalRows             int64
	NullIDs               int64
	DistinctConversations int64
	TopMessageTypes       []MessageTypeCount
}

// Generate runs the data-quality queries against table, in order: total
// rows, rows with a NULL id, distinct conversation ids, and the TopN message
// types by count. Ties in the ranking are ordered by message type.
func Generate(ctx context.Context, q sqlx.QueryerContext, table string) (*Report, error) {
	if !sqlscript.ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	t := sqlscript.QuoteIdentifier(table)
	r := &Report{Table: table}

	counts := []struct {
		name  string
		dest  *int64
		query string
	}{
		{"total rows", &r.TotalRows, "SELECT COUNT(*) FROM " + t},
		{"null ids", &r.NullIDs, "SELECT COUNT(*) FROM " + t + " WHERE id IS NULL"},
		{"distinct conversations", &r.DistinctConversations, "SELECT COUNT(DISTINCT conversation_id) FROM " + t},
	}
	for _, c := range counts {
		if err := sqlx.GetContext(ctx, q, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}

	query := fmt.Sprintf(`
        SELECT message_type, COUNT(*) AS n
        FROM %s
        GROUP BY message_type
        ORDER BY n DESC, message_type ASC
        LIMIT %d;
    `, t, TopN)
	if err := sqlx.SelectContext(ctx, q, &r.TopMessageTypes, query); err != nil {
		return nil, fmt.Errorf("failed to rank message types: %w", err)
	}

	return r, nil
}

// WriteTo renders the report in its fixed plain-text format.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}

	fmt.Fprintf(cw, "Data Quality Report\n")
	fmt.Fprintf(cw, "====================\n")
	fmt.Fprintf(cw, "Total Rows: %d\n", r.TotalRows)
	fmt.Fprintf(cw, "Null IDs: %d\n", r.NullIDs)
	fmt.Fprintf(cw, "Distinct Conversations: %d\n", r.DistinctConversations)
	fmt.Fprintf(cw, "\nTop %d Message Types:\n", TopN)
	for _, m := range r.TopMessageTypes {
		fmt.Fprintf(cw, "%s: %d\n", m.Label(), m.Count)
	}

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// WriteFile writes the report to path, replacing any previous report.
func (r *Report) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if _, err := r.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
