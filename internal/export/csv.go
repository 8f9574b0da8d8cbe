// Package export writes database tables to CSV files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/consolidator/internal/sqlscript"
)

// ExportTable writes every row of table to a CSV file at path, replacing any
// previous file. The first record is the header of column names; there is no
// row index column. Values are written as stored, including the text of
// date and time columns. The file is written next to path and renamed into
// place, so a failed export leaves the previous file untouched.
//
// It returns the number of data rows written.
func ExportTable(ctx context.Context, q sqlx.QueryerContext, table, path string) (int64, error) {
	if !sqlscript.ValidIdentifier(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	cols, err := selectList(ctx, q, table)
	if err != nil {
		return 0, err
	}

	rows, err := q.QueryxContext(ctx, "SELECT "+cols+" FROM "+sqlscript.QuoteIdentifier(table)+";")
	if err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := WriteRows(rows, tmp)
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return n, fmt.Errorf("failed to move csv into place: %w", err)
	}
	committed = true

	return n, nil
}

type column struct {
	Name string `db:"name"`
	Type string `db:"type"`
}

// selectList returns the columns of table as a select list in declaration
// order. The driver parses values of DATE, DATETIME and TIMESTAMP columns
// into time.Time; those columns are cast to TEXT, which has no declared type,
// so the stored text comes back unchanged.
func selectList(ctx context.Context, q sqlx.QueryerContext, table string) (string, error) {
	var cols []column
	err := sqlx.SelectContext(ctx, q, &cols,
		`SELECT name, type FROM pragma_table_info(?) ORDER BY cid;`, table)
	if err != nil {
		return "", fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("no such table: %s", table)
	}

	parts := make([]string, len(cols))
	for i, c := range cols {
		name := sqlscript.QuoteIdentifier(c.Name)
		if isTimeType(c.Type) {
			parts[i] = "CAST(" + name + " AS TEXT) AS " + name
		} else {
			parts[i] = name
		}
	}
	return strings.Join(parts, ", "), nil
}

func isTimeType(declared string) bool {
	t := strings.ToUpper(declared)
	return strings.Contains(t, "DATE") || strings.Contains(t, "TIME")
}

// WriteRows writes the header and all remaining rows of rows to w as CSV.
func WriteRows(rows *sqlx.Rows, w io.Writer) (int64, error) {
	cols, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("failed to read columns: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return 0, err
	}

	record := make([]string, len(cols))
	var n int64
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return n, fmt.Errorf("failed to scan row %d: %w", n+1, err)
		}
		for i, v := range vals {
			record[i] = FormatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("failed to iterate rows: %w", err)
	}

	cw.Flush()
	return n, cw.Error()
}

// FormatValue renders a value scanned from SQLite as a CSV field. NULL
// becomes an empty field and REALs use the shortest form that parses back
// to the same value.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
