package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/require"

	"github.com/edgard/consolidator/internal/database"
	"github.com/edgard/consolidator/internal/database/dbtest"
	"github.com/edgard/consolidator/internal/export"
	"github.com/edgard/consolidator/internal/logger"
)

type partRow struct {
	ID             int64  `csv:"id"`
	Email          string `csv:"conv_dataset_email"`
	ConversationID int64  `csv:"conversation_id"`
	PartType       string `csv:"part_type"`
	Message        string `csv:"message"`
	CreatedAt      string `csv:"created_at"`
}

func TestExportTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Open(ctx, dbtest.Create(t, dbtest.Path(t), dbtest.Basic()))
	require.NoError(t, err)
	defer db.Close()

	path := filepath.Join(t.TempDir(), "out", "conversation_parts.csv")
	n, err := export.ExportTable(ctx, db, "conversation_parts", path)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parts []partRow
	require.NoError(t, csvutil.Unmarshal(data, &parts))
	require.Len(t, parts, 3)
	require.Equal(t, partRow{
		ID: 1, Email: "alice@example.com", ConversationID: 100, PartType: "comment",
		Message: "Hi, I need help", CreatedAt: "2024-01-01T10:00:00Z",
	}, parts[0])
	require.Empty(t, parts[1].Message, "NULL renders as an empty field")

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	require.NoError(t, err)
	require.Equal(t, []string{"id", "conv_dataset_email", "conversation_id", "part_type", "message", "created_at"}, header)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
}

func TestExportTableOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Open(ctx, dbtest.Create(t, dbtest.Path(t), dbtest.Basic()))
	require.NoError(t, err)
	defer db.Close()

	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,content\nthat,is\nmuch,longer\nthan,needed\n"), 0o600))

	_, err = export.ExportTable(ctx, db, "users", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "id,name,email,is_customer\n1,Alice,alice@example.com,1\n2,Bob,bob@example.com,0\n", string(data))
}

func TestExportTableMissingKeepsPreviousFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Open(ctx, dbtest.Create(t, dbtest.Path(t), dbtest.Basic()))
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "consolidated_messages.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0o600))

	_, err = export.ExportTable(ctx, db, "consolidated_messages", path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "previous\n", string(data))

	_, err = export.ExportTable(ctx, db, "bad name", path)
	require.Error(t, err)
}

func TestExportTableKeepsStoredDateText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "dates.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE events (
        id INTEGER, created DATETIME, d DATE, stamp timestamp, score REAL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO events VALUES
        (1, '2024-01-01 10:00:00.123', '2024-03-05', NULL, 1e21),
        (2, '2024-01-02T08:30:00.5+02:00', '2024-03-06', '2024-03-06 00:00:00', 0.25)`)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "events.csv")
	n, err := export.ExportTable(ctx, db, "events", path)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "id,created,d,stamp,score\n"+
		"1,2024-01-01 10:00:00.123,2024-03-05,,1e+21\n"+
		"2,2024-01-02T08:30:00.5+02:00,2024-03-06,2024-03-06 00:00:00,0.25\n", string(data))
}

func TestExportTablesIsolatesFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Open(ctx, dbtest.Create(t, dbtest.Path(t), dbtest.Basic()))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, "DROP TABLE conversation_start;")
	require.NoError(t, err)

	var logs bytes.Buffer
	dir := filepath.Join(t.TempDir(), "output_raw_tables")
	summary, err := export.ExportTables(ctx, db, dir,
		[]string{"users", "conversation_start", "conversation_parts"}, logger.New(&logs, "info", false))
	require.NoError(t, err)

	require.Len(t, summary.Results, 3)
	require.False(t, summary.OK())

	failed := summary.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, "conversation_start", failed[0].Table)

	require.FileExists(t, filepath.Join(dir, "users.csv"))
	require.FileExists(t, filepath.Join(dir, "conversation_parts.csv"))
	require.NoFileExists(t, filepath.Join(dir, "conversation_start.csv"))
	require.EqualValues(t, 3, summary.Results[2].Rows)

	require.Contains(t, logs.String(), "Failed to export table")
	require.Contains(t, logs.String(), "table=conversation_start")
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{[]byte("blob"), "blob"},
		{int64(-42), "-42"},
		{1.5, "1.5"},
		{float64(3), "3"},
		{true, "1"},
		{false, "0"},
		{1e21, "1e+21"},
		{0.00001, "1e-05"},
		{int32(7), "7"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, export.FormatValue(tc.in), "%#v", tc.in)
	}
}
