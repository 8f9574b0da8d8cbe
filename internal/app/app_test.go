package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgard/consolidator/internal/config"
	"github.com/edgard/consolidator/internal/database/dbtest"
	"github.com/edgard/consolidator/internal/logger"
	"github.com/edgard/consolidator/internal/pipeline"
)

func testConfig(t *testing.T, dbPath string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Log:      config.LogConfig{Path: filepath.Join(dir, "logs", "app.log"), Level: "info", Format: "text"},
		Database: config.DatabaseConfig{Path: dbPath},
		Output: config.OutputConfig{
			Dir:        filepath.Join(dir, "output"),
			CSVFile:    config.DefaultCSVFile,
			ReportFile: config.DefaultReportFile,
			RawDir:     filepath.Join(dir, "output_raw_tables"),
		},
		Tables: config.TablesConfig{
			Consolidated: config.DefaultConsolidated,
			Managed:      config.DefaultManagedTables,
			Raw:          config.DefaultRawTables,
		},
	}
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, dbtest.Create(t, dbtest.Path(t), dbtest.Basic()))
	require.NoError(t, cfg.Validate())

	a, err := New(cfg, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background()))
	require.FileExists(t, cfg.CSVPath())

	report, err := os.ReadFile(cfg.ReportPath())
	require.NoError(t, err)
	require.Contains(t, string(report), "Total Rows: 3\n")
	require.Contains(t, string(report), "Null IDs: 0\n")
	require.Contains(t, string(report), "Distinct Conversations: 1\n")
}

func TestRunHandledFailureIsNotAnError(t *testing.T) {
	t.Parallel()

	// a database without raw tables: the load step fails and rolls back
	cfg := testConfig(t, filepath.Join(t.TempDir(), "empty.db"))
	a, err := New(cfg, logger.Discard())
	require.NoError(t, err)

	res := a.RunOnce(context.Background())
	require.Equal(t, pipeline.StateFailed, res.State)
	require.NoError(t, a.Run(context.Background()))
}

func TestNewWithMissingScript(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "unused.db")
	cfg.Scripts.LoadPath = filepath.Join(t.TempDir(), "missing.sql")

	_, err := New(cfg, logger.Discard())
	require.Error(t, err)
}

func TestRunScheduled(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, dbtest.Create(t, dbtest.Path(t), dbtest.Basic()))
	cfg.Schedule = config.ScheduleConfig{Cron: "* * * * * *", WithSeconds: true}

	a, err := New(cfg, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.ReportPath())
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("scheduled run did not stop after cancel")
	}
}

func TestExportRawAndListTables(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := testConfig(t, dbtest.Create(t, dbtest.Path(t), dbtest.Basic()))

	summary, err := ExportRaw(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	require.True(t, summary.OK())
	for _, table := range config.DefaultRawTables {
		require.FileExists(t, filepath.Join(cfg.Output.RawDir, table+".csv"))
	}

	tables, err := ListTables(ctx, cfg)
	require.NoError(t, err)
	require.Subset(t, tables, config.DefaultRawTables)
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := testConfig(t, filepath.Join(t.TempDir(), "database", "dev.db"))
	require.NoError(t, Bootstrap(ctx, cfg, logger.Discard()))
	require.NoError(t, Bootstrap(ctx, cfg, logger.Discard()))

	tables, err := ListTables(ctx, cfg)
	require.NoError(t, err)
	require.Subset(t, tables, config.DefaultRawTables)
}
