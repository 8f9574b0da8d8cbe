// Package pipeline rebuilds the consolidated_messages table from the raw
// tables and produces its CSV export and data-quality report.
//
// A run moves through INIT, SCHEMA_BUILT, DATA_LOADED, COMMITTED, EXPORTED,
// REPORTED and DONE. Schema creation and loading share one transaction; any
// failure before the commit rolls it back. Failures after the commit leave
// the rebuilt table in place and are reported with Committed set.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/consolidator/internal/database"
	apperrors "github.com/edgard/consolidator/internal/errors"
	"github.com/edgard/consolidator/internal/export"
	"github.com/edgard/consolidator/internal/report"
	"github.com/edgard/consolidator/internal/scripts"
)

// OpenFunc opens a database connection for the file at path.
type OpenFunc func(ctx context.Context, path string) (*sqlx.DB, error)

// Options configures a Pipeline.
type Options struct {
	DBPath        string
	Scripts       scripts.Set
	Consolidated  string
	ManagedTables []string
	CSVPath       string
	ReportPath    string

	// Open and OpenReadOnly default to database.Open and
	// database.OpenReadOnly.
	Open         OpenFunc
	OpenReadOnly OpenFunc
}

// Result describes the outcome of one run.
type Result struct {
	State      State
	FailedStep State // step being attempted when the run failed
	Committed  bool
	Rows       int64
	Duration   time.Duration
	Err        error
}

// Pipeline runs the consolidation. It holds no per-run state, so one
// Pipeline may run repeatedly, but not concurrently.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Pipeline.
func New(opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Open == nil {
		opts.Open = database.Open
	}
	if opts.OpenReadOnly == nil {
		opts.OpenReadOnly = database.OpenReadOnly
	}
	return &Pipeline{
		opts:   opts,
		logger: logger.With("component", "pipeline"),
	}
}

type run struct {
	log *slog.Logger
	res Result
}

func (r *run) transition(to State) {
	r.log.Debug("Pipeline state changed", "from", r.res.State, "to", to)
	r.res.State = to
}

func (r *run) fail(step State, err error) {
	r.res.FailedStep = step
	r.res.Err = err
	r.transition(StateFailed)
	r.log.Error("An error occurred", "step", step, "code", apperrors.Code(err), "error", err)
}

// Run executes one full pipeline run. It never panics on SQL or file errors;
// the outcome, including any error, is reported in the Result.
func (p *Pipeline) Run(ctx context.Context) Result {
	start := time.Now()
	r := &run{log: p.logger, res: Result{State: StateInit}}

	db, err := p.opts.Open(ctx, p.opts.DBPath)
	if err != nil {
		r.fail(StateInit, apperrors.NewDatabaseError("failed to open database", err))
		r.res.Duration = time.Since(start)
		return r.res
	}
	r.log.Info("Database connection established.", "path", p.opts.DBPath)

	p.execute(ctx, db, r)

	database.Close(db, r.log)
	if r.res.Err == nil {
		r.transition(StateDone)
	}
	r.res.Duration = time.Since(start)

	r.log.Info("Pipeline run finished",
		"state", r.res.State,
		"committed", r.res.Committed,
		"rows", r.res.Rows,
		"duration", r.res.Duration)
	return r.res
}

func (p *Pipeline) execute(ctx context.Context, db *sqlx.DB, r *run) {
	if !p.rebuild(ctx, db, r) {
		return
	}

	r.log.Info("Writing the data into csv file", "path", p.opts.CSVPath)
	n, err := export.ExportTable(ctx, db, p.opts.Consolidated, p.opts.CSVPath)
	if err != nil {
		r.fail(StateExported, apperrors.NewExportError("failed to export consolidated table", err))
		return
	}
	r.log.Info("Consolidated table exported", "path", p.opts.CSVPath, "rows", n)
	r.transition(StateExported)

	r.log.Info("Generating Data Quality Reports", "path", p.opts.ReportPath)
	if err := p.report(ctx); err != nil {
		r.fail(StateReported, apperrors.NewReportError("failed to generate data quality report", err))
		return
	}
	r.transition(StateReported)
}

// rebuild drops, recreates and loads the managed tables in one transaction
// and commits it. It reports whether the commit happened; on failure the
// transaction has been rolled back.
func (p *Pipeline) rebuild(ctx context.Context, db *sqlx.DB, r *run) bool {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		r.fail(StateInit, apperrors.NewDatabaseError("failed to begin transaction", err))
		return false
	}
	defer func() {
		if r.res.Committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.log.Warn("Error rolling back transaction", "error", rbErr)
			return
		}
		r.log.Info("Transaction rolled back due to error.")
	}()

	if err := InitSchema(ctx, tx, p.opts.ManagedTables, p.opts.Scripts.Schema); err != nil {
		r.fail(StateSchemaBuilt, apperrors.NewSchemaError("failed to create consolidated tables", err))
		return false
	}
	r.log.Info("consolidated_messages table created successfully.", "table", p.opts.Consolidated)
	r.transition(StateSchemaBuilt)

	if err := LoadConsolidated(ctx, tx, p.opts.Scripts.Load); err != nil {
		r.fail(StateDataLoaded, apperrors.NewLoadError("failed to load consolidated table", err))
		return false
	}
	rows, err := database.CountRows(ctx, tx, p.opts.Consolidated)
	if err != nil {
		r.fail(StateDataLoaded, apperrors.NewLoadError("failed to count loaded rows", err))
		return false
	}
	r.res.Rows = rows
	r.log.Info("Data inserted into consolidated_messages successfully.", "table", p.opts.Consolidated, "rows", rows)
	r.transition(StateDataLoaded)

	if err := tx.Commit(); err != nil {
		r.fail(StateCommitted, apperrors.NewDatabaseError("failed to commit transaction", err))
		return false
	}
	r.res.Committed = true
	r.log.Info("Transaction committed successfully.")
	r.transition(StateCommitted)

	return true
}

// report generates the data-quality report on its own read-only
// connection, separate from the write connection.
func (p *Pipeline) report(ctx context.Context) error {
	ro, err := p.opts.OpenReadOnly(ctx, p.opts.DBPath)
	if err != nil {
		return err
	}
	defer ro.Close()

	rep, err := report.Generate(ctx, ro, p.opts.Consolidated)
	if err != nil {
		return err
	}
	return rep.WriteFile(p.opts.ReportPath)
}
