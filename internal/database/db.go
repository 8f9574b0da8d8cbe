// Package database provides SQLite connection setup, raw-table migrations
// and small catalog helpers shared by the pipeline and the export tools.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/consolidator/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const busyTimeoutPragma = "_pragma=busy_timeout(5000)"

// DSN builds a read-write DSN for the database file at path.
func DSN(path string) string {
	return fileURI(path) + "?" + busyTimeoutPragma
}

// ReadOnlyDSN builds a DSN that opens the database file at path read-only.
func ReadOnlyDSN(path string) string {
	return fileURI(path) + "?mode=ro&" + busyTimeoutPragma
}

// fileURI percent-escapes path so '?', '#' and '%' in file names reach
// SQLite as part of the name. SQLite decodes the escapes when it opens a
// file: URI.
func fileURI(path string) string {
	return "file:" + strings.ReplaceAll(url.PathEscape(path), "%2F", "/")
}

// Open connects to the SQLite database at path. The pool is capped at a
// single connection because SQLite allows only one writer and an explicit
// transaction must stay on the connection that began it.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	return connect(ctx, DSN(path))
}

// OpenReadOnly connects to the SQLite database at path without write access.
// The file must already exist.
func OpenReadOnly(ctx context.Context, path string) (*sqlx.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat database file: %w", err)
	}
	return connect(ctx, ReadOnlyDSN(path))
}

func connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// Close closes the database connection pool and logs the outcome.
func Close(db *sqlx.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database connection", "error", err)
	} else {
		log.Info("Database connection closed.")
	}
}

// EnsureDir creates the parent directory of the database file at path.
func EnsureDir(path string) error {
	dir := filepath.Dir(ExtractDBNameFromPath(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// ApplyMigrations creates the raw source tables using the embedded
// migrations. It is used to bootstrap development and test databases; the
// pipeline itself never migrates the source schema.
func ApplyMigrations(db *sql.DB, log *slog.Logger) error {
	if db == nil {
		return errors.New("database connection is nil, cannot apply migrations")
	}
	if log == nil {
		log = slog.Default()
	}

	log.Info("Applying raw table migrations...")

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create embed source driver instance: %w", err)
	}

	dbDriver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite database driver: %w", err)
	}

	// The migrator is not closed: closing it would close db, which the
	// caller still owns.
	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No raw table migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("Raw table migrations applied successfully.")
	return nil
}

// ExtractDBNameFromPath extracts the database file path from a possibly
// URL-formatted path. A plain path is returned unchanged, even if it
// contains '?'.
func ExtractDBNameFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "file:")
	if !ok {
		return path
	}
	rest, _, _ = strings.Cut(rest, "?")
	if unescaped, err := url.PathUnescape(rest); err == nil {
		return unescaped
	}
	return rest
}
