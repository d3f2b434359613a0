// Package sqldb opens the row store behind the log and report repositories.
// Postgres goes through pgx's database/sql driver, SQLite through modernc.
// Queries are written with $N placeholders and rebound per dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB wraps *sql.DB with its dialect and a one-shot schema bootstrap.
type DB struct {
	*sql.DB
	Dialect Dialect

	schemaOnce sync.Once
	schemaErr  error
}

// OpenPostgres opens a pooled Postgres connection via pgx.
func OpenPostgres(dsn string) (*DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &DB{DB: db, Dialect: Postgres}, nil
}

// OpenSQLite opens a single-connection SQLite database. ":memory:" keeps
// everything in process, which the tests rely on.
func OpenSQLite(path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// Keep operations serialized; an in-memory database lives per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if _, err := db.Exec("pragma busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	return &DB{DB: db, Dialect: SQLite}, nil
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// Rebind rewrites $N placeholders to SQLite's numbered ?N form.
func (d *DB) Rebind(query string) string {
	if d.Dialect != SQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?$1")
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.DB.ExecContext(ctx, d.Rebind(query), args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.DB.QueryContext(ctx, d.Rebind(query), args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.DB.QueryRowContext(ctx, d.Rebind(query), args...)
}

// EnsureSchema creates the tables once per DB. Statements run one by one so
// both drivers accept them.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return errors.New("db is nil")
	}
	d.schemaOnce.Do(func() {
		for _, stmt := range schema {
			if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
				d.schemaErr = fmt.Errorf("ensure schema: %w", err)
				return
			}
		}
	})
	return d.schemaErr
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS journal_logs (
  user_id TEXT NOT NULL,
  id TEXT NOT NULL,
  day_key TEXT NOT NULL,
  timestamp_ms BIGINT NOT NULL,
  content TEXT NOT NULL,
  tags TEXT NOT NULL DEFAULT '[]',
  PRIMARY KEY (user_id, id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_logs_user_day ON journal_logs (user_id, day_key, timestamp_ms)`,
	`CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  period_start TEXT NOT NULL,
  period_end TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at_ms BIGINT NOT NULL,
  UNIQUE (user_id, type, period_start, period_end)
)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_user_created ON reports (user_id, created_at_ms)`,
}
