package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Adapter { return NewSQLite(logger) })
}

// SQLite implements Adapter for SQLite files, the default store type for
// evaluation datasets. Connections open read-only: evaluation only ever
// fetches answers.
type SQLite struct {
	Base
}

// NewSQLite creates a SQLite adapter. A nil logger discards logs.
func NewSQLite(logger *slog.Logger) *SQLite {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLite{Base: Base{Logger: logger}}
}

// DialectName returns the SQL dialect for this adapter.
func (a *SQLite) DialectName() string { return "sqlite" }

// Connect opens the database file read-only.
func (a *SQLite) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?mode=ro", url.PathEscape(path))
	}

	a.Logger.Debug("connecting to sqlite", "path", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}
