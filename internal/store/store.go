// Package store provides read access to the databases that answer tables
// are fetched from. Adapters implement a common interface and register
// themselves by store type; the executor layered on top converts every
// failure into an error-sentinel table so that nothing raises across the
// evaluation boundary.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Config identifies one store to run queries against.
type Config struct {
	// Type selects the adapter: "sqlite", "duckdb" or "postgres".
	Type string `koanf:"type" yaml:"type"`

	// Path is the database file for file-based stores. ":memory:" opens an
	// in-memory database.
	Path string `koanf:"path" yaml:"path"`

	// Host, Port, Database, Username and Password apply to network stores.
	Host     string `koanf:"host" yaml:"host"`
	Port     int    `koanf:"port" yaml:"port"`
	Database string `koanf:"database" yaml:"database"`
	Username string `koanf:"username" yaml:"username"`
	Password string `koanf:"password" yaml:"password"`

	// Options carries driver-specific settings.
	Options map[string]string `koanf:"options" yaml:"options"`
}

// Identifier returns the stable store identity used in cache keys.
func (c Config) Identifier() string {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%d/%s", c.Host, c.Port, c.Database)
	default:
		return c.Path
	}
}

// Adapter is the minimal surface the evaluation core needs from a store.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, sql string) error

	// Query runs a statement that returns rows.
	Query(ctx context.Context, sql string) (*sql.Rows, error)

	// DialectName names the SQL dialect ("sqlite", "duckdb", "postgres").
	DialectName() string
}

// Base provides the shared database/sql plumbing for adapters. Embed it in
// concrete implementations.
type Base struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *Base) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing store connection", "type", b.Cfg.Type)
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *Base) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("store connection not established")
	}
	if _, err := b.DB.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *Base) Query(ctx context.Context, sqlStr string) (*sql.Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("store connection not established")
	}
	//nolint:rowserrcheck // rows.Err() is checked by the caller after iteration
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return rows, nil
}

// IsConnected reports whether Connect has succeeded.
func (b *Base) IsConnected() bool { return b.DB != nil }
