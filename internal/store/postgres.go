package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

func init() {
	Register("postgres", func(logger *slog.Logger) Adapter { return NewPostgres(logger) })
}

// Postgres implements Adapter for PostgreSQL.
type Postgres struct {
	Base
}

// NewPostgres creates a Postgres adapter. A nil logger discards logs.
func NewPostgres(logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Postgres{Base: Base{Logger: logger}}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Postgres) DialectName() string { return "postgres" }

// Connect establishes a connection to PostgreSQL.
func (a *Postgres) Connect(ctx context.Context, cfg Config) error {
	a.Logger.Debug("connecting to postgres", "host", cfg.Host, "database", cfg.Database)

	db, err := sql.Open("pgx", buildPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN assembles a keyword/value DSN from the config.
func buildPostgresDSN(cfg Config) string {
	var parts []string
	add := func(key, val string) {
		if val != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", key, val))
		}
	}
	add("host", cfg.Host)
	if cfg.Port != 0 {
		add("port", fmt.Sprintf("%d", cfg.Port))
	}
	add("dbname", cfg.Database)
	add("user", cfg.Username)
	add("password", cfg.Password)
	for k, v := range cfg.Options {
		add(k, v)
	}
	return strings.Join(parts, " ")
}
