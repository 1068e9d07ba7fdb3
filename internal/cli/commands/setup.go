// Package commands implements the sqljudge subcommands.
package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqljudge/internal/cache"
	"github.com/leapstack-labs/sqljudge/internal/cli/config"
	"github.com/leapstack-labs/sqljudge/internal/store"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig returns a context carrying the loaded configuration.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger returns a context carrying the command logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Cache  *cache.Cache
}

// NewCommandContext assembles config, logger and the result cache for a command.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc := NewCommandContextWithoutCache(cmd)

	executor := store.NewExecutor(store.ExecutorOptions{
		Logger:       cc.Logger,
		QueryTimeout: time.Duration(cc.Cfg.QueryTimeoutSeconds) * time.Second,
	})

	c, err := cache.New(cache.Options{
		Dir:      cc.Cfg.CacheDir,
		ReadOnly: cc.Cfg.CacheReadOnly,
		Executor: executor,
		Logger:   cc.Logger,
	})
	if err != nil {
		return nil, err
	}
	cc.Cache = c
	return cc, nil
}

// NewCommandContextWithoutCache is for commands that never touch a store.
func NewCommandContextWithoutCache(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(cmd.Context()),
		Logger: getLogger(cmd.Context()),
	}
}

func getConfig(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.Default()
}

func getLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}
