package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqljudge/internal/compare"
	"github.com/leapstack-labs/sqljudge/internal/table"
)

// DefaultQueryTimeout bounds a single raw query execution. It is shorter
// than the per-question timeout so a hung driver cannot eat the whole
// question budget.
const DefaultQueryTimeout = 5 * time.Minute

// Executor runs queries against a store and always returns a table: driver
// failures and timeouts come back as error-sentinel tables, never as errors.
// Each Run opens its own connection, so concurrent workers share nothing.
type Executor struct {
	logger  *slog.Logger
	timeout time.Duration
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Logger       *slog.Logger
	QueryTimeout time.Duration
}

// NewExecutor creates an Executor. Zero options take defaults.
func NewExecutor(opts ExecutorOptions) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Executor{logger: logger, timeout: timeout}
}

// Run executes sqlText against the configured store. The query runs on its
// own goroutine under the executor's timeout; on expiry the timeout sentinel
// is returned immediately and the abandoned query is cancelled behind it.
func (e *Executor) Run(ctx context.Context, cfg Config, sqlText string) *table.Table {
	queryCtx, cancel := context.WithCancel(ctx)

	ch := make(chan *table.Table, 1)
	go func() {
		ch <- e.fetch(queryCtx, cfg, sqlText)
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case t := <-ch:
		cancel()
		return t
	case <-timer.C:
		e.logger.Warn("query execution timed out", "store", cfg.Identifier(), "timeout", e.timeout)
		cancel()
		return table.TimeoutTable()
	case <-ctx.Done():
		cancel()
		return table.ErrorTable(ctx.Err().Error())
	}
}

// fetch opens a connection, runs the query and drains the result.
func (e *Executor) fetch(ctx context.Context, cfg Config, sqlText string) *table.Table {
	adapter, err := NewAdapter(cfg, e.logger)
	if err != nil {
		return table.ErrorTable(err.Error())
	}
	if err := adapter.Connect(ctx, cfg); err != nil {
		return table.ErrorTable(err.Error())
	}
	defer func() { _ = adapter.Close() }()

	rows, err := adapter.Query(ctx, sqlText)
	if err != nil {
		return table.ErrorTable(err.Error())
	}
	t, err := table.FromRows(rows)
	if err != nil {
		return table.ErrorTable(err.Error())
	}
	return t
}

// BagEqualQueries executes two query texts against the same store and
// compares the fetched row-tuple sets directly, ignoring order and duplicate
// counts. Unlike Run, a failing query surfaces as an error: a reference
// query that cannot execute invalidates the comparison rather than scoring
// it.
func BagEqualQueries(ctx context.Context, logger *slog.Logger, cfg Config, sqlA, sqlB string) (bool, error) {
	adapter, err := NewAdapter(cfg, logger)
	if err != nil {
		return false, err
	}
	if err := adapter.Connect(ctx, cfg); err != nil {
		return false, err
	}
	defer func() { _ = adapter.Close() }()

	fetch := func(sqlText string) (*table.Table, error) {
		rows, err := adapter.Query(ctx, sqlText)
		if err != nil {
			return nil, err
		}
		return table.FromRows(rows)
	}

	ta, err := fetch(sqlA)
	if err != nil {
		return false, err
	}
	tb, err := fetch(sqlB)
	if err != nil {
		return false, err
	}
	return compare.BagEqual(ta, tb), nil
}
