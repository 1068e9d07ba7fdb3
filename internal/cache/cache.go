// Package cache memoizes query execution on the filesystem. Entries are
// content-addressed by store identity and query text, shared between
// concurrent processes, and protected per key by advisory file locks. The
// cache is pure memoization: losing or clearing it only costs recomputation.
package cache

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/leapstack-labs/sqljudge/internal/store"
	"github.com/leapstack-labs/sqljudge/internal/table"
)

// Cache memoizes Executor runs under a directory.
type Cache struct {
	dir      string
	readOnly bool
	executor *store.Executor
	logger   *slog.Logger
}

// Options configures a Cache.
type Options struct {
	// Dir is the cache directory; created if missing.
	Dir string

	// ReadOnly prevents new entries from being written.
	ReadOnly bool

	// Executor runs queries on cache misses.
	Executor *store.Executor

	// Logger receives cache diagnostics. If nil, logs are discarded.
	Logger *slog.Logger
}

// New creates a Cache, creating its directory if necessary.
func New(opts Options) (*Cache, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("cache directory not specified")
	}
	if opts.Executor == nil {
		return nil, fmt.Errorf("cache requires an executor")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{dir: opts.Dir, readOnly: opts.ReadOnly, executor: opts.Executor, logger: logger}, nil
}

// Key derives the content address for one (store, query) pair.
func Key(storeID, sqlText string) string {
	sum := md5.Sum([]byte(storeID + "|" + strings.TrimSpace(sqlText)))
	return hex.EncodeToString(sum[:])
}

// Execute returns the memoized result of running sqlText against the store,
// executing and recording it on a miss. Cache failures are non-fatal: the
// query is simply re-run.
func (c *Cache) Execute(ctx context.Context, cfg store.Config, sqlText string) *table.Table {
	key := Key(cfg.Identifier(), sqlText)

	if t := c.load(key); t != nil {
		c.logger.Debug("cache hit", "key", key)
		return t
	}
	c.logger.Debug("cache miss", "key", key)

	t := c.executor.Run(ctx, cfg, sqlText)
	if !c.readOnly {
		c.save(key, t)
	}
	return t
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".bin")
}

func (c *Cache) lockPath(key string) string {
	return filepath.Join(c.dir, key+".lock")
}

// load returns the cached table for key, or nil on a miss or any failure.
func (c *Cache) load(key string) *table.Table {
	path := c.entryPath(key)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	lock := flock.New(c.lockPath(key))
	if err := lock.RLock(); err != nil {
		c.logger.Warn("failed to acquire shared cache lock, skipping cache", "key", key, "error", err)
		return nil
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("failed to read cache entry", "key", key, "error", err)
		return nil
	}
	t, err := table.Unmarshal(data)
	if err != nil {
		c.logger.Warn("failed to decode cache entry", "key", key, "error", err)
		return nil
	}
	return t
}

// save records the table under key. Failures are logged and swallowed.
func (c *Cache) save(key string, t *table.Table) {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		c.logger.Warn("failed to encode cache entry", "key", key, "error", err)
		return
	}

	lock := flock.New(c.lockPath(key))
	if err := lock.Lock(); err != nil {
		c.logger.Warn("failed to acquire exclusive cache lock, skipping write", "key", key, "error", err)
		return
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.WriteFile(c.entryPath(key), buf.Bytes(), 0o644); err != nil {
		c.logger.Warn("failed to write cache entry", "key", key, "error", err)
	}
}

// Clear removes every entry and lock file.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".bin") && !strings.HasSuffix(name, ".lock") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// Stats reports the entry count and total size in bytes.
func (c *Cache) Stats() (entries int, bytes int64, err error) {
	list, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range list {
		if !strings.HasSuffix(e.Name(), ".bin") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		entries++
		bytes += info.Size()
	}
	return entries, bytes, nil
}
