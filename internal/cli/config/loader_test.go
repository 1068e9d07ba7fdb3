package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ".sqljudge/cache", cfg.CacheDir)
	assert.Equal(t, "frequency", cfg.Strategy)
	assert.Equal(t, "tolerant", cfg.Predicate)
	assert.Equal(t, int64(12345), cfg.Seed)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.InDelta(t, 1e-3, cfg.NumericTolerance, 1e-12)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqljudge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache_dir: /var/cache/sqljudge
strategy: size
credentials:
  - key-1
  - key-2
store:
  type: duckdb
  path: /data/eval.duckdb
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/sqljudge", cfg.CacheDir)
	assert.Equal(t, "size", cfg.Strategy)
	assert.Equal(t, []string{"key-1", "key-2"}, cfg.Credentials)
	assert.Equal(t, "duckdb", cfg.Store.Type)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqljudge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy: size\n"), 0o644))

	t.Setenv("SQLJUDGE_STRATEGY", "density")
	t.Setenv("SQLJUDGE_STORE__TYPE", "postgres")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "density", cfg.Strategy)
	assert.Equal(t, "postgres", cfg.Store.Type)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	t.Setenv("SQLJUDGE_STRATEGY", "density")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("strategy", "", "")
	flags.String("cache-dir", "", "")
	require.NoError(t, flags.Parse([]string{"--strategy=random", "--cache-dir=/tmp/c"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "random", cfg.Strategy, "flags win over environment")
	assert.Equal(t, "/tmp/c", cfg.CacheDir, "dashed flag names map onto underscore keys")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Strategy = "majority"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Predicate = "exact"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.QueryTimeoutSeconds = -1
	require.Error(t, cfg.Validate())
}
