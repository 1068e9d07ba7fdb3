// Package config loads CLI configuration the usual way: built-in defaults,
// then sqljudge.yaml, then SQLJUDGE_* environment variables, then flags.
package config

import (
	"fmt"

	"github.com/leapstack-labs/sqljudge/internal/store"
)

// Config holds all CLI configuration options.
type Config struct {
	// CacheDir is where query results are memoized.
	CacheDir string `koanf:"cache_dir"`

	// CacheReadOnly stops the cache from recording new entries.
	CacheReadOnly bool `koanf:"cache_read_only"`

	// ResultsDir receives run summaries.
	ResultsDir string `koanf:"results_dir"`

	// QuestionTimeoutSeconds is the hard per-question budget.
	QuestionTimeoutSeconds int `koanf:"question_timeout_seconds"`

	// QueryTimeoutSeconds bounds one raw query execution.
	QueryTimeoutSeconds int `koanf:"query_timeout_seconds"`

	// Credentials are execution credentials, assigned round-robin.
	Credentials []string `koanf:"credentials"`

	// WorkersPerCredential sizes the pool: credentials × this multiplier.
	WorkersPerCredential int `koanf:"workers_per_credential"`

	// Strategy picks the consensus scoring: frequency, size, density,
	// random.
	Strategy string `koanf:"strategy"`

	// Predicate picks the pairwise agreement judge: tolerant, bag,
	// multiset.
	Predicate string `koanf:"predicate"`

	// Seed fixes the tie-break RNG.
	Seed int64 `koanf:"seed"`

	// Comparison knobs.
	NumericTolerance float64 `koanf:"numeric_tolerance"`
	RoundDecimals    int     `koanf:"round_decimals"`
	NumericThreshold float64 `koanf:"numeric_threshold"`

	// Store is the default store for questions that don't set one.
	Store store.Config `koanf:"store"`

	Verbose bool `koanf:"verbose"`
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Strategy {
	case "", "frequency", "size", "density", "random":
	default:
		return fmt.Errorf("invalid strategy %q (want frequency, size, density or random)", c.Strategy)
	}
	switch c.Predicate {
	case "", "tolerant", "bag", "multiset":
	default:
		return fmt.Errorf("invalid predicate %q (want tolerant, bag or multiset)", c.Predicate)
	}
	if c.QuestionTimeoutSeconds < 0 || c.QueryTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.WorkersPerCredential < 0 {
		return fmt.Errorf("workers_per_credential must not be negative")
	}
	return nil
}
