package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/sqljudge/internal/compare"
	"github.com/leapstack-labs/sqljudge/internal/consensus"
	"github.com/leapstack-labs/sqljudge/internal/harness"
	"github.com/leapstack-labs/sqljudge/internal/normalize"
	"github.com/leapstack-labs/sqljudge/internal/store"
)

// configFileUsed tracks which file the last load read, for --verbose output.
var configFileUsed string

// defaults are the built-in configuration values, overridden by file, env
// and flags in that order.
func defaults() map[string]any {
	return map[string]any{
		"cache_dir":                ".sqljudge/cache",
		"results_dir":              ".sqljudge/results",
		"question_timeout_seconds": int(harness.DefaultQuestionTimeout.Seconds()),
		"query_timeout_seconds":    int(store.DefaultQueryTimeout.Seconds()),
		"workers_per_credential":   harness.DefaultWorkersPerCredential,
		"strategy":                 "frequency",
		"predicate":                "tolerant",
		"seed":                     int64(consensus.DefaultSeed),
		"numeric_tolerance":        compare.DefaultNumericTolerance,
		"round_decimals":           compare.DefaultRoundDecimals,
		"numeric_threshold":        normalize.DefaultNumericThreshold,
		"store.type":               "sqlite",
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > sqljudge.yaml > sqljudge.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"sqljudge.yaml", "sqljudge.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load assembles the configuration from defaults, the config file, the
// environment and CLI flags, then validates it.
func Load(explicitFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = ""
	if path := findConfigFile(explicitFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		configFileUsed = path
	}

	// SQLJUDGE_CACHE_DIR → cache_dir, SQLJUDGE_STORE__TYPE → store.type.
	err := k.Load(env.Provider("SQLJUDGE_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "SQLJUDGE_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration, untouched by file, env or
// flags.
func Default() *Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}

// GetConfigFileUsed returns the path of the config file the last Load read,
// or "" when only defaults/env/flags applied.
func GetConfigFileUsed() string {
	return configFileUsed
}
