// Package coreconfig loads substrate-core process configuration the way the
// organization's other Go services do: envdecode-tagged structs, an
// optional .env file in non-production, and a YAML override for anything
// too structured for environment variables.
package coreconfig

import (
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ExpressionConfig bounds the expression mini-language sandbox.
type ExpressionConfig struct {
	MaxSourceBytes       int `json:"max_source_bytes" env:"EXPRESSION_MAX_SOURCE_BYTES"`
	InterruptMillis      int `json:"interrupt_millis" env:"EXPRESSION_INTERRUPT_MILLIS"`
	DeterminismSamplePct int `json:"determinism_sample_pct" env:"EXPRESSION_DETERMINISM_SAMPLE_PCT"`
}

// GraphConfig bounds relationship graph sharding and traversal.
type GraphConfig struct {
	ShardCount   int `json:"shard_count" env:"GRAPH_SHARD_COUNT"`
	MaxPathSteps int `json:"max_path_steps" env:"GRAPH_MAX_PATH_STEPS"`
}

// SeedConfig bounds seed loading and relationship resolution.
type SeedConfig struct {
	Directory string `json:"directory" env:"SEED_DIRECTORY"`
	MaxDepth  int    `json:"max_depth" env:"SEED_MAX_DEPTH"`
}

// SRLConfig controls credential encryption, fetch rate limits, and the
// reconnection sweep.
type SRLConfig struct {
	MasterKeyEnv       string  `json:"master_key_env" env:"SRL_MASTER_KEY_ENV"`
	PBKDF2Iterations   int     `json:"pbkdf2_iterations" env:"SRL_PBKDF2_ITERATIONS"`
	FailureThreshold   int     `json:"failure_threshold" env:"SRL_FAILURE_THRESHOLD"`
	ReconnectInterval  string  `json:"reconnect_interval" env:"SRL_RECONNECT_INTERVAL"`
	FetchRatePerSecond float64 `json:"fetch_rate_per_second" env:"SRL_FETCH_RATE_PER_SECOND"`
	FetchBurst         int     `json:"fetch_burst" env:"SRL_FETCH_BURST"`
}

// LoggingConfig controls obslog.
type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL"`
	Format string `json:"format" env:"LOG_FORMAT"`
}

// DatabaseConfig controls the optional persistence mirror.
type DatabaseConfig struct {
	DSN            string `json:"dsn" env:"DATABASE_DSN"`
	MaxOpenConns   int    `json:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns   int    `json:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	MigrateOnStart bool   `json:"migrate_on_start" env:"DATABASE_MIGRATE_ON_START"`
}

// Config is the top-level process configuration.
type Config struct {
	Expression ExpressionConfig `json:"expression"`
	Graph      GraphConfig      `json:"graph"`
	Seed       SeedConfig       `json:"seed"`
	SRL        SRLConfig        `json:"srl"`
	Logging    LoggingConfig    `json:"logging"`
	Database   DatabaseConfig   `json:"database"`
}

// Defaults returns a Config populated with the values this core ships with
// out of the box, mirroring pkg/config.New()'s role of seeding defaults
// before environment overlay.
func Defaults() *Config {
	return &Config{
		Expression: ExpressionConfig{
			MaxSourceBytes:       4096,
			InterruptMillis:      50,
			DeterminismSamplePct: 5,
		},
		Graph: GraphConfig{
			ShardCount:   16,
			MaxPathSteps: 10000,
		},
		Seed: SeedConfig{
			Directory: "seeds",
			MaxDepth:  64,
		},
		SRL: SRLConfig{
			MasterKeyEnv:       "SRL_MASTER_KEY",
			PBKDF2Iterations:   100000,
			FailureThreshold:   5,
			ReconnectInterval:  "@every 1m",
			FetchRatePerSecond: 20,
			FetchBurst:         40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
	}
}

// Load builds a Config from Defaults(), overlaid with any environment
// variables present, first loading a .env file if one exists (mirroring
// pkg/config's godotenv handling).
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	cfg := Defaults()
	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("coreconfig: decode environment: %w", err)
	}
	return cfg, nil
}

// ApplyYAMLOverride merges a YAML file on top of cfg for settings that are
// awkward to express as environment variables (e.g. seed directory layout
// shared across a fleet of gateways).
func ApplyYAMLOverride(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("coreconfig: read override %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("coreconfig: parse override %s: %w", path, err)
	}
	return nil
}
