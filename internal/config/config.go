// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreCSV      = "csv"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds the runtime settings read from the environment and .env.
type Config struct {
	Addr              string   `mapstructure:"ADDR"`
	Env               string   `mapstructure:"ENV"`
	LogLevel          string   `mapstructure:"LOG_LEVEL"`
	Store             string   `mapstructure:"STORE"`
	DatasetPath       string   `mapstructure:"DATASET_PATH"`
	SQLitePath        string   `mapstructure:"SQLITE_PATH"`
	DatabaseURL       string   `mapstructure:"DATABASE_URL"`
	DatasetSamples    int      `mapstructure:"DATASET_SAMPLES"`
	DatasetSeed       uint64   `mapstructure:"DATASET_SEED"`
	Clusters          int      `mapstructure:"CLUSTERS"`
	ClusterSeed       uint64   `mapstructure:"CLUSTER_SEED"`
	ClusterRestarts   int      `mapstructure:"CLUSTER_RESTARTS"`
	GenerateIfMissing bool     `mapstructure:"GENERATE_IF_MISSING"`
	AdminKeyHash      string   `mapstructure:"ADMIN_KEY_HASH"`
	CORSOrigins       []string `mapstructure:"CORS_ORIGINS"`
	MaxUploadMB       int      `mapstructure:"MAX_UPLOAD_MB"`
}

var keys = []string{
	"ADDR", "ENV", "LOG_LEVEL", "STORE", "DATASET_PATH", "SQLITE_PATH", "DATABASE_URL",
	"DATASET_SAMPLES", "DATASET_SEED", "CLUSTERS", "CLUSTER_SEED", "CLUSTER_RESTARTS",
	"GENERATE_IF_MISSING", "ADMIN_KEY_HASH", "CORS_ORIGINS", "MAX_UPLOAD_MB",
}

// Load reads .env when present, overlays environment variables, applies
// defaults and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE", StoreCSV)
	v.SetDefault("DATASET_PATH", "indian_diet_dataset.csv")
	v.SetDefault("SQLITE_PATH", "labdiet.db")
	v.SetDefault("DATASET_SAMPLES", 2000)
	v.SetDefault("DATASET_SEED", 42)
	v.SetDefault("CLUSTERS", 5)
	v.SetDefault("CLUSTER_SEED", 42)
	v.SetDefault("CLUSTER_RESTARTS", 10)
	v.SetDefault("GENERATE_IF_MISSING", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MAX_UPLOAD_MB", 20)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreMemory, StoreCSV, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE %q (want memory, csv, sqlite or postgres)", c.Store)
	}
	if c.DatasetSamples <= 0 {
		return fmt.Errorf("DATASET_SAMPLES must be > 0, got %d", c.DatasetSamples)
	}
	if c.Clusters <= 0 {
		return fmt.Errorf("CLUSTERS must be > 0, got %d", c.Clusters)
	}
	if c.ClusterRestarts <= 0 {
		return fmt.Errorf("CLUSTER_RESTARTS must be > 0, got %d", c.ClusterRestarts)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be > 0, got %d", c.MaxUploadMB)
	}
	return nil
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
