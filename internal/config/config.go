// Package config loads engine configuration: a YAML file layered under
// environment overrides, with working defaults when neither is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the engine's full runtime configuration.
type Config struct {
	// DatabaseURL selects the Postgres snapshot/backtest/params store.
	// Empty runs everything in memory.
	DatabaseURL string `yaml:"database_url"`

	// RedisAddr enables the snapshot read-through cache. Empty disables it.
	RedisAddr string        `yaml:"redis_addr"`
	RedisTTL  time.Duration `yaml:"redis_ttl"`

	// WeightsPath points at the weight-profile YAML document. Empty uses
	// the embedded defaults.
	WeightsPath string        `yaml:"weights_path"`
	WeightsTTL  time.Duration `yaml:"weights_ttl"`

	// FixturePath serves every provider from one JSON document, for
	// offline runs. Required until live provider integrations land.
	FixturePath string `yaml:"fixture_path"`

	// Provider guard tuning.
	ProviderRPS     float64       `yaml:"provider_rps"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`

	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

func defaults() Config {
	return Config{
		RedisTTL:        24 * time.Hour,
		WeightsTTL:      10 * time.Minute,
		ProviderRPS:     10,
		ProviderTimeout: 5 * time.Second,
		LogLevel:        "info",
		MetricsAddr:     ":9090",
	}
}

// Load reads the config file at path (optional, "" skips it) and applies
// LEAGUERANK_* environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("LEAGUERANK_DATABASE_URL", &cfg.DatabaseURL)
	setString("LEAGUERANK_REDIS_ADDR", &cfg.RedisAddr)
	setString("LEAGUERANK_WEIGHTS_PATH", &cfg.WeightsPath)
	setString("LEAGUERANK_FIXTURE_PATH", &cfg.FixturePath)
	setString("LEAGUERANK_LOG_LEVEL", &cfg.LogLevel)
	setString("LEAGUERANK_METRICS_ADDR", &cfg.MetricsAddr)

	if v, ok := os.LookupEnv("LEAGUERANK_PROVIDER_RPS"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.ProviderRPS = f
		}
	}
	if v, ok := os.LookupEnv("LEAGUERANK_PROVIDER_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ProviderTimeout = d
		}
	}
	if v, ok := os.LookupEnv("LEAGUERANK_REDIS_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RedisTTL = d
		}
	}
}
