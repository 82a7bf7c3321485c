// Package config loads application configuration from a YAML file with
// environment variable overrides. Every field has a usable default so the
// server starts with no config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Screener ScreenerConfig `yaml:"screener"`
	Backtest BacktestConfig `yaml:"backtest"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig points at the PostgreSQL instance used for persisting
// backtest runs and screener snapshots. Empty URL disables persistence.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig points at the cache. Empty address disables caching; every
// caller degrades gracefully without it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ScreenerConfig struct {
	Enabled bool `yaml:"enabled"`
	// DataDir holds per-symbol OHLCV CSV files supplied by the caller.
	DataDir string `yaml:"data_dir"`
	// Cron is a standard 5-field schedule for periodic re-screens.
	Cron string `yaml:"cron"`
	// Workers bounds concurrent symbol scoring.
	Workers int `yaml:"workers"`
	// CacheTTLSeconds ages out in-memory screen results.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type BacktestConfig struct {
	InitialCapital  float64 `yaml:"initial_capital"`
	StopLossPercent float64 `yaml:"stop_loss_percent"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides, then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("SCREENER_ENABLED"); v != "" {
		cfg.Screener.Enabled = v == "true"
	}
	if v := os.Getenv("SCREENER_DATA_DIR"); v != "" {
		cfg.Screener.DataDir = v
	}
	if v := os.Getenv("SCREENER_CRON"); v != "" {
		cfg.Screener.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		cfg.Logging.Pretty = v == "true"
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Screener.DataDir == "" {
		cfg.Screener.DataDir = "data"
	}
	if cfg.Screener.Cron == "" {
		// Every 15 minutes during the IDX trading day.
		cfg.Screener.Cron = "*/15 9-16 * * 1-5"
	}
	if cfg.Screener.Workers <= 0 {
		cfg.Screener.Workers = 4
	}
	if cfg.Screener.CacheTTLSeconds <= 0 {
		cfg.Screener.CacheTTLSeconds = 300
	}
	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = 100_000_000
	}
	if cfg.Backtest.StopLossPercent <= 0 {
		cfg.Backtest.StopLossPercent = 0.02
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Address is the server listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
