package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Screener.Workers != 4 || cfg.Screener.CacheTTLSeconds != 300 {
		t.Fatalf("screener defaults = %+v", cfg.Screener)
	}
	if cfg.Backtest.InitialCapital != 100_000_000 {
		t.Fatalf("initial capital = %f", cfg.Backtest.InitialCapital)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("log level = %s", cfg.Logging.Level)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("server:\n  port: 9100\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9100 {
		t.Fatalf("port = %d, want file value", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("level = %s, env must beat file", cfg.Logging.Level)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr = %s", cfg.Redis.Addr)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "0.0.0.0", Port: 8081}}
	if got := cfg.Address(); got != "0.0.0.0:8081" {
		t.Fatalf("address = %s", got)
	}
}
