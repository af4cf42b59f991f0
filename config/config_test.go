package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Addr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.WorkerCount <= 0 {
		t.Errorf("expected positive default worker count, got %d", cfg.WorkerCount)
	}
	if cfg.MessageTTL() != 10*time.Second {
		t.Errorf("expected default message ttl 10s, got %s", cfg.MessageTTL())
	}
	if cfg.RegistryTTL() != 0 {
		t.Errorf("expected eviction disabled by default, got %s", cfg.RegistryTTL())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CERTFLOW_ADDR", ":9090")
	t.Setenv("CERTFLOW_LOG_LEVEL", "debug")
	t.Setenv("CERTFLOW_WORKER_COUNT", "3")
	t.Setenv("CERTFLOW_REGISTRY_TTL_MS", "1800000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("expected worker count 3, got %d", cfg.WorkerCount)
	}
	if cfg.RegistryTTL() != 30*time.Minute {
		t.Errorf("expected registry ttl 30m, got %s", cfg.RegistryTTL())
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certflow.yaml")
	body := "addr: \":7070\"\nlog_level: warn\nmessage_ttl_ms: 5000\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CERTFLOW_CONFIG", path)
	t.Setenv("CERTFLOW_LOG_LEVEL", "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("expected addr from file, got %s", cfg.Addr)
	}
	if cfg.MessageTTL() != 5*time.Second {
		t.Errorf("expected message ttl from file, got %s", cfg.MessageTTL())
	}
	if cfg.LogLevel != "error" {
		t.Errorf("env must override file, got %s", cfg.LogLevel)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("CERTFLOW_WORKER_COUNT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero worker count")
	}
}
