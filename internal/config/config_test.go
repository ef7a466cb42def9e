package config

import (
	"testing"
	"time"
)

func TestLoadServeDefaults(t *testing.T) {
	cfg, err := LoadServe("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Listen != ":8080" {
		t.Fatalf("default listen: %q", cfg.Listen)
	}
	if cfg.CacheTTL != 120*time.Second {
		t.Fatalf("default cache ttl: %v", cfg.CacheTTL)
	}
	if cfg.MaxConcurrentReads != 12 {
		t.Fatalf("default max concurrent reads: %d", cfg.MaxConcurrentReads)
	}
	if cfg.RPCMaxRetries != 2 {
		t.Fatalf("default rpc max retries: %d", cfg.RPCMaxRetries)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("default log level: %q", cfg.LogLevel)
	}
}

func TestLoadServeEnvOverride(t *testing.T) {
	t.Setenv("POSITIONSCOPE_LISTEN", ":9999")
	t.Setenv("POSITIONSCOPE_RPC", "https://rpc.example.org")
	t.Setenv("POSITIONSCOPE_CACHE_TTL", "30s")

	cfg, err := LoadServe("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Listen != ":9999" {
		t.Fatalf("env listen: %q", cfg.Listen)
	}
	if cfg.RPCURL != "https://rpc.example.org" {
		t.Fatalf("env rpc: %q", cfg.RPCURL)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("env cache ttl: %v", cfg.CacheTTL)
	}
}

func TestLoadServeMissingExplicitFile(t *testing.T) {
	if _, err := LoadServe("/does/not/exist.yaml", nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
