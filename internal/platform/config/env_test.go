package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Addr    string        `env:"TICKETDESK_TEST_ADDR" envDefault:":8082"`
	Timeout time.Duration `env:"TICKETDESK_TEST_TIMEOUT" envDefault:"2s"`
	Secure  bool          `env:"TICKETDESK_TEST_SECURE"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8082" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, ":8082")
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", cfg.Timeout)
	}
	if cfg.Secure {
		t.Fatal("expected Secure to default to false")
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("TICKETDESK_TEST_ADDR", "127.0.0.1:9000")
	t.Setenv("TICKETDESK_TEST_SECURE", "true")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, "127.0.0.1:9000")
	}
	if !cfg.Secure {
		t.Fatal("expected Secure to be true")
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TICKETDESK_TEST_TIMEOUT", "soon")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
