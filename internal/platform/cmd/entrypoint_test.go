package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Address    string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8082"`
	BackendURL string `env:"CMD_TEST_BACKEND_URL" envDefault:"http://localhost:8081"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("CMD_TEST_BACKEND_URL", "http://backend:8081")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.Address, "address", cfg.Address, "address")
	fs.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "backend url")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Address != "flag:9001" {
		t.Fatalf("Address = %q, want flag value", cfg.Address)
	}
	if cfg.BackendURL != "http://backend:8081" {
		t.Fatalf("BackendURL = %q, want env value", cfg.BackendURL)
	}
}

func TestParseConfigFromArgsAppliesEnvThenFlags(t *testing.T) {
	t.Setenv("CMD_TEST_BACKEND_URL", "http://backend:8081")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	fs.StringVar(&cfg.Address, "address", "", "address")
	fs.StringVar(&cfg.BackendURL, "backend-url", "", "backend url")

	if err := ParseConfigFromArgs(&cfg, fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Address != "flag:9001" {
		t.Fatalf("Address = %q, want flag value", cfg.Address)
	}
	if cfg.BackendURL != "http://backend:8081" {
		t.Fatalf("BackendURL = %q, want env value", cfg.BackendURL)
	}

	defaults := testConfig{}
	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.StringVar(&defaults.Address, "address", "", "address")
	if err := ParseConfigFromArgs(&defaults, fs, nil); err != nil {
		t.Fatalf("parse defaults: %v", err)
	}
	if defaults.Address != "127.0.0.1:8082" {
		t.Fatalf("Address = %q, want env default", defaults.Address)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target to be rejected")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceDashboard, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("TICKETDESK_OTEL_ENDPOINT", "")
	want := errors.New("boom")

	err := RunWithTelemetry(context.Background(), ServiceDashboard, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
