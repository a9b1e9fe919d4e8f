package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port        int           `env:"CARTSIDE_TEST_PORT" envDefault:"123"`
	SettleDelay time.Duration `env:"CARTSIDE_TEST_SETTLE_DELAY" envDefault:"300ms"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.SettleDelay != 300*time.Millisecond {
		t.Fatalf("expected default settle delay 300ms, got %v", cfg.SettleDelay)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CARTSIDE_TEST_SETTLE_DELAY", "1s")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.SettleDelay != time.Second {
		t.Fatalf("expected overridden settle delay 1s, got %v", cfg.SettleDelay)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CARTSIDE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
