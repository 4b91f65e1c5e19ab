package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBBackend != "goleveldb" {
		t.Fatalf("expected default db backend goleveldb, got %q", cfg.DBBackend)
	}
	if cfg.EpochLength != 200 {
		t.Fatalf("expected default epoch length 200, got %d", cfg.EpochLength)
	}
	if cfg.TimeoutSweepInterval != 6*time.Second {
		t.Fatalf("expected default sweep interval 6s, got %s", cfg.TimeoutSweepInterval)
	}
}

func TestLoadHonorsEnvOverrides(t *testing.T) {
	t.Setenv("XCIRCUIT_DB_BACKEND", "memdb")
	t.Setenv("XCIRCUIT_EPOCH_LENGTH", "400")
	t.Setenv("XCIRCUIT_TIMEOUT_SWEEP_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBBackend != "memdb" {
		t.Fatalf("expected overridden db backend memdb, got %q", cfg.DBBackend)
	}
	if cfg.EpochLength != 400 {
		t.Fatalf("expected overridden epoch length 400, got %d", cfg.EpochLength)
	}
	if cfg.TimeoutSweepInterval != 30*time.Second {
		t.Fatalf("expected overridden sweep interval 30s, got %s", cfg.TimeoutSweepInterval)
	}
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("XCIRCUIT_EPOCH_LENGTH", "not-a-number")
	t.Setenv("XCIRCUIT_TIMEOUT_SWEEP_INTERVAL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.EpochLength != 200 {
		t.Fatalf("expected malformed epoch length to fall back to default 200, got %d", cfg.EpochLength)
	}
	if cfg.TimeoutSweepInterval != 6*time.Second {
		t.Fatalf("expected malformed sweep interval to fall back to default 6s, got %s", cfg.TimeoutSweepInterval)
	}
}
