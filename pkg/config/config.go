// Package config loads the xcircuit daemon's process configuration from
// named environment variables, with explicit defaults for local runs.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all process-level configuration for cmd/xcircuitd.
type Config struct {
	// ListenAddr is unused while the daemon has no host-facing RPC
	// surface of its own, but is kept so a future thin admin/debug
	// listener has a home without another env var sweep.
	ListenAddr string
	LogLevel   string

	// DataDir is the base directory for the KV backend's files.
	DataDir string
	// DBBackend names the cometbft-db backend ("goleveldb", "memdb",
	// "badgerdb", ...) used to open the store.
	DBBackend string
	DBName    string

	// XdnsSeedPath optionally points at a YAML fixture of target
	// directory records loaded at startup, ahead of any live
	// registrations (pkg/xdns.Directory.LoadSeed).
	XdnsSeedPath string

	// VaultAccount and TreasuryAccount are hex-encoded account ids; see
	// pkg/ledger.Config.
	VaultAccount    string
	TreasuryAccount string

	// TimeoutSweepInterval is how often the daemon scans for XTXs past
	// their timeouts_at height and forces RevertTimedOut.
	TimeoutSweepInterval time.Duration

	// EpochLength is read from XCIRCUIT_EPOCH_LENGTH. Nothing in the
	// daemon consumes it: pkg/headerverifier always rotates validators on
	// its own fixed EpochLength constant of 200.
	EpochLength uint64
}

// Load reads Config from the environment, applying the defaults below
// for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:           getEnv("XCIRCUIT_LISTEN_ADDR", ":8090"),
		LogLevel:             getEnv("XCIRCUIT_LOG_LEVEL", "info"),
		DataDir:              getEnv("XCIRCUIT_DATA_DIR", "./data"),
		DBBackend:            getEnv("XCIRCUIT_DB_BACKEND", "goleveldb"),
		DBName:               getEnv("XCIRCUIT_DB_NAME", "xcircuit"),
		XdnsSeedPath:         getEnv("XCIRCUIT_XDNS_SEED", ""),
		VaultAccount:         getEnv("XCIRCUIT_VAULT_ACCOUNT", "0x0000000000000000000000000000000000000001"),
		TreasuryAccount:      getEnv("XCIRCUIT_TREASURY_ACCOUNT", "0x0000000000000000000000000000000000000002"),
		TimeoutSweepInterval: getEnvDuration("XCIRCUIT_TIMEOUT_SWEEP_INTERVAL", 6*time.Second),
		EpochLength:          uint64(getEnvInt("XCIRCUIT_EPOCH_LENGTH", 200)),
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
