// Command xcircuitd runs the cross-chain execution circuit as a single
// standalone process: it opens the KV store, wires the side-effect
// registry, XDNS target directory, header verifier, insurance/reward
// ledger, XTX engine, and confirmation ingress together, optionally seeds
// XDNS from a YAML fixture, and then runs an end-of-block timeout sweep
// on a fixed interval until signaled to stop.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/certen/xcircuit/pkg/config"
	"github.com/certen/xcircuit/pkg/headerverifier"
	"github.com/certen/xcircuit/pkg/ingress"
	"github.com/certen/xcircuit/pkg/kvdb"
	"github.com/certen/xcircuit/pkg/ledger"
	"github.com/certen/xcircuit/pkg/registry"
	"github.com/certen/xcircuit/pkg/xdns"
	"github.com/certen/xcircuit/pkg/xtx"
)

func main() {
	logger := log.New(os.Stdout, "[xcircuitd] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatalf("create data dir %s: %v", cfg.DataDir, err)
	}
	backend, err := dbm.NewDB(cfg.DBName, dbm.BackendType(cfg.DBBackend), cfg.DataDir)
	if err != nil {
		logger.Fatalf("open %s database at %s: %v", cfg.DBBackend, cfg.DataDir, err)
	}
	defer backend.Close()
	kv := kvdb.NewKVAdapter(backend)

	reg := registry.NewDefaultRegistry()
	dir := xdns.NewDirectory(kv)
	if cfg.XdnsSeedPath != "" {
		n, err := dir.LoadSeed(cfg.XdnsSeedPath)
		if err != nil {
			logger.Fatalf("load xdns seed %s: %v", cfg.XdnsSeedPath, err)
		}
		logger.Printf("loaded %d xdns record(s) from %s", n, cfg.XdnsSeedPath)
	}

	store := headerverifier.NewStore(kv)
	verifier := headerverifier.NewVerifier(store)

	vault, err := decodeAccount(cfg.VaultAccount)
	if err != nil {
		logger.Fatalf("vault account: %v", err)
	}
	treasury, err := decodeAccount(cfg.TreasuryAccount)
	if err != nil {
		logger.Fatalf("treasury account: %v", err)
	}
	led := ledger.NewLedger(kv, noopBalances{}, ledger.Config{Vault: vault, Treasury: treasury})

	engine := xtx.NewEngine(kv, reg, dir, led, nil)
	confirmations := ingress.New(reg, dir, verifier, engine)
	_ = confirmations // wired for a future host-facing RPC surface; exercised directly by tests today

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Printf("xcircuitd started: data_dir=%s db_backend=%s sweep_interval=%s", cfg.DataDir, cfg.DBBackend, cfg.TimeoutSweepInterval)
	runSweepLoop(ctx, logger, engine, cfg.TimeoutSweepInterval)
	logger.Printf("xcircuitd stopped")
}

// decodeAccount accepts an optional 0x-prefixed hex account id.
func decodeAccount(s string) ([]byte, error) {
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex account %q: %w", s, err)
	}
	return b, nil
}

// runSweepLoop drives the engine's DueForTimeout/SweepTimeouts pair on a
// fixed interval until ctx is canceled. The current height is a simple
// wall-clock proxy here; a real host block height feed belongs wherever
// xcircuitd is embedded in that host's block production loop.
func runSweepLoop(ctx context.Context, logger *log.Logger, engine *xtx.Engine, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	started := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			height := uint64(time.Since(started) / time.Second)
			due, err := engine.DueForTimeout(height)
			if err != nil {
				logger.Printf("scan due timeouts: %v", err)
				continue
			}
			for _, xtxID := range due {
				if err := engine.SweepTimeouts(xtxID, height); err != nil {
					logger.Printf("sweep timeout for xtx %x: %v", xtxID, err)
				}
			}
		}
	}
}

// noopBalances is a placeholder ledger.Balances until the daemon is wired
// to a real host balances collaborator.
type noopBalances struct{}

func (noopBalances) Transfer(from, to []byte, amount *big.Int) error { return nil }

func (noopBalances) TransferAsset(assetID uint32, from, to []byte, amount *big.Int) error {
	return nil
}
