// Copyright 2025 Certen Protocol
//
// KV Adapter for CometBFT Database Integration
// Wraps CometBFT's dbm.DB behind the minimal Get/Set contract the
// circuit's storage-backed packages (xtx, xdns, ledger, headerverifier)
// each declare locally.

package kvdb

import (
	dbm "github.com/cometbft/cometbft-db"
)

// KVAdapter wraps a CometBFT dbm.DB and satisfies the narrow KV
// interface every circuit package declares for itself: the XTX engine's
// signal/steps/deposit maps, the XDNS record store, the ledger's
// idempotency markers, and the header verifier's header/validator-set
// double maps all persist through one shared backend.
type KVAdapter struct {
	db dbm.DB
}

// NewKVAdapter creates a new KVAdapter for the given underlying DB.
func NewKVAdapter(db dbm.DB) *KVAdapter {
	return &KVAdapter{db: db}
}

// Get returns the stored value for key, or nil when absent. Every
// consumer treats a nil value as "not present", so the not-found case
// is never an error here.
func (a *KVAdapter) Get(key []byte) ([]byte, error) {
	if a.db == nil {
		return nil, nil
	}
	return a.db.Get(key)
}

// Set writes key to value. SetSync makes each write durable before Set
// returns. Writes are not batched: the several keys one engine apply step
// writes become durable one at a time.
func (a *KVAdapter) Set(key, value []byte) error {
	if a.db == nil {
		return nil
	}
	return a.db.SetSync(key, value)
}
