// Copyright 2025 Certen Protocol
//
// Target Directory Operations

package xdns

import (
	"encoding/json"
	"fmt"

	"github.com/certen/xcircuit/pkg/registry"
	"github.com/certen/xcircuit/pkg/sidefx"
)

// KV is the minimal key-value storage contract XDNS needs. It is
// satisfied directly by pkg/kvdb.KVAdapter.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

var keyRecordPrefix = []byte("xdns:record:")

func recordKey(target sidefx.TargetID) []byte {
	return append(append([]byte{}, keyRecordPrefix...), target[:]...)
}

// Directory is the KV-backed implementation of the Target Directory.
// XDNS is the sole writer of these records; readers see a consistent
// snapshot because every write replaces the full record atomically.
type Directory struct {
	kv KV
	// known tracks every target ever written, so FetchAll does not need
	// a key-range scan over the underlying KV (cometbft-db's minimal
	// interface does not guarantee one).
	known map[sidefx.TargetID]struct{}
}

// NewDirectory constructs a Directory over the given KV store.
func NewDirectory(kv KV) *Directory {
	return &Directory{kv: kv, known: make(map[sidefx.TargetID]struct{})}
}

func (d *Directory) load(target sidefx.TargetID) (*Record, error) {
	b, err := d.kv.Get(recordKey(target))
	if err != nil {
		return nil, fmt.Errorf("get xdns record: %w", err)
	}
	if len(b) == 0 {
		return nil, ErrUnknownTarget
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal xdns record: %w", err)
	}
	return &rec, nil
}

func (d *Directory) save(rec *Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal xdns record: %w", err)
	}
	if err := d.kv.Set(recordKey(rec.Target), b); err != nil {
		return fmt.Errorf("set xdns record: %w", err)
	}
	d.known[rec.Target] = struct{}{}
	return nil
}

// RegisterGateway adds a new record for a target not previously known.
func (d *Directory) RegisterGateway(rec *Record) error {
	if _, err := d.load(rec.Target); err == nil {
		return fmt.Errorf("%w: target %x", ErrRecordExists, rec.Target)
	} else if err != ErrUnknownTarget {
		return err
	}
	return d.save(rec)
}

// OverrideGateway replaces an existing record wholesale, regardless of
// whether one previously existed.
func (d *Directory) OverrideGateway(rec *Record) error {
	return d.save(rec)
}

// PurgeGatewayRecord removes a target's record. The caller must supply a
// predicate reporting whether every XTX that referenced this target has
// reached a terminal state; purge is rejected otherwise.
func (d *Directory) PurgeGatewayRecord(target sidefx.TargetID, allReferencingXtxFinished func(sidefx.TargetID) bool) error {
	if _, err := d.load(target); err != nil {
		return err
	}
	if allReferencingXtxFinished != nil && !allReferencingXtxFinished(target) {
		return ErrPurgeWhileReference
	}
	delete(d.known, target)
	return d.kv.Set(recordKey(target), nil)
}

// ExtendSfxAbi appends an allowed side effect to an existing record
// without disturbing the rest of its configuration.
func (d *Directory) ExtendSfxAbi(target sidefx.TargetID, allowed AllowedSideEffect) error {
	rec, err := d.load(target)
	if err != nil {
		return err
	}
	rec.AllowedSideEffects = append(rec.AllowedSideEffects, allowed)
	return d.save(rec)
}

// OverrideSfxAbi replaces a record's entire allowed-side-effects list.
func (d *Directory) OverrideSfxAbi(target sidefx.TargetID, allowed []AllowedSideEffect) error {
	rec, err := d.load(target)
	if err != nil {
		return err
	}
	rec.AllowedSideEffects = allowed
	return d.save(rec)
}

// AddEscrowAccount sets a record's escrow account.
func (d *Directory) AddEscrowAccount(target sidefx.TargetID, escrow []byte) error {
	rec, err := d.load(target)
	if err != nil {
		return err
	}
	rec.EscrowAccount = escrow
	return d.save(rec)
}

// FetchAll returns every known record, in no particular order.
func (d *Directory) FetchAll() ([]*Record, error) {
	out := make([]*Record, 0, len(d.known))
	for target := range d.known {
		rec, err := d.load(target)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetVendor returns the verification vendor declared for a target.
func (d *Directory) GetVendor(target sidefx.TargetID) (VerificationVendor, error) {
	rec, err := d.load(target)
	if err != nil {
		return "", err
	}
	return rec.VerificationVendor, nil
}

// GetEscrowAccount returns the escrow account declared for a target.
func (d *Directory) GetEscrowAccount(target sidefx.TargetID) ([]byte, error) {
	rec, err := d.load(target)
	if err != nil {
		return nil, err
	}
	if len(rec.EscrowAccount) == 0 {
		return nil, ErrNoEscrowAccount
	}
	return rec.EscrowAccount, nil
}

// GetABIForSelector returns the gateway ABI config for a target together
// with whether the given selector is permitted there. The XTX engine's
// submission path (OnExtrinsicsTrigger) resolves every side effect's ABI
// through this lookup rather than a hard-coded stub.
func (d *Directory) GetABIForSelector(target sidefx.TargetID, sel sidefx.Selector) (registry.ABIConfig, bool, error) {
	rec, err := d.load(target)
	if err != nil {
		return registry.ABIConfig{}, false, err
	}
	return rec.GatewayABI, rec.Allows(sel), nil
}

// Get returns the full record for a target, for callers that need more
// than one field.
func (d *Directory) Get(target sidefx.TargetID) (*Record, error) {
	return d.load(target)
}
