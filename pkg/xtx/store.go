// Copyright 2025 Certen Protocol
//
// XTX Storage and Atomic Apply

package xtx

import (
	"encoding/json"
	"fmt"

	"github.com/certen/xcircuit/pkg/sidefx"
)

var (
	keySignalPrefix  = []byte("xtx:signal:")
	keyStepsPrefix   = []byte("xtx:steps:")
	keyDepositPrefix = []byte("xtx:ins:") // + xtx_id + sfx_id -> InsuranceDeposit
	keyLinksPrefix   = []byte("xtx:inslink:")
	keyOpenIndex     = []byte("xtx:open")
)

func signalKey(id [32]byte) []byte { return append(append([]byte{}, keySignalPrefix...), id[:]...) }
func stepsKey(id [32]byte) []byte  { return append(append([]byte{}, keyStepsPrefix...), id[:]...) }
func linksKey(id [32]byte) []byte  { return append(append([]byte{}, keyLinksPrefix...), id[:]...) }
func depositKey(xtxID, sfxID [32]byte) []byte {
	k := append([]byte{}, keyDepositPrefix...)
	k = append(k, xtxID[:]...)
	return append(k, sfxID[:]...)
}

// localCtx is the in-memory working copy of an XTX's state, mutated by a
// public operation and committed in a single call to apply. Every
// operation loads (or builds) a localCtx, mutates it freely, and only
// apply persists the FSX vector, the insurance-deposit map, the
// insurance-links index, and the status together, so an operation that
// fails before apply leaves no partial state behind.
type localCtx struct {
	xtx      sidefx.XTX
	deposits map[[32]byte]*sidefx.InsuranceDeposit // keyed by sfx_id
	links    [][32]byte                            // sfx_ids requiring insurance, in order
}

func (e *Engine) loadCtx(xtxID [32]byte) (*localCtx, error) {
	sb, err := e.kv.Get(signalKey(xtxID))
	if err != nil {
		return nil, fmt.Errorf("load xtx signal: %w", err)
	}
	if len(sb) == 0 {
		return nil, sidefx.ErrXtxNotFound
	}
	var sig signal
	if err := json.Unmarshal(sb, &sig); err != nil {
		return nil, fmt.Errorf("decode xtx signal: %w", err)
	}

	stb, err := e.kv.Get(stepsKey(xtxID))
	if err != nil {
		return nil, fmt.Errorf("load xtx steps: %w", err)
	}
	var steps [][]sidefx.FSX
	if len(stb) > 0 {
		if err := json.Unmarshal(stb, &steps); err != nil {
			return nil, fmt.Errorf("decode xtx steps: %w", err)
		}
	}

	lb, err := e.kv.Get(linksKey(xtxID))
	if err != nil {
		return nil, fmt.Errorf("load xtx insurance links: %w", err)
	}
	var linkIDs [][32]byte
	if len(lb) > 0 {
		if err := json.Unmarshal(lb, &linkIDs); err != nil {
			return nil, fmt.Errorf("decode xtx insurance links: %w", err)
		}
	}

	deposits := make(map[[32]byte]*sidefx.InsuranceDeposit, len(linkIDs))
	for _, sfxID := range linkIDs {
		db, err := e.kv.Get(depositKey(xtxID, sfxID))
		if err != nil {
			return nil, fmt.Errorf("load insurance deposit: %w", err)
		}
		if len(db) == 0 {
			continue
		}
		var dep sidefx.InsuranceDeposit
		if err := json.Unmarshal(db, &dep); err != nil {
			return nil, fmt.Errorf("decode insurance deposit: %w", err)
		}
		deposits[sfxID] = &dep
	}

	return &localCtx{
		xtx: sidefx.XTX{
			ID:            sig.ID,
			Requester:     sig.Requester,
			Nonce:         sig.Nonce,
			Reward:        sig.Reward,
			TimeoutsAt:    sig.TimeoutsAt,
			DelayStepsAt:  sig.DelayStepsAt,
			Status:        sig.Status,
			Sequential:    sig.Sequential,
			Steps:         steps,
			CreatedHeight: sig.CreatedHeight,
		},
		deposits: deposits,
		links:    linkIDs,
	}, nil
}

// loadOpenIndex returns the persisted map of non-terminal XTX ids to their
// declared timeouts_at height. Per-target iteration is not guaranteed by
// the minimal KV contract (the same constraint xdns's `known` set works
// around), so this index is the only way a host can discover which XTXs
// are due for a timeout sweep without replaying every signal key.
func (e *Engine) loadOpenIndex() (map[[32]byte]uint64, error) {
	b, err := e.kv.Get(keyOpenIndex)
	if err != nil {
		return nil, fmt.Errorf("load open xtx index: %w", err)
	}
	out := make(map[[32]byte]uint64)
	if len(b) == 0 {
		return out, nil
	}
	var entries []openEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode open xtx index: %w", err)
	}
	for _, e := range entries {
		out[e.ID] = e.TimeoutsAt
	}
	return out, nil
}

func (e *Engine) saveOpenIndex(idx map[[32]byte]uint64) error {
	entries := make([]openEntry, 0, len(idx))
	for id, t := range idx {
		entries = append(entries, openEntry{ID: id, TimeoutsAt: t})
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode open xtx index: %w", err)
	}
	return e.kv.Set(keyOpenIndex, b)
}

type openEntry struct {
	ID         [32]byte `json:"id"`
	TimeoutsAt uint64   `json:"timeouts_at"`
}

// updateOpenIndex keeps the open-xtx index in sync with ctx's terminal
// status: present (with its timeouts_at) while non-terminal, absent once
// Finished.
func (e *Engine) updateOpenIndex(ctx *localCtx) error {
	idx, err := e.loadOpenIndex()
	if err != nil {
		return err
	}
	if ctx.xtx.Status.IsTerminal() {
		delete(idx, ctx.xtx.ID)
	} else {
		idx[ctx.xtx.ID] = ctx.xtx.TimeoutsAt
	}
	return e.saveOpenIndex(idx)
}

// DueForTimeout returns the ids of every still-open XTX whose timeouts_at
// height has passed, for a host to drive through SweepTimeouts.
func (e *Engine) DueForTimeout(currentHeight uint64) ([][32]byte, error) {
	idx, err := e.loadOpenIndex()
	if err != nil {
		return nil, err
	}
	var due [][32]byte
	for id, timeoutsAt := range idx {
		if timeoutsAt > 0 && currentHeight >= timeoutsAt {
			due = append(due, id)
		}
	}
	return due, nil
}

// apply persists every piece of state a transition may have touched: the
// signal (including status), the FSX steps, the links index, each
// insurance deposit, and the open-xtx index. A transition that fails
// before reaching apply leaves no trace. The writes are separate KV Sets
// issued one after another, not a batch: if one fails, the keys written
// before it stay written.
func (e *Engine) apply(ctx *localCtx) error {
	sig := signal{
		ID:            ctx.xtx.ID,
		Requester:     ctx.xtx.Requester,
		Nonce:         ctx.xtx.Nonce,
		Reward:        ctx.xtx.Reward,
		TimeoutsAt:    ctx.xtx.TimeoutsAt,
		DelayStepsAt:  ctx.xtx.DelayStepsAt,
		Status:        ctx.xtx.Status,
		Sequential:    ctx.xtx.Sequential,
		CreatedHeight: ctx.xtx.CreatedHeight,
	}
	sb, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("encode xtx signal: %w", err)
	}
	if err := e.kv.Set(signalKey(ctx.xtx.ID), sb); err != nil {
		return fmt.Errorf("save xtx signal: %w", err)
	}

	stb, err := json.Marshal(ctx.xtx.Steps)
	if err != nil {
		return fmt.Errorf("encode xtx steps: %w", err)
	}
	if err := e.kv.Set(stepsKey(ctx.xtx.ID), stb); err != nil {
		return fmt.Errorf("save xtx steps: %w", err)
	}

	lb, err := json.Marshal(ctx.links)
	if err != nil {
		return fmt.Errorf("encode xtx insurance links: %w", err)
	}
	if err := e.kv.Set(linksKey(ctx.xtx.ID), lb); err != nil {
		return fmt.Errorf("save xtx insurance links: %w", err)
	}

	for sfxID, dep := range ctx.deposits {
		db, err := json.Marshal(dep)
		if err != nil {
			return fmt.Errorf("encode insurance deposit: %w", err)
		}
		if err := e.kv.Set(depositKey(ctx.xtx.ID, sfxID), db); err != nil {
			return fmt.Errorf("save insurance deposit: %w", err)
		}
	}

	return e.updateOpenIndex(ctx)
}

// GetXTX returns a read-only snapshot of an XTX's current state.
func (e *Engine) GetXTX(xtxID [32]byte) (*sidefx.XTX, error) {
	ctx, err := e.loadCtx(xtxID)
	if err != nil {
		return nil, err
	}
	return &ctx.xtx, nil
}

// GetInsuranceDeposit returns the bond record for one side effect.
func (e *Engine) GetInsuranceDeposit(xtxID, sfxID [32]byte) (*sidefx.InsuranceDeposit, error) {
	db, err := e.kv.Get(depositKey(xtxID, sfxID))
	if err != nil {
		return nil, fmt.Errorf("load insurance deposit: %w", err)
	}
	if len(db) == 0 {
		return nil, sidefx.ErrInsuranceNotFound
	}
	var dep sidefx.InsuranceDeposit
	if err := json.Unmarshal(db, &dep); err != nil {
		return nil, fmt.Errorf("decode insurance deposit: %w", err)
	}
	return &dep, nil
}
