// Copyright 2025 Certen Protocol

// Package xtx implements the Composable Transaction Lifecycle Engine
// (component D): the state machine that receives a batch of side
// effects, validates them against the side-effect protocol registry and
// XDNS, escrows funds through the ledger, drives a composable
// transaction through Requested → PendingInsurance → Bonded → Ready →
// Finished{...}, and answers confirmation and timeout sweeps. The XTX
// engine exclusively owns XTX, FSX, and InsuranceDeposit records; every
// other component reads them through the queries below.
package xtx

import (
	"math/big"

	"github.com/certen/xcircuit/pkg/sidefx"
)

// KV is the minimal key-value storage contract this package needs. It is
// satisfied directly by pkg/kvdb.KVAdapter.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// signal is the slim per-XTX scheduling and status record, kept separate
// from the (potentially large) FSX vector so a status read never pays for
// decoding every step.
type signal struct {
	ID            [32]byte      `json:"id"`
	Requester     []byte        `json:"requester"`
	Nonce         uint64        `json:"nonce"`
	Reward        *big.Int      `json:"reward"`
	TimeoutsAt    uint64        `json:"timeouts_at"`
	DelayStepsAt  uint64        `json:"delay_steps_at"`
	Status        sidefx.Status `json:"status"`
	Sequential    bool          `json:"sequential"`
	CreatedHeight uint64        `json:"created_height"`
}

// Emitter receives the engine's lifecycle events. The host's event bus is
// an external collaborator; a nil Emitter is valid and simply drops
// events, which test code relies on.
type Emitter interface {
	XTransactionReceivedForExec(xtxID [32]byte)
	NewSideEffectsAvailable(requester []byte, xtxID [32]byte, steps [][]sidefx.FSX)
	SideEffectConfirmed(xtxID, sfxID [32]byte)
	XTransactionCommitted(xtxID [32]byte)
	XTransactionReverted(xtxID [32]byte)
	XTransactionRevertTimedOut(xtxID [32]byte)
	XTransactionCancelled(xtxID [32]byte)
}

// noopEmitter drops every event; used when the engine is constructed
// without one.
type noopEmitter struct{}

func (noopEmitter) XTransactionReceivedForExec([32]byte)                     {}
func (noopEmitter) NewSideEffectsAvailable([]byte, [32]byte, [][]sidefx.FSX) {}
func (noopEmitter) SideEffectConfirmed([32]byte, [32]byte)                   {}
func (noopEmitter) XTransactionCommitted([32]byte)                           {}
func (noopEmitter) XTransactionReverted([32]byte)                            {}
func (noopEmitter) XTransactionRevertTimedOut([32]byte)                      {}
func (noopEmitter) XTransactionCancelled([32]byte)                           {}

