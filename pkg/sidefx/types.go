// Copyright 2025 Certen Protocol

// Package sidefx holds the core data model of the execution circuit: the
// composable transaction (XTX), its side effects (SFX/FSX), and the
// insurance deposits that back them. The XTX engine (pkg/xtx) is the sole
// writer of these records; every other component reads them through
// defined queries.
package sidefx

import (
	"math/big"
)

// TargetID is the 4-byte opaque tag identifying a known foreign chain.
type TargetID [4]byte

func (t TargetID) String() string {
	return string(t[:])
}

// Selector is the 4-byte side-effect kind tag (e.g. transfer, call, swap).
type Selector [4]byte

func (s Selector) String() string {
	return string(s[:])
}

// SecurityLevel is the confirmation strength demanded of a side effect.
type SecurityLevel uint8

const (
	SecurityOptimistic SecurityLevel = iota
	SecurityEscrowed
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityOptimistic:
		return "Optimistic"
	case SecurityEscrowed:
		return "Escrowed"
	default:
		return "Unknown"
	}
}

// Status is an XTX's position in the composable-transaction lifecycle.
type Status uint8

const (
	StatusRequested Status = iota
	StatusPendingInsurance
	StatusBonded
	StatusReady
	StatusFinishedCommitted
	StatusFinishedReverted
	StatusFinishedRevertTimedOut
	StatusFinishedCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRequested:
		return "Requested"
	case StatusPendingInsurance:
		return "PendingInsurance"
	case StatusBonded:
		return "Bonded"
	case StatusReady:
		return "Ready"
	case StatusFinishedCommitted:
		return "Finished{Committed}"
	case StatusFinishedReverted:
		return "Finished{Reverted}"
	case StatusFinishedRevertTimedOut:
		return "Finished{RevertTimedOut}"
	case StatusFinishedCancelled:
		return "Finished{Cancelled}"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the status can never transition further.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFinishedCommitted, StatusFinishedReverted, StatusFinishedRevertTimedOut, StatusFinishedCancelled:
		return true
	default:
		return false
	}
}

// SFX is a single unit of work addressed to one target chain.
type SFX struct {
	Target TargetID `json:"target"`
	Action Selector `json:"action"`
	// EncodedArgs is an ordered sequence of raw byte fields, one per
	// positional argument declared by the registered kind's schema.
	EncodedArgs [][]byte `json:"encoded_args"`
	MaxReward   *big.Int `json:"max_reward"`
	Insurance   *big.Int `json:"insurance"`
	// Signature is the requester's optional signature over the canonical
	// encoding of this SFX.
	Signature []byte `json:"signature,omitempty"`
	// EnforceExecutor is the account the requester demands must execute
	// this side effect, if any.
	EnforceExecutor []byte `json:"enforce_executor,omitempty"`
	// RewardAssetID names a non-native asset for reward denomination.
	RewardAssetID *uint32 `json:"reward_asset_id,omitempty"`
}

// Bid records the relayer offer accepted for a side effect that required
// bonding.
type Bid struct {
	Relayer []byte   `json:"relayer"`
	Amount  *big.Int `json:"amount"`
}

// InclusionProof is the Merkle-Patricia-trie inclusion proof attached to a
// confirmation; it is consumed by the header verifier (component A).
type InclusionProof struct {
	Nodes [][]byte `json:"nodes"`
	Index byte     `json:"index"`
}

// Confirmation is the outcome reported for a side effect once a relayer
// claims to have executed it on the foreign chain.
type Confirmation struct {
	Executioner []byte          `json:"executioner"`
	ReceivedAt  uint64          `json:"received_at"`
	Output      []byte          `json:"output"`
	Proof       *InclusionProof `json:"proof,omitempty"`
	// Err is set when the side effect executed but failed on the foreign
	// chain; a non-nil Confirmation with a non-empty Err is not a
	// successful confirmation.
	Err string `json:"err,omitempty"`
}

// IsSuccess reports whether the confirmation represents a successful
// execution with no reported error.
func (c *Confirmation) IsSuccess() bool {
	return c != nil && c.Err == ""
}

// FSX is an SFX enriched with the lifecycle fields the engine tracks while
// driving it to completion.
type FSX struct {
	Input                  SFX           `json:"input"`
	SecurityLvl            SecurityLevel `json:"security_lvl"`
	SubmissionTargetHeight uint64        `json:"submission_target_height"`
	BestBid                *Bid          `json:"best_bid,omitempty"`
	Confirmed              *Confirmation `json:"confirmed,omitempty"`
	// Index is this FSX's position within the XTX, used to derive its
	// side-effect id.
	Index uint32 `json:"index"`
}

// IsConfirmed reports whether this slot has received any confirmation,
// successful or not.
func (f *FSX) IsConfirmed() bool {
	return f.Confirmed != nil
}

// IsSuccessfullyConfirmed reports whether this slot has been confirmed
// with no execution error.
func (f *FSX) IsSuccessfullyConfirmed() bool {
	return f.Confirmed != nil && f.Confirmed.IsSuccess()
}

// DepositStatus is the lifecycle of a single insurance bond.
type DepositStatus uint8

const (
	DepositAwaitingBond DepositStatus = iota
	DepositBonded
	DepositRefunded
	DepositSlashed
)

func (s DepositStatus) String() string {
	switch s {
	case DepositAwaitingBond:
		return "AwaitingBond"
	case DepositBonded:
		return "Bonded"
	case DepositRefunded:
		return "Refunded"
	case DepositSlashed:
		return "Slashed"
	default:
		return "Unknown"
	}
}

// InsuranceDeposit is the bond record backing one SFX that requires
// insurance, keyed by (xtx_id, sfx_id).
type InsuranceDeposit struct {
	Insurance      *big.Int `json:"insurance"`
	PromisedReward *big.Int `json:"promised_reward"`
	Requester      []byte   `json:"requester"`
	BondedRelayer  []byte   `json:"bonded_relayer,omitempty"`
	// BondAttemptID correlates the specific bonding attempt that won this
	// slot, independent of (xtx_id, sfx_id): useful once a relayer's bond
	// is retried after a transient ledger failure and the caller wants to
	// tell two attempts on the same slot apart in logs.
	BondAttemptID   string        `json:"bond_attempt_id,omitempty"`
	CreatedAtHeight uint64        `json:"created_at_height"`
	Status          DepositStatus `json:"status"`
}

// XTX is a requester-submitted composable transaction: an ordered sequence
// of steps, each a set of side effects executed in parallel (or, in
// sequential mode, one side effect per step executed in order).
type XTX struct {
	ID            [32]byte `json:"id"`
	Requester     []byte   `json:"requester"`
	Nonce         uint64   `json:"nonce"`
	Reward        *big.Int `json:"reward"`
	TimeoutsAt    uint64   `json:"timeouts_at"`
	DelayStepsAt  uint64   `json:"delay_steps_at"`
	Status        Status   `json:"status"`
	Sequential    bool     `json:"sequential"`
	Steps         [][]FSX  `json:"steps"`
	CreatedHeight uint64   `json:"created_height"`
}

// AllFSX flattens the step structure into a single ordered slice, indexed
// identically to how side-effect ids are derived.
func (x *XTX) AllFSX() []*FSX {
	var out []*FSX
	for s := range x.Steps {
		for i := range x.Steps[s] {
			out = append(out, &x.Steps[s][i])
		}
	}
	return out
}

// FindFSX locates the FSX with the given side-effect id, alongside its
// step and slot-in-step indices.
func (x *XTX) FindFSX(sfxID [32]byte) (fsx *FSX, step, slot int, ok bool) {
	for s := range x.Steps {
		for i := range x.Steps[s] {
			if SideEffectID(x.ID, x.Steps[s][i].Index) == sfxID {
				return &x.Steps[s][i], s, i, true
			}
		}
	}
	return nil, 0, 0, false
}

// StepFullyConfirmed reports whether every FSX in a step has been
// confirmed (successfully or not).
func (x *XTX) StepFullyConfirmed(step int) bool {
	for i := range x.Steps[step] {
		if !x.Steps[step][i].IsConfirmed() {
			return false
		}
	}
	return true
}

// AllConfirmedSuccessfully reports whether every FSX in the XTX has been
// confirmed with no execution error — the Committed invariant.
func (x *XTX) AllConfirmedSuccessfully() bool {
	for s := range x.Steps {
		for i := range x.Steps[s] {
			if !x.Steps[s][i].IsSuccessfullyConfirmed() {
				return false
			}
		}
	}
	return true
}
