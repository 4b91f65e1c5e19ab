// Copyright 2025 Certen Protocol
//
// Composable Transaction Lifecycle Operations

package xtx

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/certen/xcircuit/pkg/registry"
	"github.com/certen/xcircuit/pkg/sidefx"
	"github.com/certen/xcircuit/pkg/xdns"
)

// Ledger is the subset of *pkg/ledger.Ledger the engine drives funds
// through, declared as an interface so tests can substitute a fake
// without constructing a full ledger.Balances implementation.
type Ledger interface {
	ChargeReward(requester []byte, reward *big.Int) error
	BondInsuranceDeposit(relayer []byte, deposit *sidefx.InsuranceDeposit) error
	PayoutFSX(xtxID [32]byte, fsx *sidefx.FSX, deposit *sidefx.InsuranceDeposit) error
	RefundInsuranceDeposit(sfxID [32]byte, deposit *sidefx.InsuranceDeposit) error
	SlashInsuranceDeposit(sfxID [32]byte, deposit *sidefx.InsuranceDeposit) error
}

// Engine is the Composable Transaction Lifecycle Engine (component D). It
// is the sole writer of XTX, FSX, and InsuranceDeposit records.
type Engine struct {
	kv       KV
	registry *registry.Registry
	xdns     *xdns.Directory
	ledger   Ledger
	emitter  Emitter
}

// NewEngine constructs an Engine over the given KV store, side-effect
// registry, target directory, and ledger. emitter may be nil.
func NewEngine(kv KV, reg *registry.Registry, dir *xdns.Directory, led Ledger, emitter Emitter) *Engine {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Engine{kv: kv, registry: reg, xdns: dir, ledger: led, emitter: emitter}
}

// Submission is the host-callable on_extrinsics_trigger payload. Fee
// is the requester-named reward for the batch as a whole; when nil, the
// engine escrows the sum of each side effect's own MaxReward instead.
type Submission struct {
	Requester []byte
	Nonce     uint64
	// SideEffect is the requester's side effects in submission order,
	// grouped however the caller likes; the engine reshapes them per
	// Sequential before validation.
	SideEffect   [][]sidefx.SFX
	Sequential   bool
	Fee          *big.Int
	TimeoutsAt   uint64
	DelayStepsAt uint64
	Height       uint64 // current host block height, stamped onto each FSX
}

// normalizeSteps lays the submitted side effects out per the declared
// execution mode: a sequential submission gets exactly one side effect
// per step, confirmed strictly in order, while a non-sequential
// submission collapses into a single step whose side effects may be
// confirmed in any order. The caller-supplied grouping only fixes the
// submission order; it never carries ordering semantics of its own.
func normalizeSteps(sideEffects [][]sidefx.SFX, sequential bool) [][]sidefx.SFX {
	var flat []sidefx.SFX
	for _, step := range sideEffects {
		flat = append(flat, step...)
	}
	if len(flat) == 0 {
		return nil
	}
	if !sequential {
		return [][]sidefx.SFX{flat}
	}
	out := make([][]sidefx.SFX, len(flat))
	for i, sfx := range flat {
		out[i] = []sidefx.SFX{sfx}
	}
	return out
}

// OnExtrinsicsTrigger validates every side effect against the registry
// and XDNS, escrows the requester's reward, and persists the new XTX in
// its initial status. Validation failure rejects the whole XTX; no state
// is persisted.
func (e *Engine) OnExtrinsicsTrigger(sub Submission) (*sidefx.XTX, error) {
	shaped := normalizeSteps(sub.SideEffect, sub.Sequential)
	if len(shaped) == 0 {
		return nil, ErrEmptySubmission
	}

	xtxID := sidefx.ComputeXtxID(sub.Requester, sub.Nonce)

	steps := make([][]sidefx.FSX, len(shaped))
	index := uint32(0)
	var totalReward big.Int
	ctx := &localCtx{deposits: make(map[[32]byte]*sidefx.InsuranceDeposit)}

	for s, parallelSfx := range shaped {
		steps[s] = make([]sidefx.FSX, len(parallelSfx))
		for i, sfx := range parallelSfx {
			state := registry.NewLocalState()
			cfg, allowed, err := e.xdns.GetABIForSelector(sfx.Target, sfx.Action)
			if err != nil {
				return nil, err
			}
			if err := e.registry.ValidateArgs(func(sidefx.Selector) bool { return allowed }, cfg, &sfx, state); err != nil {
				return nil, err
			}

			req, err := e.registry.CheckIfInsuranceRequired(&sfx)
			if err != nil {
				return nil, err
			}

			lvl := sidefx.SecurityOptimistic
			if req != nil {
				lvl = sidefx.SecurityEscrowed
			}

			steps[s][i] = sidefx.FSX{
				Input:                  sfx,
				SecurityLvl:            lvl,
				SubmissionTargetHeight: sub.Height,
				Index:                  index,
			}
			if sfx.MaxReward != nil {
				totalReward.Add(&totalReward, sfx.MaxReward)
			}

			if req != nil {
				sfxID := sidefx.SideEffectID(xtxID, index)
				ctx.deposits[sfxID] = &sidefx.InsuranceDeposit{
					Insurance:       req.Insurance,
					PromisedReward:  req.Reward,
					Requester:       sub.Requester,
					CreatedAtHeight: sub.Height,
					Status:          sidefx.DepositAwaitingBond,
				}
				ctx.links = append(ctx.links, sfxID)
			}
			index++
		}
	}

	reward := &totalReward
	if sub.Fee != nil {
		reward = sub.Fee
	}
	if err := e.ledger.ChargeReward(sub.Requester, reward); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoReward, err)
	}

	ctx.xtx = sidefx.XTX{
		ID:            xtxID,
		Requester:     sub.Requester,
		Nonce:         sub.Nonce,
		Reward:        reward,
		TimeoutsAt:    sub.TimeoutsAt,
		DelayStepsAt:  sub.DelayStepsAt,
		Sequential:    sub.Sequential,
		Steps:         steps,
		CreatedHeight: sub.Height,
	}
	ctx.xtx.Status = deriveInitialStatus(ctx)

	if err := e.apply(ctx); err != nil {
		return nil, err
	}

	e.emitter.XTransactionReceivedForExec(xtxID)
	e.emitter.NewSideEffectsAvailable(sub.Requester, xtxID, steps)

	out := ctx.xtx
	return &out, nil
}

// BondInsuranceDeposit charges a relayer's insurance and records it as
// the accepted bid for the named side effect. The XTX must be
// PendingInsurance and the slot must still be unbonded.
func (e *Engine) BondInsuranceDeposit(xtxID, sfxID [32]byte, relayer []byte) (*sidefx.XTX, error) {
	if len(relayer) == 0 {
		return nil, ErrUnknownRelayer
	}
	ctx, err := e.loadCtx(xtxID)
	if err != nil {
		return nil, err
	}
	if ctx.xtx.Status != sidefx.StatusPendingInsurance {
		return nil, fmt.Errorf("%w: xtx is %s", sidefx.ErrWrongStatus, ctx.xtx.Status)
	}

	dep, ok := ctx.deposits[sfxID]
	if !ok {
		return nil, sidefx.ErrInsuranceNotFound
	}
	if dep.Status != sidefx.DepositAwaitingBond {
		return nil, sidefx.ErrAlreadyBonded
	}

	fsx, _, _, found := ctx.xtx.FindFSX(sfxID)
	if !found {
		return nil, sidefx.ErrSfxNotFound
	}

	dep.BondAttemptID = uuid.NewString()
	if err := e.ledger.BondInsuranceDeposit(relayer, dep); err != nil {
		return nil, err
	}
	fsx.BestBid = &sidefx.Bid{Relayer: relayer, Amount: dep.PromisedReward}

	maybeAdvanceToReady(ctx)

	if err := e.apply(ctx); err != nil {
		return nil, err
	}
	out := ctx.xtx
	return &out, nil
}

// CancelXtx cancels a requester-submitted XTX. Allowed only while status
// is Requested or PendingInsurance.
func (e *Engine) CancelXtx(xtxID [32]byte) error {
	ctx, err := e.loadCtx(xtxID)
	if err != nil {
		return err
	}
	if ctx.xtx.Status != sidefx.StatusRequested && ctx.xtx.Status != sidefx.StatusPendingInsurance {
		return fmt.Errorf("%w: cancel not permitted from %s", sidefx.ErrWrongStatus, ctx.xtx.Status)
	}
	ctx.xtx.Status = sidefx.StatusFinishedCancelled
	if err := e.apply(ctx); err != nil {
		return err
	}
	e.emitter.XTransactionCancelled(xtxID)
	return nil
}

// Revert forces a Ready XTX to Finished{Reverted}: the host has decided
// the batch cannot complete, typically because a side effect confirmed
// with an execution error. Bonded insurance is returned to its relayer
// (an explicit revert assigns no relayer fault, unlike a timeout) and no
// reward is paid; the escrowed reward stays in the vault for the host to
// resolve.
func (e *Engine) Revert(xtxID [32]byte) error {
	ctx, err := e.loadCtx(xtxID)
	if err != nil {
		return err
	}
	if ctx.xtx.Status != sidefx.StatusReady {
		return fmt.Errorf("%w: revert not permitted from %s", sidefx.ErrWrongStatus, ctx.xtx.Status)
	}

	for _, fsx := range ctx.xtx.AllFSX() {
		sfxID := sidefx.SideEffectID(xtxID, fsx.Index)
		if dep, ok := ctx.deposits[sfxID]; ok {
			if err := e.ledger.RefundInsuranceDeposit(sfxID, dep); err != nil {
				return err
			}
		}
	}
	ctx.xtx.Status = sidefx.StatusFinishedReverted

	if err := e.apply(ctx); err != nil {
		return err
	}
	e.emitter.XTransactionReverted(xtxID)
	return nil
}

// SweepTimeouts scans nothing by itself: it is handed the specific xtxID
// a caller's end-of-block sweep has already identified as due, and forces
// it to RevertTimedOut, slashing any bonded insurance and paying no
// reward. Unbonded slots are simply released: no funds were ever held for
// them.
func (e *Engine) SweepTimeouts(xtxID [32]byte, currentHeight uint64) error {
	ctx, err := e.loadCtx(xtxID)
	if err != nil {
		return err
	}
	if ctx.xtx.Status.IsTerminal() {
		return nil
	}
	if currentHeight < ctx.xtx.TimeoutsAt {
		return nil
	}

	for _, fsx := range ctx.xtx.AllFSX() {
		sfxID := sidefx.SideEffectID(xtxID, fsx.Index)
		if dep, ok := ctx.deposits[sfxID]; ok {
			if err := e.ledger.SlashInsuranceDeposit(sfxID, dep); err != nil {
				return err
			}
		}
	}
	ctx.xtx.Status = sidefx.StatusFinishedRevertTimedOut

	if err := e.apply(ctx); err != nil {
		return err
	}
	e.emitter.XTransactionRevertTimedOut(xtxID)
	return nil
}
