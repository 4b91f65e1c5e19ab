// Copyright 2025 Certen Protocol
//
// Side-Effect Confirmation Routing

package xtx

import (
	"fmt"

	"github.com/certen/xcircuit/pkg/sidefx"
)

// firstUnconfirmedStep returns the index of the earliest step that still
// has at least one unconfirmed FSX. It is the step a confirmation is
// currently allowed to land in.
func firstUnconfirmedStep(ctx *localCtx) (int, bool) {
	for s := range ctx.xtx.Steps {
		if !ctx.xtx.StepFullyConfirmed(s) {
			return s, true
		}
	}
	return 0, false
}

// ConfirmSideEffect records a previously-validated confirmation (already
// checked against the registry's confirmation schema and, for Escrowed
// side effects, the header verifier's inclusion proof — both the
// responsibility of pkg/ingress) against the named slot, and re-evaluates
// the XTX's transition.
//
// Confirmations must name a slot in the first still-unconfirmed step.
// A confirmation for a slot in a later step, while an earlier step has
// unconfirmed FSX, is rejected outright rather than silently skipped in
// search of a match; sequential-mode ordering (one FSX per step) depends
// on that rejection.
func (e *Engine) ConfirmSideEffect(xtxID, sfxID [32]byte, confirmed *sidefx.Confirmation) (*sidefx.XTX, error) {
	ctx, err := e.loadCtx(xtxID)
	if err != nil {
		if err == sidefx.ErrXtxNotFound {
			return nil, fmt.Errorf("%w: unknown xtx", sidefx.ErrWrongStatus)
		}
		return nil, err
	}
	if ctx.xtx.Status != sidefx.StatusReady {
		return nil, fmt.Errorf("%w: xtx is %s", sidefx.ErrWrongStatus, ctx.xtx.Status)
	}

	fsx, step, _, found := ctx.xtx.FindFSX(sfxID)
	if !found {
		return nil, fmt.Errorf("%w: unknown side effect", sidefx.ErrWrongStatus)
	}
	if fsx.IsConfirmed() {
		return nil, sidefx.ErrAlreadyConfirmed
	}

	curStep, anyPending := firstUnconfirmedStep(ctx)
	if !anyPending || step != curStep {
		return nil, fmt.Errorf("%w: side effect is not in the current step", sidefx.ErrSequentialViolation)
	}

	fsx.Confirmed = confirmed

	committed := maybeComplete(ctx)
	if committed {
		for i := range ctx.xtx.Steps {
			for j := range ctx.xtx.Steps[i] {
				f := &ctx.xtx.Steps[i][j]
				id := sidefx.SideEffectID(xtxID, f.Index)
				if err := e.ledger.PayoutFSX(xtxID, f, ctx.deposits[id]); err != nil {
					return nil, fmt.Errorf("payout fsx %d: %w", f.Index, err)
				}
			}
		}
	}

	if err := e.apply(ctx); err != nil {
		return nil, err
	}
	e.emitter.SideEffectConfirmed(xtxID, sfxID)
	if committed {
		e.emitter.XTransactionCommitted(xtxID)
	}

	out := ctx.xtx
	return &out, nil
}
