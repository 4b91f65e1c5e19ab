// Copyright 2025 Certen Protocol
//
// XTX State Transitions

package xtx

import "github.com/certen/xcircuit/pkg/sidefx"

// deriveInitialStatus is a pure function of the insurance-deposit list
// the registry's insurance rule produced at submission: PendingInsurance
// while any deposit awaits a bond, else Ready.
func deriveInitialStatus(ctx *localCtx) sidefx.Status {
	if !allBonded(ctx) {
		return sidefx.StatusPendingInsurance
	}
	return sidefx.StatusReady
}

// allBonded reports whether every insurance deposit the registry's rule
// required has been bonded. The deposit map is the single source of
// truth here; the requester-declared Insurance field on the SFX never
// gates readiness.
func allBonded(ctx *localCtx) bool {
	for _, dep := range ctx.deposits {
		if dep.Status != sidefx.DepositBonded {
			return false
		}
	}
	return true
}

// maybeAdvanceToReady transitions PendingInsurance → Bonded → Ready once
// every insurance slot is bonded. Bonded is a transient marker; the
// engine moves straight through to Ready within the same apply.
func maybeAdvanceToReady(ctx *localCtx) {
	if ctx.xtx.Status == sidefx.StatusPendingInsurance && allBonded(ctx) {
		ctx.xtx.Status = sidefx.StatusBonded
		ctx.xtx.Status = sidefx.StatusReady
	}
}

// maybeComplete checks whether every FSX in every step has been
// successfully confirmed and, if so, transitions to Finished{Committed}.
// A confirmation carrying an execution error does not complete the XTX by
// itself; Committed requires every FSX to be confirmed with no error, so
// a failed confirmation simply leaves the XTX in Ready with that slot
// marked-but-unsuccessful, for the requester or the revert path to
// observe.
func maybeComplete(ctx *localCtx) bool {
	if ctx.xtx.Status != sidefx.StatusReady {
		return false
	}
	if !ctx.xtx.AllConfirmedSuccessfully() {
		return false
	}
	ctx.xtx.Status = sidefx.StatusFinishedCommitted
	return true
}
