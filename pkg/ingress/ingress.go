// Copyright 2025 Certen Protocol

// Package ingress implements the Confirmation Ingress (component F): pure
// routing logic that takes a relayer-submitted confirmation, looks up its
// side effect, and dispatches it to the registry (B) for schema
// validation and, for Escrowed side effects, to the header verifier (A)
// for an inclusion-proof check, before finally handing it to the XTX
// engine (D) to record.
//
// Ingress holds no state of its own; it exists so that B and A are always
// consulted in the same order ahead of D, rather than leaving that
// sequencing to every caller of the engine.
package ingress

import (
	"fmt"

	"github.com/certen/xcircuit/pkg/headerverifier"
	"github.com/certen/xcircuit/pkg/registry"
	"github.com/certen/xcircuit/pkg/sidefx"
	"github.com/certen/xcircuit/pkg/xdns"
)

// Engine is the subset of *xtx.Engine ingress needs, declared as an
// interface so tests can substitute a fake.
type Engine interface {
	GetXTX(xtxID [32]byte) (*sidefx.XTX, error)
	ConfirmSideEffect(xtxID, sfxID [32]byte, confirmed *sidefx.Confirmation) (*sidefx.XTX, error)
}

// Ingress wires the registry, XDNS, and header verifier ahead of the XTX
// engine's confirmation path.
type Ingress struct {
	registry *registry.Registry
	xdns     *xdns.Directory
	verifier *headerverifier.Verifier
	engine   Engine
}

// New constructs an Ingress. Any of registry/xdns/verifier/engine being
// nil is a programmer error; New does not guard against it since all four
// are assembled once at process startup.
func New(reg *registry.Registry, dir *xdns.Directory, verifier *headerverifier.Verifier, engine Engine) *Ingress {
	return &Ingress{registry: reg, xdns: dir, verifier: verifier, engine: engine}
}

// ConfirmSideEffect is the confirm_side_effect entry point: it
// locates the named side effect, validates the confirmation's shape
// against its registered kind (B), verifies its inclusion proof against
// a previously submitted header when the side effect is Escrowed (A), and
// only then hands it to the engine (D) to record and re-evaluate the
// XTX's transition.
func (g *Ingress) ConfirmSideEffect(xtxID, sfxID [32]byte, confirmed *sidefx.Confirmation) (*sidefx.XTX, error) {
	xt, err := g.engine.GetXTX(xtxID)
	if err != nil {
		return nil, err
	}
	fsx, _, _, found := xt.FindFSX(sfxID)
	if !found {
		return nil, ErrUnknownSideEffect
	}

	staged := *fsx
	staged.Confirmed = confirmed
	if err := g.registry.ValidateConfirmation(&staged); err != nil {
		return nil, err
	}

	if fsx.SecurityLvl == sidefx.SecurityEscrowed {
		if err := g.verifyInclusion(fsx, confirmed); err != nil {
			return nil, err
		}
	}

	return g.engine.ConfirmSideEffect(xtxID, sfxID, confirmed)
}

// receiptTrieKey derives the key an escrowed side effect's receipt is
// looked up under in the target chain's receipts trie: the 4-byte
// big-endian encoding of the FSX's index within its XTX.
func receiptTrieKey(fsx *sidefx.FSX) []byte {
	key := make([]byte, 4)
	key[0] = byte(fsx.Index >> 24)
	key[1] = byte(fsx.Index >> 16)
	key[2] = byte(fsx.Index >> 8)
	key[3] = byte(fsx.Index)
	return key
}

// verifyInclusion reads back the header the relayer claims the
// confirmation happened under and checks the confirmation's proof against
// that header's receipts root.
func (g *Ingress) verifyInclusion(fsx *sidefx.FSX, confirmed *sidefx.Confirmation) error {
	if confirmed.Proof == nil {
		return ErrMissingProof
	}

	header, err := g.verifier.Header(fsx.Input.Target, confirmed.ReceivedAt)
	if err != nil {
		return fmt.Errorf("%w: target %x height %d: %v", ErrHeaderUnavailable, fsx.Input.Target, confirmed.ReceivedAt, err)
	}

	proof := &headerverifier.Proof{Nodes: confirmed.Proof.Nodes, Index: confirmed.Proof.Index}
	return g.verifier.VerifyInclusion(header.ReceiptsRoot, receiptTrieKey(fsx), proof, confirmed.Output)
}
