// Copyright 2025 Certen Protocol
//
// Header Authentication and Validator Rotation

package headerverifier

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/certen/xcircuit/pkg/sidefx"
)

// Verifier is the Light-Client Header Verification component (A). It owns
// a Store and performs decode, signature, validator-set membership and
// rotation, and inclusion-proof checks against it.
type Verifier struct {
	store *Store
}

// NewVerifier constructs a Verifier over the given Store.
func NewVerifier(store *Store) *Verifier {
	return &Verifier{store: store}
}

// recoverSigner recovers the address that produced a header's signature
// over its signing hash. The signature's recovery byte is normalized from
// Ethereum's legacy 27/28 convention to libsecp256k1's 0/1 if needed.
func recoverSigner(h *Header) (common.Address, error) {
	hash, err := SigningHash(h)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrDecodeHeader, err)
	}
	sig := make([]byte, 65)
	copy(sig, h.Signature[:])
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// signatureValid reports whether a header's signature recovers to its
// declared miner.
func signatureValid(h *Header) error {
	signer, err := recoverSigner(h)
	if err != nil {
		return err
	}
	if h.Miner != signer {
		return fmt.Errorf("%w: recovered signer does not match miner", ErrSignature)
	}
	return nil
}

// rotateOnEpoch parses the next validator set out of an epoch header's
// validator region and installs it, effective starting at this header's
// height. The previous set continues to validate headers up to and
// including this height.
func (v *Verifier) rotateOnEpoch(target sidefx.TargetID, h *Header) error {
	if !h.IsEpochHeader() {
		return nil
	}
	next := &ValidatorSet{LastUpdateHeight: h.Number, Validators: h.Validators}
	return v.store.SaveValidatorSet(target, next)
}

// CurrentValidatorSet returns the validator set presently in force for a
// target chain.
func (v *Verifier) CurrentValidatorSet(target sidefx.TargetID) (*ValidatorSet, error) {
	return v.store.LoadValidatorSet(target)
}

// Header returns the previously-submitted header at (target, height), so
// a caller can read its receipts_root or state_root ahead of an
// inclusion-proof check.
func (v *Verifier) Header(target sidefx.TargetID, height uint64) (*Header, error) {
	return v.store.LoadHeader(target, height)
}

// SubmitHeader decodes, authenticates, and stores one target-chain
// header. It enforces, in order: well-formed fixed-layout decoding, a
// valid miner signature, signer membership in a still-fresh validator
// set, and (for non-genesis submissions) a known parent. On success it
// rotates the validator set if this header sits on an epoch boundary.
func (v *Verifier) SubmitHeader(target sidefx.TargetID, encoded []byte) (*Header, error) {
	h, err := DecodeHeader(encoded)
	if err != nil {
		return nil, err
	}

	if err := signatureValid(h); err != nil {
		return nil, err
	}

	vs, err := v.store.LoadValidatorSet(target)
	if err != nil {
		return nil, err
	}
	signer, err := recoverSigner(h)
	if err != nil {
		return nil, err
	}
	if !vs.Contains(signer) {
		return nil, fmt.Errorf("%w: signer not in current set", ErrUnknownSigner)
	}
	if !vs.IsFresh(h.Number) {
		return nil, fmt.Errorf("%w: validator set stale for height %d", ErrUnknownSigner, h.Number)
	}

	if h.Number > 0 {
		parent, err := v.store.LoadHeader(target, h.Number-1)
		if err != nil {
			return nil, fmt.Errorf("%w: height %d", ErrParentUnknown, h.Number-1)
		}
		parentHash, err := SigningHash(parent)
		if err != nil {
			return nil, err
		}
		if parentHash != h.ParentHash {
			return nil, fmt.Errorf("%w: parent hash mismatch at height %d", ErrParentUnknown, h.Number)
		}
	}

	if err := v.store.SaveHeader(target, h); err != nil {
		return nil, err
	}
	if err := v.rotateOnEpoch(target, h); err != nil {
		return nil, err
	}
	return h, nil
}
