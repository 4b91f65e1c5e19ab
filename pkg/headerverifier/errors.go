// Copyright 2025 Certen Protocol
//
// Header Verifier Error Sentinels

package headerverifier

import "errors"

var (
	// ErrDecodeHeader covers any malformed or wrong-length header/validator
	// set encoding.
	ErrDecodeHeader = errors.New("headerverifier: decode error")

	// ErrSignature covers a header whose signature does not recover to its
	// declared miner.
	ErrSignature = errors.New("headerverifier: signature error")

	// ErrUnknownSigner covers a recovered signer that is not a member of
	// the current validator set, or a set that has gone stale for the
	// submitted height.
	ErrUnknownSigner = errors.New("headerverifier: unknown signer")

	// ErrParentUnknown is returned when a header's parent has not been
	// submitted yet. It is recoverable: the caller may retry once the
	// parent arrives.
	ErrParentUnknown = errors.New("headerverifier: parent unknown")

	// ErrProof covers any inclusion proof that does not terminate at the
	// expected value under the claimed root.
	ErrProof = errors.New("headerverifier: proof error")

	// ErrUnknownTarget is returned when nothing is stored under the
	// requested key: no header at the requested (target, height), no
	// latest height, or no validator set for a target chain.
	ErrUnknownTarget = errors.New("headerverifier: unknown target")
)
