// Copyright 2025 Certen Protocol

// Package headerverifier implements the Light-Client Header Verification
// component (A): BNB-Smart-Chain-style Parlia header decoding, miner
// signature recovery, rolling validator-set rotation across epoch
// boundaries, and receipt/state inclusion proofs over a
// Merkle-Patricia-style trie. The Header Verifier exclusively owns the
// stored headers and validator sets.
package headerverifier

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/certen/xcircuit/pkg/sidefx"
)

const (
	// EpochLength is the block interval at which the validator set
	// rotates; a header whose number is a multiple of it carries the
	// next set in its extra region.
	EpochLength = 200

	// ValidatorSetSize is the fixed number of rotating validators.
	ValidatorSetSize = 21

	// HeaderEncodedLen is the fixed wire length of an encoded Header.
	// Submissions of any other length are rejected as DecodeError before
	// any field is interpreted.
	HeaderEncodedLen = 1089

	// ValidatorSetEncodedLen is the fixed wire length of an encoded
	// ValidatorSet (last_update_height plus 21 20-byte addresses).
	ValidatorSetEncodedLen = 8 + ValidatorSetSize*20
)

// Header is the fixed-layout target-chain block header this verifier
// understands. All fields are present in every encoding; Validators is
// simply zeroed on non-epoch headers.
type Header struct {
	ChainID          uint64
	ParentHash       [32]byte
	UncleHash        [32]byte
	Miner            common.Address
	StateRoot        [32]byte
	TransactionsRoot [32]byte
	ReceiptsRoot     [32]byte
	LogsBloom        [256]byte
	Difficulty       uint64
	Number           uint64
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	Extra            [32]byte
	Validators       [ValidatorSetSize]common.Address
	MixHash          [32]byte
	Nonce            [8]byte
	// Reserved is forward-compatibility padding that keeps every header
	// at the declared fixed wire length regardless of content.
	Reserved  [48]byte
	Signature [65]byte
}


// IsEpochHeader reports whether this header's number falls on an epoch
// boundary and therefore carries the next validator set.
func (h *Header) IsEpochHeader() bool {
	return h.Number%EpochLength == 0
}

// ValidatorSet is the rotating 21-address authority list for one target
// chain, together with the height at which it was installed.
type ValidatorSet struct {
	LastUpdateHeight uint64
	Validators       [ValidatorSetSize]common.Address
}

// Contains reports whether addr is a member of the set.
func (vs *ValidatorSet) Contains(addr common.Address) bool {
	for _, v := range vs.Validators {
		if v == addr {
			return true
		}
	}
	return false
}

// IsFresh reports whether this set may still validate a header of the
// given number: strictly after its own installation height and no more
// than one epoch length beyond it.
func (vs *ValidatorSet) IsFresh(number uint64) bool {
	return number > vs.LastUpdateHeight && number <= vs.LastUpdateHeight+EpochLength
}

// Proof is the inclusion proof submitted alongside a confirmation: an
// ordered sequence of trie node byte strings plus the terminal node's
// single-byte index.
type Proof struct {
	Nodes [][]byte
	Index byte
}

// TargetID re-exports sidefx.TargetID for callers that only import this
// package.
type TargetID = sidefx.TargetID
