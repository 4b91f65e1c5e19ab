// Copyright 2025 Certen Protocol
//
// Deterministic Identifier Derivation for XTX and Side Effects

package sidefx

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// ComputeXtxID derives the deterministic id of a composable transaction
// from its requester and nonce. Equal (requester, nonce) pairs always
// produce equal ids; this is the only way an XTX id is ever assigned.
func ComputeXtxID(requester []byte, nonce uint64) [32]byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, nonce)
	h := crypto.Keccak256(requester, buf)
	var id [32]byte
	copy(id[:], h)
	return id
}

// SideEffectID derives the id of the SFX at the given index within an XTX.
// It is a hash of the XTX id concatenated with the index, never of the
// SFX's own content — two structurally identical SFX in different XTXs
// therefore never collide, and two SFX in the same XTX never collide
// because their indices differ.
func SideEffectID(xtxID [32]byte, index uint32) [32]byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, index)
	h := crypto.Keccak256(xtxID[:], buf)
	var id [32]byte
	copy(id[:], h)
	return id
}

// BidID derives the id of an accepted bid for a given side effect, scoped
// to the relayer that posted it so distinct relayers bidding on the same
// slot never collide.
func BidID(sfxID [32]byte, relayer []byte) [32]byte {
	h := crypto.Keccak256(sfxID[:], relayer)
	var id [32]byte
	copy(id[:], h)
	return id
}

// SplitInsuranceReward decodes the canonical two-scalar encoding used by
// the default insurance rule: the last encoded_args field, split evenly
// into a leading insurance amount and a trailing reward amount, both
// big-endian unsigned integers.
func SplitInsuranceReward(lastArg []byte) (insurance, reward *big.Int, ok bool) {
	if len(lastArg) == 0 || len(lastArg)%2 != 0 {
		return nil, nil, false
	}
	half := len(lastArg) / 2
	insurance = new(big.Int).SetBytes(lastArg[:half])
	reward = new(big.Int).SetBytes(lastArg[half:])
	return insurance, reward, true
}
