// Copyright 2025 Certen Protocol
//
// RLP Signing-Hash Encoding

package headerverifier

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// signingList is the 16-element RLP list hashed to produce the message a
// validator signs. Field order is part of the wire contract and must not
// change.
type signingList struct {
	ChainID             uint64
	ParentHash          []byte
	Sha3Uncles          []byte
	Miner               []byte
	StateRoot           []byte
	TransactionsRoot    []byte
	ReceiptsRoot        []byte
	LogsBloom           []byte
	Difficulty          uint64
	Number              uint64
	GasLimit            uint64
	GasUsed             uint64
	Timestamp           uint64
	ExtraPlusValidators []byte
	MixHash             []byte
	Nonce               []byte
}

// extraPlusValidators returns the signing payload's extra-data field: the
// 32-byte extra region, plus the 21-validator set appended whenever this
// header sits on an epoch boundary.
func extraPlusValidators(h *Header) []byte {
	if !h.IsEpochHeader() {
		return append([]byte{}, h.Extra[:]...)
	}
	out := make([]byte, 0, 32+ValidatorSetSize*20)
	out = append(out, h.Extra[:]...)
	for _, v := range h.Validators {
		out = append(out, v[:]...)
	}
	return out
}

// SigningHash computes keccak256(RLP(header_for_signing)), the digest a
// validator's signature covers. The Signature field itself is excluded.
func SigningHash(h *Header) ([32]byte, error) {
	list := signingList{
		ChainID:             h.ChainID,
		ParentHash:          h.ParentHash[:],
		Sha3Uncles:          h.UncleHash[:],
		Miner:               h.Miner[:],
		StateRoot:           h.StateRoot[:],
		TransactionsRoot:    h.TransactionsRoot[:],
		ReceiptsRoot:        h.ReceiptsRoot[:],
		LogsBloom:           h.LogsBloom[:],
		Difficulty:          h.Difficulty,
		Number:              h.Number,
		GasLimit:            h.GasLimit,
		GasUsed:             h.GasUsed,
		Timestamp:           h.Timestamp,
		ExtraPlusValidators: extraPlusValidators(h),
		MixHash:             h.MixHash[:],
		Nonce:               h.Nonce[:],
	}
	encoded, err := rlp.EncodeToBytes(&list)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}
