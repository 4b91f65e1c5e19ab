// Copyright 2025 Certen Protocol
//
// Fixed-Layout Header and Validator-Set Codec

package headerverifier

import (
	"encoding/binary"
	"fmt"
)

// EncodeHeader serializes a Header to its fixed-layout wire form.
func EncodeHeader(h *Header) []byte {
	buf := make([]byte, 0, HeaderEncodedLen)
	var u64 [8]byte

	putU64 := func(v uint64) {
		binary.BigEndian.PutUint64(u64[:], v)
		buf = append(buf, u64[:]...)
	}

	putU64(h.ChainID)
	buf = append(buf, h.ParentHash[:]...)
	buf = append(buf, h.UncleHash[:]...)
	buf = append(buf, h.Miner[:]...)
	buf = append(buf, h.StateRoot[:]...)
	buf = append(buf, h.TransactionsRoot[:]...)
	buf = append(buf, h.ReceiptsRoot[:]...)
	buf = append(buf, h.LogsBloom[:]...)
	putU64(h.Difficulty)
	putU64(h.Number)
	putU64(h.GasLimit)
	putU64(h.GasUsed)
	putU64(h.Timestamp)
	buf = append(buf, h.Extra[:]...)
	for _, v := range h.Validators {
		buf = append(buf, v[:]...)
	}
	buf = append(buf, h.MixHash[:]...)
	buf = append(buf, h.Nonce[:]...)
	buf = append(buf, h.Reserved[:]...)
	buf = append(buf, h.Signature[:]...)

	return buf
}

// DecodeHeader parses a wire-format Header, rejecting any encoding whose
// length differs from the declared fixed maximum.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) != HeaderEncodedLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrDecodeHeader, HeaderEncodedLen, len(data))
	}
	h := &Header{}
	pos := 0

	readU64 := func() uint64 {
		v := binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
		return v
	}
	readBytes := func(n int) []byte {
		b := data[pos : pos+n]
		pos += n
		return b
	}

	h.ChainID = readU64()
	copy(h.ParentHash[:], readBytes(32))
	copy(h.UncleHash[:], readBytes(32))
	copy(h.Miner[:], readBytes(20))
	copy(h.StateRoot[:], readBytes(32))
	copy(h.TransactionsRoot[:], readBytes(32))
	copy(h.ReceiptsRoot[:], readBytes(32))
	copy(h.LogsBloom[:], readBytes(256))
	h.Difficulty = readU64()
	h.Number = readU64()
	h.GasLimit = readU64()
	h.GasUsed = readU64()
	h.Timestamp = readU64()
	copy(h.Extra[:], readBytes(32))
	for i := range h.Validators {
		copy(h.Validators[i][:], readBytes(20))
	}
	copy(h.MixHash[:], readBytes(32))
	copy(h.Nonce[:], readBytes(8))
	copy(h.Reserved[:], readBytes(48))
	copy(h.Signature[:], readBytes(65))

	if pos != len(data) {
		return nil, fmt.Errorf("%w: decoder consumed %d of %d bytes", ErrDecodeHeader, pos, len(data))
	}
	return h, nil
}

// EncodeValidatorSet serializes a ValidatorSet to its fixed-layout wire
// form.
func EncodeValidatorSet(vs *ValidatorSet) []byte {
	buf := make([]byte, 0, ValidatorSetEncodedLen)
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], vs.LastUpdateHeight)
	buf = append(buf, u64[:]...)
	for _, v := range vs.Validators {
		buf = append(buf, v[:]...)
	}
	return buf
}

// DecodeValidatorSet parses a wire-format ValidatorSet.
func DecodeValidatorSet(data []byte) (*ValidatorSet, error) {
	if len(data) != ValidatorSetEncodedLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrDecodeHeader, ValidatorSetEncodedLen, len(data))
	}
	vs := &ValidatorSet{}
	vs.LastUpdateHeight = binary.BigEndian.Uint64(data[:8])
	pos := 8
	for i := range vs.Validators {
		copy(vs.Validators[i][:], data[pos:pos+20])
		pos += 20
	}
	return vs, nil
}
