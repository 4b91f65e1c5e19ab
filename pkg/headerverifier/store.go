// Copyright 2025 Certen Protocol
//
// Header and Validator-Set Storage

package headerverifier

import (
	"encoding/binary"
	"fmt"

	"github.com/certen/xcircuit/pkg/sidefx"
)

// KV is the minimal key-value storage contract this package needs. It is
// satisfied directly by pkg/kvdb.KVAdapter.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

var (
	keyHeaderPrefix = []byte("hv:header:")
	keyValSetPrefix = []byte("hv:valset:")
	keyLatestPrefix = []byte("hv:latest:")
)

func headerKey(target sidefx.TargetID, height uint64) []byte {
	k := append([]byte{}, keyHeaderPrefix...)
	k = append(k, target[:]...)
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], height)
	return append(k, h[:]...)
}

func valSetKey(target sidefx.TargetID) []byte {
	return append(append([]byte{}, keyValSetPrefix...), target[:]...)
}

func latestHeightKey(target sidefx.TargetID) []byte {
	return append(append([]byte{}, keyLatestPrefix...), target[:]...)
}

// Store persists headers and rotating validator sets, double-mapped by
// target chain. It exclusively owns this state; nothing outside this
// package writes these keys.
type Store struct {
	kv KV
}

// NewStore constructs a Store over the given KV backend.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// SaveHeader stores a header at (target, height) and advances the
// target's latest-known height if this header extends it.
func (s *Store) SaveHeader(target sidefx.TargetID, h *Header) error {
	if err := s.kv.Set(headerKey(target, h.Number), EncodeHeader(h)); err != nil {
		return fmt.Errorf("save header: %w", err)
	}
	latest, err := s.LatestHeight(target)
	if err != nil && err != ErrUnknownTarget {
		return err
	}
	if err == ErrUnknownTarget || h.Number > latest {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], h.Number)
		if err := s.kv.Set(latestHeightKey(target), buf[:]); err != nil {
			return fmt.Errorf("save latest height: %w", err)
		}
	}
	return nil
}

// LoadHeader fetches the header stored at (target, height).
func (s *Store) LoadHeader(target sidefx.TargetID, height uint64) (*Header, error) {
	b, err := s.kv.Get(headerKey(target, height))
	if err != nil {
		return nil, fmt.Errorf("load header: %w", err)
	}
	if len(b) == 0 {
		return nil, ErrUnknownTarget
	}
	return DecodeHeader(b)
}

// LatestHeight returns the highest header height stored for a target.
func (s *Store) LatestHeight(target sidefx.TargetID) (uint64, error) {
	b, err := s.kv.Get(latestHeightKey(target))
	if err != nil {
		return 0, fmt.Errorf("load latest height: %w", err)
	}
	if len(b) == 0 {
		return 0, ErrUnknownTarget
	}
	return binary.BigEndian.Uint64(b), nil
}

// SaveValidatorSet installs a target's current validator set.
func (s *Store) SaveValidatorSet(target sidefx.TargetID, vs *ValidatorSet) error {
	if err := s.kv.Set(valSetKey(target), EncodeValidatorSet(vs)); err != nil {
		return fmt.Errorf("save validator set: %w", err)
	}
	return nil
}

// LoadValidatorSet returns a target's current validator set.
func (s *Store) LoadValidatorSet(target sidefx.TargetID) (*ValidatorSet, error) {
	b, err := s.kv.Get(valSetKey(target))
	if err != nil {
		return nil, fmt.Errorf("load validator set: %w", err)
	}
	if len(b) == 0 {
		return nil, ErrUnknownTarget
	}
	return DecodeValidatorSet(b)
}
