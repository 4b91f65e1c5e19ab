// Copyright 2025 Certen Protocol
//
// Selector Derivation

package registry

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/certen/xcircuit/pkg/sidefx"
)

// SelectorFromName derives a side-effect kind's 4-byte selector from its
// human-readable name, mirroring how EVM function selectors are derived
// from a signature string.
func SelectorFromName(name string) sidefx.Selector {
	h := crypto.Keccak256([]byte(name))
	var s sidefx.Selector
	copy(s[:], h[:4])
	return s
}
