// Copyright 2025 Certen Protocol

// Package xdns implements the Target Directory: the authoritative mapping
// from a target chain id to the verifier vendor, ABI config, allowed
// side-effect kinds, escrow account, and codec used to talk to it. XDNS is
// the sole writer of target directory entries; every other component
// reads through the queries below.
package xdns

import (
	"github.com/certen/xcircuit/pkg/registry"
	"github.com/certen/xcircuit/pkg/sidefx"
)

// VerificationVendor names the light-client family used to verify headers
// and inclusion proofs for a target.
type VerificationVendor string

const (
	VendorParlia    VerificationVendor = "parlia"
	VendorSubstrate VerificationVendor = "substrate"
	VendorEthash    VerificationVendor = "ethash"
)

// AllowedSideEffect pairs a recognized selector with an optional
// target-specific dispatch index (e.g. a pallet or contract call index).
type AllowedSideEffect struct {
	Selector     sidefx.Selector `yaml:"selector" json:"selector"`
	DispatchHint *uint32         `yaml:"dispatch_hint,omitempty" json:"dispatch_hint,omitempty"`
}

// Record is one target chain's full directory entry.
type Record struct {
	Target              sidefx.TargetID     `yaml:"target" json:"target"`
	VerificationVendor  VerificationVendor  `yaml:"verification_vendor" json:"verification_vendor"`
	Codec               string              `yaml:"codec" json:"codec"`
	Registrant          []byte              `yaml:"registrant,omitempty" json:"registrant,omitempty"`
	EscrowAccount       []byte              `yaml:"escrow_account,omitempty" json:"escrow_account,omitempty"`
	AllowedSideEffects  []AllowedSideEffect `yaml:"allowed_side_effects" json:"allowed_side_effects"`
	GatewayABI          registry.ABIConfig  `yaml:"gateway_abi" json:"gateway_abi"`
	GenesisHash         []byte              `yaml:"genesis_hash,omitempty" json:"genesis_hash,omitempty"`
	TokenSymbol         string              `yaml:"token_symbol,omitempty" json:"token_symbol,omitempty"`
	TokenDecimals       uint8               `yaml:"token_decimals,omitempty" json:"token_decimals,omitempty"`
	LastFinalizedHeight *uint64             `yaml:"last_finalized_height,omitempty" json:"last_finalized_height,omitempty"`
}

// Allows reports whether the given selector is permitted for this target.
func (r *Record) Allows(sel sidefx.Selector) bool {
	for _, a := range r.AllowedSideEffects {
		if a.Selector == sel {
			return true
		}
	}
	return false
}
