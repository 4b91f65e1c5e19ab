// Copyright 2025 Certen Protocol

// Package registry implements the Side-Effect Protocol Registry: a
// per-target catalog of side-effect kinds, each carrying a typed argument
// schema, a confirmation schema, and an insurance rule. Kinds are modeled
// as a tagged sum with a small three-operation vtable, matching the
// dynamic-dispatch shape the circuit uses rather than a deep interface
// hierarchy.
package registry

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/certen/xcircuit/pkg/sidefx"
)

// FieldKind names the ABI-coding family of one positional argument.
type FieldKind uint8

const (
	FieldAddress FieldKind = iota
	FieldScalar
	FieldDynamicBytes
	FieldValue
)

func (k FieldKind) String() string {
	switch k {
	case FieldAddress:
		return "address"
	case FieldScalar:
		return "scalar"
	case FieldDynamicBytes:
		return "dynamic_bytes"
	case FieldValue:
		return "value"
	default:
		return "unknown"
	}
}

// FieldSchema declares one positional argument of a side-effect kind.
type FieldSchema struct {
	Name string
	Kind FieldKind
	// Size is the expected encoded width in bytes for fixed-width kinds
	// (address, scalar, value). Dynamic_bytes fields ignore it.
	Size int
}

// ABIConfig is the per-target coding configuration XDNS supplies for a
// gateway (address width, scalar width). Kinds validate argument widths
// against it rather than a single hard-coded size.
type ABIConfig struct {
	AddressLength int `yaml:"address_length" json:"address_length"`
	ValueTypeSize int `yaml:"value_type_size" json:"value_type_size"`
}

// DefaultABIConfig matches EVM-style 20-byte addresses and 32-byte values.
func DefaultABIConfig() ABIConfig {
	return ABIConfig{AddressLength: 20, ValueTypeSize: 32}
}

// ConfirmationSchema is the set of expected log-event signatures and/or
// output fields a valid confirmation for this kind must match.
type ConfirmationSchema struct {
	EventSignatures [][]byte
	ExpectOutput    bool
}

// LocalState accumulates named bindings that a kind's ValidateArgs
// declares while decoding — e.g. a `dest` binding later consulted by the
// insurance rule or confirmation check.
type LocalState struct {
	Bindings map[string][]byte
}

// NewLocalState returns an empty LocalState ready for binding.
func NewLocalState() *LocalState {
	return &LocalState{Bindings: make(map[string][]byte)}
}

// Bind records a named value decoded from an argument field.
func (s *LocalState) Bind(name string, value []byte) {
	s.Bindings[name] = value
}

// InsuranceRequirement is the result of a kind's insurance rule when a
// bond is required.
type InsuranceRequirement struct {
	Insurance *big.Int
	Reward    *big.Int
}

func sizeFor(f FieldSchema, cfg ABIConfig) int {
	switch f.Kind {
	case FieldAddress:
		return cfg.AddressLength
	case FieldScalar, FieldValue:
		return cfg.ValueTypeSize
	default:
		return -1 // dynamic_bytes: no fixed size
	}
}

// validateArity decodes args positionally against schema, binding any
// named fields into state, and fails on arity or width mismatch.
func validateArity(schema []FieldSchema, args [][]byte, cfg ABIConfig, state *LocalState) error {
	if len(args) < len(schema) {
		return fmt.Errorf("%w: expected at least %d arguments, got %d", ErrArityMismatch, len(schema), len(args))
	}
	for i, f := range schema {
		want := sizeFor(f, cfg)
		if want >= 0 && len(args[i]) != want {
			return fmt.Errorf("%w: field %q expected %d bytes, got %d", ErrTypeMismatch, f.Name, want, len(args[i]))
		}
		if f.Name != "" && state != nil {
			state.Bind(f.Name, args[i])
		}
	}
	return nil
}

// defaultInsuranceRule implements the canonical rule: if the
// last encoded_args field is non-empty, it encodes (insurance, reward) as
// two host-asset scalars.
func defaultInsuranceRule(sfx *sidefx.SFX) (*InsuranceRequirement, error) {
	if len(sfx.EncodedArgs) == 0 {
		return nil, nil
	}
	last := sfx.EncodedArgs[len(sfx.EncodedArgs)-1]
	if len(last) == 0 {
		return nil, nil
	}
	insurance, reward, ok := sidefx.SplitInsuranceReward(last)
	if !ok {
		return nil, fmt.Errorf("%w: malformed insurance/reward tail", ErrDecodeConfirmation)
	}
	return &InsuranceRequirement{Insurance: insurance, Reward: reward}, nil
}

// EventTopic derives the 32-byte log topic of a declared event signature,
// the value a matching confirmation's output must lead with.
func EventTopic(signature []byte) []byte {
	return crypto.Keccak256(signature)
}

// defaultValidateConfirmation checks a confirmation's output and (when
// declared) event signatures against the schema. A kind that declares
// event signatures treats the output as an encoded log record: the first
// 32 bytes must be the topic of one of the declared signatures.
func defaultValidateConfirmation(schema ConfirmationSchema, confirmed *sidefx.Confirmation) error {
	if confirmed == nil {
		return fmt.Errorf("%w: nil confirmation", ErrConfirmationMismatch)
	}
	if schema.ExpectOutput && len(confirmed.Output) == 0 {
		return fmt.Errorf("%w: expected non-empty output", ErrConfirmationMismatch)
	}
	if len(schema.EventSignatures) > 0 {
		if len(confirmed.Output) < 32 {
			return fmt.Errorf("%w: output too short to carry an event topic", ErrConfirmationMismatch)
		}
		matched := false
		for _, sig := range schema.EventSignatures {
			if bytes.Equal(confirmed.Output[:32], EventTopic(sig)) {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("%w: event topic does not match any declared signature", ErrConfirmationMismatch)
		}
	}
	return nil
}
