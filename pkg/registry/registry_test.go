// Copyright 2025 Certen Protocol
//
// Side-Effect Registry Tests

package registry

import (
	"math/big"
	"testing"

	"github.com/certen/xcircuit/pkg/sidefx"
)

func transferSelector(t *testing.T) sidefx.Selector {
	t.Helper()
	return SelectorFromName("transfer")
}

func TestNewDefaultRegistry_HasWellKnownKinds(t *testing.T) {
	r := NewDefaultRegistry()
	for _, name := range []string{
		"transfer", "transfer:dirty", "call", "call:static", "call:escrowed",
		"swap", "add_liquidity", "data", "evm_call", "wasm_call",
		"composable_call", "orml_transfer", "assets_transfer",
	} {
		sel := SelectorFromName(name)
		if !r.HasKind(sel) {
			t.Errorf("expected well-known kind %q to be registered", name)
		}
	}
}

func TestValidateArgs_ArityMismatch(t *testing.T) {
	r := NewDefaultRegistry()
	sfx := &sidefx.SFX{
		Action:      transferSelector(t),
		EncodedArgs: [][]byte{make([]byte, 20)}, // missing value + tail
	}
	state := NewLocalState()
	err := r.ValidateArgs(nil, DefaultABIConfig(), sfx, state)
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestValidateArgs_BindsNamedFields(t *testing.T) {
	r := NewDefaultRegistry()
	dest := make([]byte, 20)
	dest[0] = 0xAB
	sfx := &sidefx.SFX{
		Action:      transferSelector(t),
		EncodedArgs: [][]byte{dest, make([]byte, 32), nil},
	}
	state := NewLocalState()
	if err := r.ValidateArgs(nil, DefaultABIConfig(), sfx, state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bound, ok := state.Bindings["dest"]
	if !ok {
		t.Fatal("expected dest to be bound")
	}
	if bound[0] != 0xAB {
		t.Errorf("bound dest mismatch")
	}
}

func TestCheckIfInsuranceRequired_EmptyTail(t *testing.T) {
	r := NewDefaultRegistry()
	sfx := &sidefx.SFX{
		Action:      transferSelector(t),
		EncodedArgs: [][]byte{make([]byte, 20), make([]byte, 32), nil},
	}
	req, err := r.CheckIfInsuranceRequired(sfx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req != nil {
		t.Error("empty tail should not require insurance")
	}
}

func TestCheckIfInsuranceRequired_NonEmptyTail(t *testing.T) {
	r := NewDefaultRegistry()
	tail := make([]byte, 4)
	tail[1] = 2 // insurance = 2
	tail[3] = 3 // reward = 3
	sfx := &sidefx.SFX{
		Action:      transferSelector(t),
		EncodedArgs: [][]byte{make([]byte, 20), make([]byte, 32), tail},
	}
	req, err := r.CheckIfInsuranceRequired(sfx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req == nil {
		t.Fatal("expected insurance requirement")
	}
	if req.Insurance.Cmp(big.NewInt(2)) != 0 || req.Reward.Cmp(big.NewInt(3)) != 0 {
		t.Errorf("got insurance=%s reward=%s", req.Insurance, req.Reward)
	}
}

func TestValidateConfirmation_EventTopicChecked(t *testing.T) {
	r := NewDefaultRegistry()
	fsx := &sidefx.FSX{Input: sidefx.SFX{Action: transferSelector(t)}}

	fsx.Confirmed = &sidefx.Confirmation{Output: make([]byte, 40)}
	if err := r.ValidateConfirmation(fsx); err == nil {
		t.Fatal("expected mismatch for an output not led by a declared topic")
	}

	fsx.Confirmed = &sidefx.Confirmation{Output: EventTopic([]byte("Transfer(address,address,uint256)"))}
	if err := r.ValidateConfirmation(fsx); err != nil {
		t.Fatalf("expected topic-led output to validate: %v", err)
	}
}

func TestGetKind_UnsupportedSelector(t *testing.T) {
	r := NewRegistry()
	var bogus sidefx.Selector
	if _, err := r.GetKind(bogus); err == nil {
		t.Fatal("expected unsupported side effect error")
	}
}

func TestRegisterKind_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	k := newKind("transfer", nil, ConfirmationSchema{})
	if err := r.RegisterKind(k); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := r.RegisterKind(k); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
