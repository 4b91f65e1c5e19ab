// Copyright 2025 Certen Protocol
//
// Side-Effect Kind Vtable Construction

package registry

import "github.com/certen/xcircuit/pkg/sidefx"

// Kind is one side-effect kind's declared contract: its argument schema,
// its confirmation schema, and the three-operation vtable the engine
// dispatches through. Selectors with identical schemas (most of the
// well-known kinds) share the default vtable; a kind only needs a custom
// function when its semantics genuinely diverge.
type Kind struct {
	Selector     sidefx.Selector
	Name         string
	ArgSchema    []FieldSchema
	Confirmation ConfirmationSchema

	ValidateArgs         func(cfg ABIConfig, sfx *sidefx.SFX, state *LocalState) error
	InsuranceRule        func(sfx *sidefx.SFX) (*InsuranceRequirement, error)
	ValidateConfirmation func(confirmed *sidefx.Confirmation) error
}

// newKind builds a Kind whose three vtable operations are the default,
// schema-driven implementations, unless overridden by the caller after
// construction.
func newKind(name string, schema []FieldSchema, confirmation ConfirmationSchema) *Kind {
	k := &Kind{
		Name:         name,
		Selector:     SelectorFromName(name),
		ArgSchema:    schema,
		Confirmation: confirmation,
	}
	k.ValidateArgs = func(cfg ABIConfig, sfx *sidefx.SFX, state *LocalState) error {
		return validateArity(k.ArgSchema, sfx.EncodedArgs, cfg, state)
	}
	k.InsuranceRule = defaultInsuranceRule
	k.ValidateConfirmation = func(confirmed *sidefx.Confirmation) error {
		return defaultValidateConfirmation(k.Confirmation, confirmed)
	}
	return k
}
