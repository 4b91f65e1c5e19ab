// Copyright 2025 Certen Protocol
//
// Well-Known Side-Effect Kinds

package registry

// NewDefaultRegistry returns a Registry pre-populated with the well-known
// side-effect kinds. Every kind except call:static and data ends its
// argument schema with an insurance_reward field, the canonical
// (insurance, reward) tail. The default insurance rule reads the last
// encoded argument whichever field it is, so for call:static and data it
// reads input or payload.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, k := range wellKnownKinds() {
		if err := r.RegisterKind(k); err != nil {
			// Only reachable if two well-known names collide on their
			// derived selector, which would be a bug in this list.
			panic(err)
		}
	}
	return r
}

func wellKnownKinds() []*Kind {
	transferEvent := [][]byte{[]byte("Transfer(address,address,uint256)")}
	callEvent := [][]byte{[]byte("Call(address,uint256,uint64,bytes)")}
	swapEvent := [][]byte{[]byte("Swap(address,uint256,uint256,address)")}
	liquidityEvent := [][]byte{[]byte("AddLiquidity(address,uint256,uint256)")}

	return []*Kind{
		newKind("transfer", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "value", Kind: FieldValue},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: transferEvent}),

		newKind("transfer:dirty", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "value", Kind: FieldValue},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: transferEvent}),

		newKind("call", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "value", Kind: FieldValue},
			{Name: "input", Kind: FieldDynamicBytes},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: callEvent, ExpectOutput: true}),

		newKind("call:static", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "input", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{ExpectOutput: true}),

		newKind("call:escrowed", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "value", Kind: FieldValue},
			{Name: "input", Kind: FieldDynamicBytes},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: callEvent, ExpectOutput: true}),

		newKind("swap", []FieldSchema{
			{Name: "pool", Kind: FieldAddress},
			{Name: "amount_in", Kind: FieldValue},
			{Name: "min_amount_out", Kind: FieldValue},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: swapEvent}),

		newKind("add_liquidity", []FieldSchema{
			{Name: "pool", Kind: FieldAddress},
			{Name: "amount_a", Kind: FieldValue},
			{Name: "amount_b", Kind: FieldValue},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: liquidityEvent}),

		newKind("data", []FieldSchema{
			{Name: "payload", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{ExpectOutput: true}),

		newKind("evm_call", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "value", Kind: FieldValue},
			{Name: "input", Kind: FieldDynamicBytes},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: callEvent, ExpectOutput: true}),

		newKind("wasm_call", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "input", Kind: FieldDynamicBytes},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{ExpectOutput: true}),

		newKind("composable_call", []FieldSchema{
			{Name: "steps", Kind: FieldDynamicBytes},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{ExpectOutput: true}),

		newKind("orml_transfer", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "asset_id", Kind: FieldScalar},
			{Name: "value", Kind: FieldValue},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: transferEvent}),

		newKind("assets_transfer", []FieldSchema{
			{Name: "dest", Kind: FieldAddress},
			{Name: "asset_id", Kind: FieldScalar},
			{Name: "value", Kind: FieldValue},
			{Name: "insurance_reward", Kind: FieldDynamicBytes},
		}, ConfirmationSchema{EventSignatures: transferEvent}),
	}
}
