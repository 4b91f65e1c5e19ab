// Copyright 2025 Certen Protocol
//
// Target Directory Tests

package xdns

import (
	"testing"

	"github.com/certen/xcircuit/pkg/registry"
	"github.com/certen/xcircuit/pkg/sidefx"
)

// memKV is a trivial in-memory KV used only for tests; production code
// always goes through pkg/kvdb.KVAdapter.
type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Get(key []byte) ([]byte, error) { return m.data[string(key)], nil }
func (m *memKV) Set(key, value []byte) error {
	if len(value) == 0 {
		delete(m.data, string(key))
		return nil
	}
	m.data[string(key)] = value
	return nil
}

func testTarget() sidefx.TargetID {
	return sidefx.TargetID{0xbc, 0x00, 0x00, 0x38}
}

func TestRegisterGateway_RejectsDuplicate(t *testing.T) {
	d := NewDirectory(newMemKV())
	rec := &Record{Target: testTarget(), VerificationVendor: VendorParlia}
	if err := d.RegisterGateway(rec); err != nil {
		t.Fatalf("first register should succeed: %v", err)
	}
	if err := d.RegisterGateway(rec); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestGetABIForSelector_UnknownTarget(t *testing.T) {
	d := NewDirectory(newMemKV())
	_, _, err := d.GetABIForSelector(testTarget(), registry.SelectorFromName("transfer"))
	if err != ErrUnknownTarget {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestExtendSfxAbi_AppendsWithoutOverwriting(t *testing.T) {
	d := NewDirectory(newMemKV())
	target := testTarget()
	transferSel := registry.SelectorFromName("transfer")
	callSel := registry.SelectorFromName("call")

	if err := d.RegisterGateway(&Record{
		Target:             target,
		AllowedSideEffects: []AllowedSideEffect{{Selector: transferSel}},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := d.ExtendSfxAbi(target, AllowedSideEffect{Selector: callSel}); err != nil {
		t.Fatalf("extend: %v", err)
	}

	rec, err := d.Get(target)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !rec.Allows(transferSel) || !rec.Allows(callSel) {
		t.Error("expected both selectors to be allowed after extend")
	}
}

func TestPurgeGatewayRecord_RejectsWhileReferenced(t *testing.T) {
	d := NewDirectory(newMemKV())
	target := testTarget()
	if err := d.RegisterGateway(&Record{Target: target}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := d.PurgeGatewayRecord(target, func(sidefx.TargetID) bool { return false })
	if err != ErrPurgeWhileReference {
		t.Fatalf("expected ErrPurgeWhileReference, got %v", err)
	}
	if err := d.PurgeGatewayRecord(target, func(sidefx.TargetID) bool { return true }); err != nil {
		t.Fatalf("expected purge to succeed once unreferenced: %v", err)
	}
}

func TestFetchAll_ReturnsRegisteredRecords(t *testing.T) {
	d := NewDirectory(newMemKV())
	t1 := sidefx.TargetID{1, 0, 0, 0}
	t2 := sidefx.TargetID{2, 0, 0, 0}
	_ = d.RegisterGateway(&Record{Target: t1})
	_ = d.RegisterGateway(&Record{Target: t2})

	all, err := d.FetchAll()
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 records, got %d", len(all))
	}
}
