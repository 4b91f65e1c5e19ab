// Copyright 2025 Certen Protocol
//
// KV Adapter Tests

package kvdb

import (
	"testing"

	dbm "github.com/cometbft/cometbft-db"
)

func TestKVAdapterSetGetRoundTrip(t *testing.T) {
	a := NewKVAdapter(dbm.NewMemDB())
	if err := a.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := a.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("expected %q, got %q", "v", got)
	}
}

func TestKVAdapterGetMissingKeyReturnsNil(t *testing.T) {
	a := NewKVAdapter(dbm.NewMemDB())
	got, err := a.Get([]byte("missing"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %q", got)
	}
}

func TestKVAdapterNilDBIsNoop(t *testing.T) {
	a := NewKVAdapter(nil)
	if err := a.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("set on nil db should be a no-op, got: %v", err)
	}
	got, err := a.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get on nil db should be a no-op, got: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil from a nil-backed adapter, got %q", got)
	}
}

func TestKVAdapterOverwrite(t *testing.T) {
	a := NewKVAdapter(dbm.NewMemDB())
	if err := a.Set([]byte("k"), []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := a.Set([]byte("k"), []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := a.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected %q after overwrite, got %q", "v2", got)
	}
}
