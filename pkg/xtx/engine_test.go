// Copyright 2025 Certen Protocol
//
// XTX Engine Tests

package xtx

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/certen/xcircuit/pkg/ledger"
	"github.com/certen/xcircuit/pkg/registry"
	"github.com/certen/xcircuit/pkg/sidefx"
	"github.com/certen/xcircuit/pkg/xdns"
)

type memKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemKV() *memKV { return &memKV{m: make(map[string][]byte)} }

func (k *memKV) Get(key []byte) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.m[string(key)], nil
}

func (k *memKV) Set(key, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[string(key)] = value
	return nil
}

type fakeBalances struct {
	mu       sync.Mutex
	balances map[string]*big.Int
}

func newFakeBalances(seed map[string]int64) *fakeBalances {
	b := &fakeBalances{balances: make(map[string]*big.Int)}
	for k, v := range seed {
		b.balances[k] = big.NewInt(v)
	}
	return b
}

func (b *fakeBalances) get(acct []byte) *big.Int {
	v, ok := b.balances[string(acct)]
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func (b *fakeBalances) Transfer(from, to []byte, amount *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal := b.get(from)
	if bal.Cmp(amount) < 0 {
		return sidefx.ErrInsufficientBalance
	}
	b.balances[string(from)] = new(big.Int).Sub(bal, amount)
	b.balances[string(to)] = new(big.Int).Add(b.get(to), amount)
	return nil
}

func (b *fakeBalances) TransferAsset(assetID uint32, from, to []byte, amount *big.Int) error {
	return b.Transfer(from, to, amount)
}

var (
	testVault     = []byte("vault")
	testTreasury  = []byte("treasury")
	testRequester = []byte("requester")
	testRelayer   = []byte("relayer")
	testTarget    = sidefx.TargetID{1, 2, 3, 4}
)

func newTestEngine(t *testing.T, seed map[string]int64) (*Engine, *fakeBalances) {
	t.Helper()
	kv := newMemKV()
	reg := registry.NewDefaultRegistry()
	dir := xdns.NewDirectory(kv)
	rec := &xdns.Record{
		Target:             testTarget,
		VerificationVendor: xdns.VendorParlia,
		Codec:              "scale",
		GatewayABI:         registry.DefaultABIConfig(),
		AllowedSideEffects: []xdns.AllowedSideEffect{
			{Selector: registry.SelectorFromName("transfer")},
		},
	}
	if err := dir.RegisterGateway(rec); err != nil {
		t.Fatalf("register gateway: %v", err)
	}
	bal := newFakeBalances(seed)
	led := ledger.NewLedger(kv, bal, ledger.Config{Vault: testVault, Treasury: testTreasury})
	eng := NewEngine(kv, reg, dir, led, nil)
	return eng, bal
}

func transferSFX(maxReward, insurance, reward int64) sidefx.SFX {
	tail, _ := packInsuranceReward(big.NewInt(insurance), big.NewInt(reward))
	return sidefx.SFX{
		Target:      testTarget,
		Action:      registry.SelectorFromName("transfer"),
		EncodedArgs: [][]byte{make([]byte, 20), make([]byte, 32), tail},
		MaxReward:   big.NewInt(maxReward),
		Insurance:   big.NewInt(insurance),
	}
}

// packInsuranceReward is the test-side mirror of sidefx.SplitInsuranceReward:
// 32-byte insurance followed by 32-byte reward, both big-endian.
func packInsuranceReward(insurance, reward *big.Int) ([]byte, error) {
	out := make([]byte, 64)
	insurance.FillBytes(out[:32])
	reward.FillBytes(out[32:])
	return out, nil
}

func TestHappyPathSingleTransfer(t *testing.T) {
	eng, bal := newTestEngine(t, map[string]int64{string(testRequester): 10, string(testRelayer): 10})

	sfx := transferSFX(3, 2, 3)
	xt, err := eng.OnExtrinsicsTrigger(Submission{
		Requester:  testRequester,
		Nonce:      1,
		SideEffect: [][]sidefx.SFX{{sfx}},
		Height:     100,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if xt.Status != sidefx.StatusPendingInsurance {
		t.Fatalf("expected PendingInsurance, got %s", xt.Status)
	}

	sfxID := sidefx.SideEffectID(xt.ID, 0)
	xt, err = eng.BondInsuranceDeposit(xt.ID, sfxID, testRelayer)
	if err != nil {
		t.Fatalf("bond: %v", err)
	}
	if xt.Status != sidefx.StatusReady {
		t.Fatalf("expected Ready after bonding, got %s", xt.Status)
	}

	xt, err = eng.ConfirmSideEffect(xt.ID, sfxID, &sidefx.Confirmation{Executioner: testRelayer, Output: []byte("ok")})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if xt.Status != sidefx.StatusFinishedCommitted {
		t.Fatalf("expected Committed, got %s", xt.Status)
	}

	if got := bal.get(testRelayer); got.Cmp(big.NewInt(10-2+3+2)) != 0 {
		t.Fatalf("relayer balance = %s, want %d", got, 10-2+3+2)
	}
	if got := bal.get(testVault); got.Sign() != 0 {
		t.Fatalf("vault should be drained to zero, got %s", got)
	}
}

func TestSequentialOrderingEnforced(t *testing.T) {
	eng, _ := newTestEngine(t, map[string]int64{string(testRequester): 10})

	a := sidefx.SFX{Target: testTarget, Action: registry.SelectorFromName("transfer"),
		EncodedArgs: [][]byte{make([]byte, 20), make([]byte, 32), nil}, MaxReward: big.NewInt(1)}
	b := a

	// Both side effects arrive in one caller-supplied group; the engine
	// reshapes a sequential submission into one side effect per step.
	xt, err := eng.OnExtrinsicsTrigger(Submission{
		Requester:  testRequester,
		Nonce:      1,
		Sequential: true,
		SideEffect: [][]sidefx.SFX{{a, b}},
		Height:     100,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if xt.Status != sidefx.StatusReady {
		t.Fatalf("expected Ready (no insurance required), got %s", xt.Status)
	}
	if len(xt.Steps) != 2 || len(xt.Steps[0]) != 1 || len(xt.Steps[1]) != 1 {
		t.Fatalf("expected sequential reshape into 2 one-slot steps, got %d steps", len(xt.Steps))
	}

	step1ID := sidefx.SideEffectID(xt.ID, 1)
	if _, err := eng.ConfirmSideEffect(xt.ID, step1ID, &sidefx.Confirmation{Executioner: testRelayer}); err == nil {
		t.Fatal("expected sequential-violation error confirming step 1 before step 0")
	}

	step0ID := sidefx.SideEffectID(xt.ID, 0)
	if _, err := eng.ConfirmSideEffect(xt.ID, step0ID, &sidefx.Confirmation{Executioner: testRelayer}); err != nil {
		t.Fatalf("confirm step 0: %v", err)
	}
	xt, err = eng.ConfirmSideEffect(xt.ID, step1ID, &sidefx.Confirmation{Executioner: testRelayer})
	if err != nil {
		t.Fatalf("confirm step 1: %v", err)
	}
	if xt.Status != sidefx.StatusFinishedCommitted {
		t.Fatalf("expected Committed, got %s", xt.Status)
	}
}

func TestNonSequentialConfirmsInAnyOrder(t *testing.T) {
	eng, _ := newTestEngine(t, map[string]int64{string(testRequester): 10})

	a := sidefx.SFX{Target: testTarget, Action: registry.SelectorFromName("transfer"),
		EncodedArgs: [][]byte{make([]byte, 20), make([]byte, 32), nil}, MaxReward: big.NewInt(1)}
	b := a

	// Caller-supplied grouping carries no ordering semantics: without the
	// sequential flag the two groups collapse into a single step.
	xt, err := eng.OnExtrinsicsTrigger(Submission{
		Requester:  testRequester,
		Nonce:      3,
		SideEffect: [][]sidefx.SFX{{a}, {b}},
		Height:     100,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(xt.Steps) != 1 || len(xt.Steps[0]) != 2 {
		t.Fatalf("expected collapse into a single 2-slot step, got %d steps", len(xt.Steps))
	}

	// Confirming the second slot first is fine in non-sequential mode.
	if _, err := eng.ConfirmSideEffect(xt.ID, sidefx.SideEffectID(xt.ID, 1), &sidefx.Confirmation{Executioner: testRelayer}); err != nil {
		t.Fatalf("confirm slot 1 first: %v", err)
	}
	xt, err = eng.ConfirmSideEffect(xt.ID, sidefx.SideEffectID(xt.ID, 0), &sidefx.Confirmation{Executioner: testRelayer})
	if err != nil {
		t.Fatalf("confirm slot 0: %v", err)
	}
	if xt.Status != sidefx.StatusFinishedCommitted {
		t.Fatalf("expected Committed, got %s", xt.Status)
	}
}

func TestInsuranceStatusFollowsRegistryRule(t *testing.T) {
	eng, _ := newTestEngine(t, map[string]int64{string(testRequester): 10, string(testRelayer): 10})

	// Declared Insurance field set, but an empty encoded_args tail: the
	// registry rule requires no bond, so the XTX goes straight to Ready
	// instead of waiting on a deposit that will never exist.
	declaredOnly := sidefx.SFX{
		Target:      testTarget,
		Action:      registry.SelectorFromName("transfer"),
		EncodedArgs: [][]byte{make([]byte, 20), make([]byte, 32), nil},
		MaxReward:   big.NewInt(1),
		Insurance:   big.NewInt(2),
	}
	xt, err := eng.OnExtrinsicsTrigger(Submission{
		Requester:  testRequester,
		Nonce:      11,
		SideEffect: [][]sidefx.SFX{{declaredOnly}},
		Height:     100,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if xt.Status != sidefx.StatusReady {
		t.Fatalf("expected Ready for an empty tail, got %s", xt.Status)
	}

	// The inverse: no declared Insurance field, but a non-empty tail. The
	// rule requires a bond, so the XTX waits in PendingInsurance and only
	// reaches Ready once the deposit is bonded.
	tail, _ := packInsuranceReward(big.NewInt(2), big.NewInt(3))
	ruleOnly := sidefx.SFX{
		Target:      testTarget,
		Action:      registry.SelectorFromName("transfer"),
		EncodedArgs: [][]byte{make([]byte, 20), make([]byte, 32), tail},
		MaxReward:   big.NewInt(3),
	}
	xt, err = eng.OnExtrinsicsTrigger(Submission{
		Requester:  testRequester,
		Nonce:      12,
		SideEffect: [][]sidefx.SFX{{ruleOnly}},
		Height:     100,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if xt.Status != sidefx.StatusPendingInsurance {
		t.Fatalf("expected PendingInsurance for a non-empty tail, got %s", xt.Status)
	}
	xt, err = eng.BondInsuranceDeposit(xt.ID, sidefx.SideEffectID(xt.ID, 0), testRelayer)
	if err != nil {
		t.Fatalf("bond: %v", err)
	}
	if xt.Status != sidefx.StatusReady {
		t.Fatalf("expected Ready after bonding, got %s", xt.Status)
	}
}

func TestTimeoutSlashesUnconfirmedBond(t *testing.T) {
	eng, bal := newTestEngine(t, map[string]int64{string(testRequester): 10, string(testRelayer): 10})

	sfx := transferSFX(3, 2, 3)
	xt, err := eng.OnExtrinsicsTrigger(Submission{
		Requester:  testRequester,
		Nonce:      7,
		SideEffect: [][]sidefx.SFX{{sfx}},
		TimeoutsAt: 110,
		Height:     100,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	sfxID := sidefx.SideEffectID(xt.ID, 0)
	if _, err := eng.BondInsuranceDeposit(xt.ID, sfxID, testRelayer); err != nil {
		t.Fatalf("bond: %v", err)
	}

	if err := eng.SweepTimeouts(xt.ID, 111); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	got, err := eng.GetXTX(xt.ID)
	if err != nil {
		t.Fatalf("get xtx: %v", err)
	}
	if got.Status != sidefx.StatusFinishedRevertTimedOut {
		t.Fatalf("expected RevertTimedOut, got %s", got.Status)
	}
	if got := bal.get(testRequester); got.Cmp(big.NewInt(10-3+2)) != 0 {
		t.Fatalf("requester should be refunded insurance (not reward): got %s", got)
	}
}

func TestRevertRefundsBondsWithoutReward(t *testing.T) {
	eng, bal := newTestEngine(t, map[string]int64{string(testRequester): 10, string(testRelayer): 10})

	sfx := transferSFX(3, 2, 3)
	xt, err := eng.OnExtrinsicsTrigger(Submission{
		Requester:  testRequester,
		Nonce:      9,
		SideEffect: [][]sidefx.SFX{{sfx}},
		Height:     100,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Revert is only permitted once the XTX has reached Ready.
	if err := eng.Revert(xt.ID); err == nil {
		t.Fatal("expected wrong-status error reverting a PendingInsurance xtx")
	}

	sfxID := sidefx.SideEffectID(xt.ID, 0)
	if _, err := eng.BondInsuranceDeposit(xt.ID, sfxID, testRelayer); err != nil {
		t.Fatalf("bond: %v", err)
	}
	if err := eng.Revert(xt.ID); err != nil {
		t.Fatalf("revert: %v", err)
	}

	got, err := eng.GetXTX(xt.ID)
	if err != nil {
		t.Fatalf("get xtx: %v", err)
	}
	if got.Status != sidefx.StatusFinishedReverted {
		t.Fatalf("expected Reverted, got %s", got.Status)
	}
	// The relayer's bond comes back; the escrowed reward stays in the vault.
	if got := bal.get(testRelayer); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("relayer should recover its bond in full, got %s", got)
	}
	if got := bal.get(testVault); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("vault should still hold the escrowed reward 3, got %s", got)
	}

	dep, err := eng.GetInsuranceDeposit(xt.ID, sfxID)
	if err != nil {
		t.Fatalf("get deposit: %v", err)
	}
	if dep.Status != sidefx.DepositRefunded {
		t.Fatalf("expected deposit refunded, got %s", dep.Status)
	}
}

func TestUnknownSideEffectConfirmationIsWrongStatus(t *testing.T) {
	eng, _ := newTestEngine(t, map[string]int64{string(testRequester): 10})
	sfx := sidefx.SFX{Target: testTarget, Action: registry.SelectorFromName("transfer"),
		EncodedArgs: [][]byte{make([]byte, 20), make([]byte, 32), nil}, MaxReward: big.NewInt(1)}
	xt, err := eng.OnExtrinsicsTrigger(Submission{Requester: testRequester, Nonce: 2, SideEffect: [][]sidefx.SFX{{sfx}}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	bogus := sidefx.SideEffectID(xt.ID, 99)
	if _, err := eng.ConfirmSideEffect(xt.ID, bogus, &sidefx.Confirmation{}); !errors.Is(err, sidefx.ErrWrongStatus) {
		t.Fatalf("expected ErrWrongStatus for unknown sfx id, got %v", err)
	}
}
