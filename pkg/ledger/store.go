package ledger

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/certen/xcircuit/pkg/sidefx"
)

// KV is the minimal key-value storage contract this package needs. It is
// satisfied directly by pkg/kvdb.KVAdapter.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

var (
	keyPaidPrefix     = []byte("ledger:paid:")
	keyRefundedPrefix = []byte("ledger:refunded:")
)

func paidKey(xtxID [32]byte, index uint32) []byte {
	k := append([]byte{}, keyPaidPrefix...)
	k = append(k, xtxID[:]...)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], index)
	return append(k, b[:]...)
}

func refundedKey(sfxID [32]byte) []byte {
	return append(append([]byte{}, keyRefundedPrefix...), sfxID[:]...)
}

// Ledger is the KV-backed implementation of the Insurance/Reward Ledger
// (component E). It owns no XTX, FSX, or InsuranceDeposit state itself —
// those belong exclusively to the XTX engine (component D) — it only
// moves balances and tracks, per (xtx_id, index), whether a payout or
// refund already happened, so a re-driven transition can never double-pay.
type Ledger struct {
	kv  KV
	bal Balances
	cfg Config
}

// NewLedger constructs a Ledger over the given KV idempotency store and
// host balances collaborator.
func NewLedger(kv KV, bal Balances, cfg Config) *Ledger {
	return &Ledger{kv: kv, bal: bal, cfg: cfg}
}

// alreadyPaid reports whether the slot at (xtxID, index) has already had
// its reward paid out, guarding against a re-applied Commit transition
// double-paying a relayer.
func (l *Ledger) alreadyPaid(xtxID [32]byte, index uint32) (bool, error) {
	b, err := l.kv.Get(paidKey(xtxID, index))
	if err != nil {
		return false, fmt.Errorf("check paid marker: %w", err)
	}
	return len(b) > 0, nil
}

func (l *Ledger) markPaid(xtxID [32]byte, index uint32) error {
	return l.kv.Set(paidKey(xtxID, index), []byte{1})
}

func (l *Ledger) alreadyRefunded(sfxID [32]byte) (bool, error) {
	b, err := l.kv.Get(refundedKey(sfxID))
	if err != nil {
		return false, fmt.Errorf("check refunded marker: %w", err)
	}
	return len(b) > 0, nil
}

func (l *Ledger) markRefunded(sfxID [32]byte) error {
	return l.kv.Set(refundedKey(sfxID), []byte{1})
}

// ChargeReward escrows an XTX's declared reward from the requester to the
// vault at submission time. Failure leaves no state persisted.
func (l *Ledger) ChargeReward(requester []byte, reward *big.Int) error {
	if reward == nil || reward.Sign() <= 0 {
		return nil
	}
	if err := l.bal.Transfer(requester, l.cfg.Vault, reward); err != nil {
		return fmt.Errorf("%w: charge reward: %v", sidefx.ErrInsufficientBalance, err)
	}
	return nil
}

// Charge escrows an arbitrary amount from an account to the vault. It
// backs both insurance bonding and any other up-front collection the
// engine needs, denominated in either the native asset or, when assetID
// is non-nil, the named non-native asset.
func (l *Ledger) Charge(account []byte, amount *big.Int, assetID *uint32) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	var err error
	if assetID != nil {
		err = l.bal.TransferAsset(*assetID, account, l.cfg.Vault, amount)
	} else {
		err = l.bal.Transfer(account, l.cfg.Vault, amount)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", sidefx.ErrInsufficientBalance, err)
	}
	return nil
}

// BondInsuranceDeposit charges a relayer's insurance to the vault. It is
// called from PendingInsurance → Bonded transitions; on failure the slot
// remains unbonded and no funds move.
func (l *Ledger) BondInsuranceDeposit(relayer []byte, deposit *sidefx.InsuranceDeposit) error {
	if deposit.Status != sidefx.DepositAwaitingBond {
		return fmt.Errorf("%w: deposit not awaiting bond", sidefx.ErrAlreadyBonded)
	}
	if err := l.Charge(relayer, deposit.Insurance, nil); err != nil {
		return err
	}
	deposit.BondedRelayer = relayer
	deposit.Status = sidefx.DepositBonded
	return nil
}

// PayoutFSX pays an FSX's promised reward to its bonded relayer (or, for
// a no-insurance slot, to the account named in its confirmation as
// executioner) and refunds any bonded insurance, on the transition to
// Committed. It is idempotent per (xtx_id, index): calling it twice for
// the same slot is a no-op the second time.
func (l *Ledger) PayoutFSX(xtxID [32]byte, fsx *sidefx.FSX, deposit *sidefx.InsuranceDeposit) error {
	paid, err := l.alreadyPaid(xtxID, fsx.Index)
	if err != nil {
		return err
	}
	if paid {
		return nil
	}

	payee := fsx.Input.EnforceExecutor
	reward := fsx.Input.MaxReward
	if fsx.BestBid != nil {
		payee = fsx.BestBid.Relayer
		reward = fsx.BestBid.Amount
	} else if fsx.Confirmed != nil && len(fsx.Confirmed.Executioner) > 0 {
		payee = fsx.Confirmed.Executioner
	}
	if len(payee) == 0 {
		return fmt.Errorf("%w: fsx %d", ErrNoPayee, fsx.Index)
	}
	if reward == nil || reward.Sign() <= 0 {
		reward = fsx.Input.MaxReward
	}

	if reward != nil && reward.Sign() > 0 {
		if err := l.transferFromVault(payee, reward, fsx.Input.RewardAssetID); err != nil {
			return fmt.Errorf("pay reward for fsx %d: %w", fsx.Index, err)
		}
	}

	if deposit != nil && deposit.Status == sidefx.DepositBonded {
		sfxID := sidefx.SideEffectID(xtxID, fsx.Index)
		if err := l.refundDeposit(sfxID, deposit); err != nil {
			return err
		}
	}

	return l.markPaid(xtxID, fsx.Index)
}

func (l *Ledger) refundDeposit(sfxID [32]byte, deposit *sidefx.InsuranceDeposit) error {
	refunded, err := l.alreadyRefunded(sfxID)
	if err != nil {
		return err
	}
	if refunded {
		return nil
	}
	if err := l.transferFromVault(deposit.BondedRelayer, deposit.Insurance, nil); err != nil {
		return fmt.Errorf("refund insurance: %w", err)
	}
	deposit.Status = sidefx.DepositRefunded
	return l.markRefunded(sfxID)
}

// RefundInsuranceDeposit returns a bonded insurance deposit to its
// relayer without paying any reward, on an explicit revert. Unlike the
// timeout path, no fault is assigned and nothing forfeits. Unbonded
// deposits hold no vault funds and release as a no-op.
func (l *Ledger) RefundInsuranceDeposit(sfxID [32]byte, deposit *sidefx.InsuranceDeposit) error {
	if deposit.Status != sidefx.DepositBonded {
		return nil
	}
	return l.refundDeposit(sfxID, deposit)
}

// SlashInsuranceDeposit forfeits a bonded insurance deposit to the
// requester (or, if unset, to the configured treasury) on
// RevertTimedOut. No reward is paid alongside a slash.
func (l *Ledger) SlashInsuranceDeposit(sfxID [32]byte, deposit *sidefx.InsuranceDeposit) error {
	if deposit.Status != sidefx.DepositBonded {
		// Slots never bonded hold no funds in the vault; releasing them
		// is a no-op.
		return nil
	}
	refunded, err := l.alreadyRefunded(sfxID)
	if err != nil {
		return err
	}
	if refunded {
		return nil
	}
	beneficiary := deposit.Requester
	if len(beneficiary) == 0 {
		beneficiary = l.cfg.Treasury
	}
	if err := l.transferFromVault(beneficiary, deposit.Insurance, nil); err != nil {
		return fmt.Errorf("slash insurance: %w", err)
	}
	deposit.Status = sidefx.DepositSlashed
	return l.markRefunded(sfxID)
}

func (l *Ledger) transferFromVault(to []byte, amount *big.Int, assetID *uint32) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	if assetID != nil {
		return l.bal.TransferAsset(*assetID, l.cfg.Vault, to, amount)
	}
	return l.bal.Transfer(l.cfg.Vault, to, amount)
}
