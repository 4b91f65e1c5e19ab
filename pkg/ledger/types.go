// Package ledger implements the Insurance/Reward Ledger (component E): it
// holds reward escrow for a requester, accepts and refunds relayer bond
// deposits, pays out on commit, and slashes on timeout. The Ledger is the
// sole authority that moves balances between a requester, a bonded
// relayer, and the vault account; the host's generic balances module is
// an external collaborator reached only through the Balances interface
// below, never implemented here.
package ledger

import "math/big"

// Balances is the host chain's account balance ledger. It is never
// implemented by this module, only called.
type Balances interface {
	// Transfer moves amount of the native host asset from one account to
	// another, failing atomically on insufficient balance.
	Transfer(from, to []byte, amount *big.Int) error
	// TransferAsset moves amount of a non-native asset, identified by
	// assetID, from one account to another.
	TransferAsset(assetID uint32, from, to []byte, amount *big.Int) error
}

// Config names the accounts the Ledger moves funds through.
type Config struct {
	// Vault is the well-known account that aggregates all in-flight
	// rewards and insurance bonds. Only the Ledger ever debits or
	// credits it.
	Vault []byte
	// Treasury receives forfeited insurance on RevertTimedOut when the
	// slashed deposit names no requester.
	Treasury []byte
}
