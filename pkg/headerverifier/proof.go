// Copyright 2025 Certen Protocol
//
// Merkle-Patricia Inclusion-Proof Verification

package headerverifier

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/trie"
)

// trieNodeHash is the key under which trie.Prove (and thus this package's
// counterpart verification) indexes a raw proof node: its own keccak256.
func trieNodeHash(node []byte) []byte {
	return crypto.Keccak256(node)
}

// proofDB adapts the ordered node list of a Proof into the
// ethdb.KeyValueReader a Merkle-Patricia trie walk expects: each node is
// keyed by its own keccak256 hash, exactly as trie.Prove populates one.
func proofDB(nodes [][]byte) *memorydb.Database {
	db := memorydb.New()
	for _, n := range nodes {
		key := common.BytesToHash(trieNodeHash(n))
		_ = db.Put(key[:], n)
	}
	return db
}

// VerifyInclusion walks a Merkle-Patricia-style trie from the given root
// (receipts_root or state_root) to prove that key maps to expected,
// using the ordered proof nodes submitted alongside a confirmation.
// Proof.Index is not consulted by the trie walk itself; it is only checked
// to name a node within Proof.Nodes. An empty expected value skips the
// terminal-value comparison, so only the key's presence is proven.
func (v *Verifier) VerifyInclusion(root [32]byte, key []byte, proof *Proof, expected []byte) error {
	if proof == nil || len(proof.Nodes) == 0 {
		return fmt.Errorf("%w: empty proof", ErrProof)
	}
	if int(proof.Index) >= len(proof.Nodes) {
		return fmt.Errorf("%w: terminal index %d out of range for %d nodes", ErrProof, proof.Index, len(proof.Nodes))
	}

	db := proofDB(proof.Nodes)
	value, err := trie.VerifyProof(common.BytesToHash(root[:]), key, db)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProof, err)
	}
	if value == nil {
		return fmt.Errorf("%w: key not present under root", ErrProof)
	}
	if len(expected) > 0 && !bytes.Equal(value, expected) {
		return fmt.Errorf("%w: terminal value mismatch", ErrProof)
	}
	return nil
}
