// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/cashnode/cashd/chainhash"

// nextPowerOfTwo returns the next highest power of two from a given number
// if it is not already a power of two, used to size the linear array
// backing a merkle tree of n leaves.
func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	exponent := 0
	for 1<<uint(exponent) < n {
		exponent++
	}
	return 1 << uint(exponent)
}

// hashMerkleBranches returns the double-SHA256 of the concatenation of left
// and right, one step of combining two tree nodes into their parent.
func hashMerkleBranches(left, right *chainhash.Hash) *chainhash.Hash {
	var buf [2 * chainhash.HashSize]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	h := chainhash.DoubleHashH(buf[:])
	return &h
}

// BuildMerkleTreeStore builds a merkle tree from the given transaction
// hashes and returns the backing array, stored as a linear array following
// the standard bitcoin convention: leaves first (padded to the next power
// of two by duplicating the last leaf when a level is odd), then each
// successive level's parents, with the final entry the root. A nil leaf
// (missing on the right) is paired with a duplicate of its left sibling.
func BuildMerkleTreeStore(transactions []*MsgTx) []*chainhash.Hash {
	nextPoT := nextPowerOfTwo(len(transactions))
	arraySize := nextPoT*2 - 1
	merkles := make([]*chainhash.Hash, arraySize)

	for i, tx := range transactions {
		h := tx.TxHash()
		merkles[i] = &h
	}

	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		case merkles[i] == nil:
			merkles[offset] = nil
		case merkles[i+1] == nil:
			merkles[offset] = hashMerkleBranches(merkles[i], merkles[i])
		default:
			merkles[offset] = hashMerkleBranches(merkles[i], merkles[i+1])
		}
		offset++
	}

	return merkles
}

// CalcMerkleRoot returns the merkle root of transactions, or the zero hash
// for an empty slice.
func CalcMerkleRoot(transactions []*MsgTx) chainhash.Hash {
	if len(transactions) == 0 {
		return chainhash.Hash{}
	}
	store := BuildMerkleTreeStore(transactions)
	return *store[len(store)-1]
}
