// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"math/big"
	"time"

	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/wire"
)

// oneLsh256 is 1 shifted left 256 bits, used by CalcWork to turn a target
// into the amount of hashing effort it represents.
var oneLsh256 = new(big.Int).Lsh(big.NewInt(1), 256)

// Entry is a node in the tree of accepted blocks rooted at genesis, with
// exactly one parent: the best chain is the path from genesis to the
// entry of greatest cumulative chainwork among entries extending the
// longest accepted prefix.
type Entry struct {
	Hash      chainhash.Hash
	PrevHash  chainhash.Hash
	Height    uint64
	Time      time.Time
	Bits      uint32
	Version   int32
	ChainWork *big.Int

	parent   *Entry
	children []*Entry
}

// NewEntry builds the entry for header, parented under prev. prev is nil
// only for genesis.
func NewEntry(header *wire.BlockHeader, prev *Entry) *Entry {
	e := &Entry{
		Hash:     header.BlockHash(),
		PrevHash: header.PrevBlock,
		Time:     header.Timestamp,
		Bits:     header.Bits,
		Version:  header.Version,
	}
	work := CalcWork(header.Bits)
	if prev == nil {
		e.Height = 0
		e.ChainWork = work
	} else {
		e.Height = prev.Height + 1
		e.ChainWork = new(big.Int).Add(prev.ChainWork, work)
		e.parent = prev
		prev.children = append(prev.children, e)
	}
	return e
}

// Parent returns the entry's single predecessor, or nil at genesis.
func (e *Entry) Parent() *Entry {
	return e.parent
}

// Ancestor walks up Height-height parent links and returns the entry at
// that height on e's chain, or nil if height is out of range.
func (e *Entry) Ancestor(height uint64) *Entry {
	if height > e.Height {
		return nil
	}
	n := e
	for n != nil && n.Height > height {
		n = n.parent
	}
	return n
}

// RelativeAncestor returns the entry distance blocks back from e.
func (e *Entry) RelativeAncestor(distance uint64) *Entry {
	if distance > e.Height {
		return nil
	}
	return e.Ancestor(e.Height - distance)
}

// CalcWork computes the amount of work represented by a block with the
// given difficulty bits: the number of hashes, on average, required to
// produce a hash small enough to satisfy the target.
func CalcWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	denominator := new(big.Int).Add(target, big.NewInt(1))
	return new(big.Int).Div(oneLsh256, denominator)
}

// index is a hash-keyed lookup table over every known Entry, independent of
// which entries sit on the current best chain.
type index struct {
	entries map[chainhash.Hash]*Entry
}

func newIndex() *index {
	return &index{entries: make(map[chainhash.Hash]*Entry)}
}

func (idx *index) add(e *Entry) {
	idx.entries[e.Hash] = e
}

func (idx *index) lookup(hash chainhash.Hash) (*Entry, bool) {
	e, ok := idx.entries[hash]
	return e, ok
}

func (idx *index) haveEntry(hash chainhash.Hash) bool {
	_, ok := idx.entries[hash]
	return ok
}
