// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/wire"
)

// DB is the persistence collaborator Chain delegates every durable
// read/write to. Implementations may be a durable on-disk store or, as in
// MemDB (memchaindb.go), a plain in-memory map — the on-disk wire format itself is
// outside this package's scope; only the interface shape is specified.
type DB interface {
	Open() error
	Close() error

	Tip() (*Entry, error)
	Entry(hash chainhash.Hash) (*Entry, bool)
	EntryAtHeight(height uint64) (*Entry, bool)
	Ancestor(e *Entry, height uint64) (*Entry, bool)
	Previous(e *Entry) (*Entry, bool)
	Next(e *Entry) (*Entry, bool)
	HasEntry(hash chainhash.Hash) bool

	Block(hash chainhash.Hash) (*wire.MsgBlock, bool)
	RawBlock(hash chainhash.Hash) ([]byte, bool)

	// BlockView returns the UTXO view a block needs seeded before its
	// inputs can be spent against it: one entry per outpoint its
	// transactions reference that isn't created earlier in the same block.
	BlockView(block *wire.MsgBlock) (*View, error)
	HasCoins(tx *wire.MsgTx) bool
	ReadCoin(outpoint wire.Outpoint) (*UTXOEntry, bool)

	// Save persists a connected block, its entry, and the resulting view.
	Save(e *Entry, block *wire.MsgBlock, view *View) error
	// Reconnect re-applies a previously saved alternate-chain block's
	// entry/view onto the main chain during a reorg.
	Reconnect(e *Entry, block *wire.MsgBlock, view *View) error
	// Disconnect removes e from the main chain, returning the view needed
	// to restore the UTXO set to its state immediately before e.
	Disconnect(e *Entry) (*View, error)

	// Reset rewinds the main chain to hashOrHeight and returns its Entry.
	Reset(hashOrHeight interface{}) (*Entry, error)

	// StateCacheGet/Set persist the BIP9 threshold-state cache across
	// process restarts; bit is the deployment's version bit.
	StateCacheGet(bit uint8, e *Entry) (ThresholdState, bool)
	StateCacheSet(bit uint8, e *Entry, state ThresholdState)
}
