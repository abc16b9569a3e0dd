// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/wire"
)

// MemDB is a reference DB implementation backed entirely by in-memory maps.
// It exists for tests and for callers that don't need durability across
// restarts; the on-disk format a production store would use is explicitly
// out of this package's scope.
type MemDB struct {
	entries     map[chainhash.Hash]*Entry
	blocks      map[chainhash.Hash]*wire.MsgBlock
	heightIndex map[uint64]*Entry
	utxos       map[wire.Outpoint]*UTXOEntry
	tip         *Entry
	stateCache  *thresholdCache
}

// NewMemDB returns an empty MemDB. Open must still be called before use.
func NewMemDB() *MemDB {
	return &MemDB{}
}

func (db *MemDB) Open() error {
	db.entries = make(map[chainhash.Hash]*Entry)
	db.blocks = make(map[chainhash.Hash]*wire.MsgBlock)
	db.heightIndex = make(map[uint64]*Entry)
	db.utxos = make(map[wire.Outpoint]*UTXOEntry)
	db.stateCache = newThresholdCache(256)
	return nil
}

func (db *MemDB) Close() error {
	return nil
}

func (db *MemDB) Tip() (*Entry, error) {
	if db.tip == nil {
		return nil, errors.New("chain: no tip set")
	}
	return db.tip, nil
}

func (db *MemDB) Entry(hash chainhash.Hash) (*Entry, bool) {
	e, ok := db.entries[hash]
	return e, ok
}

func (db *MemDB) EntryAtHeight(height uint64) (*Entry, bool) {
	e, ok := db.heightIndex[height]
	return e, ok
}

func (db *MemDB) Ancestor(e *Entry, height uint64) (*Entry, bool) {
	a := e.Ancestor(height)
	return a, a != nil
}

func (db *MemDB) Previous(e *Entry) (*Entry, bool) {
	if e.parent == nil {
		return nil, false
	}
	return e.parent, true
}

func (db *MemDB) Next(e *Entry) (*Entry, bool) {
	next, ok := db.heightIndex[e.Height+1]
	if !ok || next.PrevHash != e.Hash {
		return nil, false
	}
	return next, true
}

func (db *MemDB) HasEntry(hash chainhash.Hash) bool {
	_, ok := db.entries[hash]
	return ok
}

func (db *MemDB) Block(hash chainhash.Hash) (*wire.MsgBlock, bool) {
	b, ok := db.blocks[hash]
	return b, ok
}

func (db *MemDB) RawBlock(hash chainhash.Hash) ([]byte, bool) {
	b, ok := db.blocks[hash]
	if !ok {
		return nil, false
	}
	var buf bytes.Buffer
	if err := b.Serialize(&buf); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// BlockView seeds a View with the current unspent entry for every outpoint
// block's transactions reference, so verifyInputs can spend against it.
func (db *MemDB) BlockView(block *wire.MsgBlock) (*View, error) {
	view := NewView()
	for _, tx := range block.Transactions {
		if wire.IsCoinBase(tx) {
			continue
		}
		for _, txIn := range tx.TxIn {
			if entry, ok := db.utxos[txIn.PreviousOutpoint]; ok {
				view.AddEntry(txIn.PreviousOutpoint, entry)
			}
		}
	}
	return view, nil
}

func (db *MemDB) HasCoins(tx *wire.MsgTx) bool {
	hash := tx.TxHash()
	for i := range tx.TxOut {
		if _, ok := db.utxos[wire.Outpoint{Hash: hash, Index: uint32(i)}]; ok {
			return true
		}
	}
	return false
}

func (db *MemDB) ReadCoin(outpoint wire.Outpoint) (*UTXOEntry, bool) {
	e, ok := db.utxos[outpoint]
	return e, ok
}

// Save persists e/block and applies view's net effect to the confirmed
// UTXO set, advancing the tip to e.
func (db *MemDB) Save(e *Entry, block *wire.MsgBlock, view *View) error {
	db.entries[e.Hash] = e
	db.blocks[e.Hash] = block
	db.heightIndex[e.Height] = e
	db.applyView(view)
	db.tip = e
	return nil
}

func (db *MemDB) Reconnect(e *Entry, block *wire.MsgBlock, view *View) error {
	return db.Save(e, block, view)
}

// Disconnect removes e from the main chain, reverting the UTXO set to its
// pre-e state, and returns the view representing what was undone.
func (db *MemDB) Disconnect(e *Entry) (*View, error) {
	block, ok := db.blocks[e.Hash]
	if !ok {
		return nil, errors.Errorf("chain: no block stored for %s", e.Hash)
	}

	undo := NewView()
	for _, tx := range block.Transactions {
		hash := tx.TxHash()
		for i := range tx.TxOut {
			outpoint := wire.Outpoint{Hash: hash, Index: uint32(i)}
			if entry, ok := db.utxos[outpoint]; ok {
				undo.spent[outpoint] = entry
				delete(db.utxos, outpoint)
			}
		}
	}
	// Restoring the outputs e's transactions spent is the caller's
	// responsibility: it holds the original View from when e was
	// connected and re-adds those entries after Disconnect returns.

	delete(db.heightIndex, e.Height)
	if db.tip != nil && db.tip.Hash == e.Hash {
		db.tip = e.parent
	}
	return undo, nil
}

func (db *MemDB) applyView(view *View) {
	for outpoint := range view.SpentEntries() {
		delete(db.utxos, outpoint)
	}
	for outpoint, entry := range view.LiveEntries() {
		db.utxos[outpoint] = entry
	}
}

// Reset rewinds to hashOrHeight (a chainhash.Hash or a uint64 height).
func (db *MemDB) Reset(hashOrHeight interface{}) (*Entry, error) {
	var target *Entry
	switch v := hashOrHeight.(type) {
	case chainhash.Hash:
		e, ok := db.entries[v]
		if !ok {
			return nil, errors.Errorf("chain: unknown reset hash %s", v)
		}
		target = e
	case uint64:
		e, ok := db.heightIndex[v]
		if !ok {
			return nil, errors.Errorf("chain: unknown reset height %d", v)
		}
		target = e
	default:
		return nil, errors.Errorf("chain: invalid reset target %v", hashOrHeight)
	}

	for h := range db.heightIndex {
		if h > target.Height {
			delete(db.heightIndex, h)
		}
	}
	db.tip = target
	return target, nil
}

func (db *MemDB) StateCacheGet(bit uint8, e *Entry) (ThresholdState, bool) {
	return db.stateCache.get(bit, e)
}

func (db *MemDB) StateCacheSet(bit uint8, e *Entry, state ThresholdState) {
	db.stateCache.set(bit, e, state)
}
