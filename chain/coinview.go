// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/cashnode/cashd/wire"
)

// txoFlags packs the small amount of per-output metadata the interpreter
// and coinbase-maturity checks need, kept separate from amount/script to
// match how densely these entries get allocated.
type txoFlags uint8

const tfCoinbase txoFlags = 1 << iota

// UTXOEntry is one unspent output: its value, locking script, the height
// it was mined at (for coinbase maturity), and whether it came from a
// coinbase transaction.
type UTXOEntry struct {
	Amount       int64
	ScriptPubKey []byte
	Height       uint64
	flags        txoFlags
}

// IsCoinbase reports whether this output's transaction was a coinbase.
func (e *UTXOEntry) IsCoinbase() bool {
	return e.flags&tfCoinbase == tfCoinbase
}

// NewUTXOEntry wraps a transaction output as a spendable UTXOEntry.
func NewUTXOEntry(txOut *wire.TxOut, isCoinbase bool, height uint64) *UTXOEntry {
	e := &UTXOEntry{Amount: txOut.Value, ScriptPubKey: txOut.ScriptPubKey, Height: height}
	if isCoinbase {
		e.flags |= tfCoinbase
	}
	return e
}

// View is an in-memory overlay of UTXO set changes accumulated while
// verifying a single block (or one step of a reorg). It never talks to a
// database directly: callers seed it from DB.BlockView and persist its net
// effect back through DB.Save/Reconnect.
type View struct {
	entries map[wire.Outpoint]*UTXOEntry
	spent   map[wire.Outpoint]*UTXOEntry
}

// NewView returns an empty overlay.
func NewView() *View {
	return &View{
		entries: make(map[wire.Outpoint]*UTXOEntry),
		spent:   make(map[wire.Outpoint]*UTXOEntry),
	}
}

// LookupEntry returns the UTXOEntry for outpoint if it is unspent in this
// view, or nil if it's unknown or already spent.
func (v *View) LookupEntry(outpoint wire.Outpoint) *UTXOEntry {
	return v.entries[outpoint]
}

// AddEntry seeds the view with a UTXO read from the backing DB. Used to
// populate the view before spending against it.
func (v *View) AddEntry(outpoint wire.Outpoint, entry *UTXOEntry) {
	v.entries[outpoint] = entry
}

// Spend removes outpoint's entry from the unspent set and records it as
// spent, returning false if outpoint was not present (caller reports
// bad-txns-inputs-missingorspent).
func (v *View) Spend(outpoint wire.Outpoint) (*UTXOEntry, bool) {
	entry, ok := v.entries[outpoint]
	if !ok {
		return nil, false
	}
	delete(v.entries, outpoint)
	v.spent[outpoint] = entry
	return entry, true
}

// AddTX adds every output of tx, mined at height, as a new unspent entry.
func (v *View) AddTX(tx *wire.MsgTx, height uint64) {
	isCoinbase := wire.IsCoinBase(tx)
	txHash := tx.TxHash()
	for i, txOut := range tx.TxOut {
		outpoint := wire.Outpoint{Hash: txHash, Index: uint32(i)}
		v.entries[outpoint] = NewUTXOEntry(txOut, isCoinbase, height)
	}
}

// SpentEntries returns every entry this view removed, keyed by the
// outpoint it used to occupy — what DB.Save/Reconnect persist as removed.
func (v *View) SpentEntries() map[wire.Outpoint]*UTXOEntry {
	return v.spent
}

// LiveEntries returns every outpoint this view currently holds unspent,
// whether seeded from the backing ChainDB or added by AddTX.
func (v *View) LiveEntries() map[wire.Outpoint]*UTXOEntry {
	return v.entries
}
