// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"math"
	"testing"

	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/wire"
)

func TestUTXOEntryIsCoinbase(t *testing.T) {
	e := NewUTXOEntry(&wire.TxOut{Value: 100}, true, 5)
	if !e.IsCoinbase() {
		t.Error("expected IsCoinbase() true")
	}

	e2 := NewUTXOEntry(&wire.TxOut{Value: 100}, false, 5)
	if e2.IsCoinbase() {
		t.Error("expected IsCoinbase() false")
	}
}

func TestViewSpendLookup(t *testing.T) {
	v := NewView()
	op := wire.Outpoint{Hash: chainhash.Hash{0x01}, Index: 0}
	entry := NewUTXOEntry(&wire.TxOut{Value: 50}, false, 1)
	v.AddEntry(op, entry)

	if got := v.LookupEntry(op); got != entry {
		t.Fatalf("LookupEntry: got %v want %v", got, entry)
	}

	spent, ok := v.Spend(op)
	if !ok || spent != entry {
		t.Fatalf("Spend: got %v, %v want %v, true", spent, ok, entry)
	}

	if v.LookupEntry(op) != nil {
		t.Error("spent entry must no longer be looked up as unspent")
	}

	if _, ok := v.Spend(op); ok {
		t.Error("spending an already-spent outpoint must fail")
	}

	spentEntries := v.SpentEntries()
	if spentEntries[op] != entry {
		t.Error("SpentEntries must record the spent entry")
	}
}

func TestViewAddTX(t *testing.T) {
	v := NewView()
	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{
			{
				PreviousOutpoint: wire.Outpoint{Index: math.MaxUint32},
				Sequence:         math.MaxUint32,
			},
		},
		TxOut: []*wire.TxOut{
			{Value: 10},
			{Value: 20},
		},
	}

	v.AddTX(tx, 7)

	live := v.LiveEntries()
	if len(live) != 2 {
		t.Fatalf("LiveEntries: got %d entries want 2", len(live))
	}

	txHash := tx.TxHash()
	out0 := wire.Outpoint{Hash: txHash, Index: 0}
	entry0, ok := live[out0]
	if !ok || entry0.Amount != 10 {
		t.Fatalf("output 0: got %v, %v want amount 10", entry0, ok)
	}

	if wire.IsCoinBase(tx) && !entry0.IsCoinbase() {
		t.Error("a coinbase tx's outputs must be marked coinbase")
	}
}
