// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/cashnode/cashd/chainhash"
)

func sampleTx() *MsgTx {
	tx := &MsgTx{Version: 1, LockTime: 0}
	tx.AddTxIn(NewTxIn(&Outpoint{Index: 0xffffffff}, []byte{0x51}))
	tx.AddTxOut(NewTxOut(5000000000, []byte{0x76, 0xa9}))
	return tx
}

func TestMsgTxSerializeDeserializeRoundTrip(t *testing.T) {
	tx := sampleTx()

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if buf.Len() != tx.SerializeSize() {
		t.Errorf("SerializeSize: got %d want %d", tx.SerializeSize(), buf.Len())
	}

	var got MsgTx
	if err := got.Deserialize(&buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if got.Version != tx.Version || got.LockTime != tx.LockTime {
		t.Error("version/locktime mismatch after round trip")
	}
	if len(got.TxIn) != 1 || got.TxIn[0].Sequence != tx.TxIn[0].Sequence {
		t.Error("txin mismatch after round trip")
	}
	if len(got.TxOut) != 1 || got.TxOut[0].Value != tx.TxOut[0].Value {
		t.Error("txout mismatch after round trip")
	}
}

func TestMsgTxHashDeterministic(t *testing.T) {
	tx := sampleTx()
	h1 := tx.TxHash()
	h2 := tx.TxHash()
	if h1 != h2 {
		t.Error("TxHash must be deterministic for an unchanged transaction")
	}

	tx.LockTime = 1
	if tx.TxHash() == h1 {
		t.Error("changing LockTime must change TxHash")
	}
}

func TestMsgTxCopyIsIndependent(t *testing.T) {
	tx := sampleTx()
	clone := tx.Copy()

	clone.TxIn[0].SignatureScript[0] = 0xff
	if tx.TxIn[0].SignatureScript[0] == 0xff {
		t.Error("Copy must deep-copy signature scripts")
	}

	clone.TxOut[0].Value = 1
	if tx.TxOut[0].Value == 1 {
		t.Error("Copy must not alias the original's outputs")
	}
}

func TestIsCoinBase(t *testing.T) {
	coinbase := &MsgTx{
		TxIn: []*TxIn{
			{PreviousOutpoint: Outpoint{Hash: chainhash.Hash{}, Index: 0xffffffff}},
		},
	}
	if !IsCoinBase(coinbase) {
		t.Error("expected a single input with the zero-hash/max-index outpoint to be a coinbase")
	}

	nonCoinbase := sampleTx()
	nonCoinbase.TxIn[0].PreviousOutpoint = Outpoint{Hash: chainhash.Hash{0x01}, Index: 0}
	if IsCoinBase(nonCoinbase) {
		t.Error("a transaction with a real previous outpoint must not be a coinbase")
	}

	multiInput := sampleTx()
	multiInput.AddTxIn(NewTxIn(&Outpoint{Index: 0xffffffff}, nil))
	if IsCoinBase(multiInput) {
		t.Error("a transaction with more than one input must not be a coinbase")
	}
}

func TestOutpointString(t *testing.T) {
	op := Outpoint{Index: 7}
	want := op.Hash.String() + ":7"
	if got := op.String(); got != want {
		t.Errorf("Outpoint.String: got %q want %q", got, want)
	}
}
