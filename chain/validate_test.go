// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"math"
	"testing"
	"time"

	"github.com/cashnode/cashd/chaincfg"
	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/txscript"
	"github.com/cashnode/cashd/wire"
)

func TestCalcBlockSubsidyHalvings(t *testing.T) {
	params := &chaincfg.MainNetParams
	tests := []struct {
		height uint64
		want   int64
	}{
		{0, baseSubsidy},
		{params.SubsidyReductionInterval - 1, baseSubsidy},
		{params.SubsidyReductionInterval, baseSubsidy / 2},
		{params.SubsidyReductionInterval * 2, baseSubsidy / 4},
	}
	for _, test := range tests {
		got := CalcBlockSubsidy(test.height, params)
		if got != test.want {
			t.Errorf("CalcBlockSubsidy(%d): got %d want %d", test.height, got, test.want)
		}
	}
}

func coinbaseTx() *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{
			{
				PreviousOutpoint: wire.Outpoint{Index: math.MaxUint32},
				Sequence:         wire.MaxTxInSequenceNum,
			},
		},
		TxOut: []*wire.TxOut{{Value: 1}},
	}
}

func TestIsFinalizedTransactionNoLockTime(t *testing.T) {
	tx := coinbaseTx()
	tx.LockTime = 0
	if !IsFinalizedTransaction(tx, 100, time.Unix(1, 0)) {
		t.Error("a zero locktime transaction is always finalized")
	}
}

func TestIsFinalizedTransactionHeightLock(t *testing.T) {
	tx := coinbaseTx()
	tx.LockTime = 100
	tx.TxIn[0].Sequence = 1 // not MaxTxInSequenceNum

	if IsFinalizedTransaction(tx, 50, time.Unix(1, 0)) {
		t.Error("height-locked tx maturing at 100 must not finalize at height 50")
	}
	if !IsFinalizedTransaction(tx, 101, time.Unix(1, 0)) {
		t.Error("height-locked tx maturing at 100 must finalize at height 101")
	}
}

func TestIsFinalizedTransactionFinalSequenceOverridesLockTime(t *testing.T) {
	tx := coinbaseTx()
	tx.LockTime = 1000000
	tx.TxIn[0].Sequence = wire.MaxTxInSequenceNum

	if !IsFinalizedTransaction(tx, 1, time.Unix(1, 0)) {
		t.Error("a final sequence number must finalize the tx regardless of LockTime")
	}
}

func TestSequenceLockActive(t *testing.T) {
	lock := &SequenceLock{Seconds: -1, BlockHeight: -1}
	if !sequenceLockActive(lock, 1, time.Unix(0, 0)) {
		t.Error("a lock with no constraints must always be active")
	}

	blocked := &SequenceLock{Seconds: -1, BlockHeight: 100}
	if sequenceLockActive(blocked, 100, time.Unix(0, 0)) {
		t.Error("block-height lock must not be active at its own maturity height")
	}
	if !sequenceLockActive(blocked, 101, time.Unix(0, 0)) {
		t.Error("block-height lock must be active past its maturity height")
	}
}

func TestLessTxID(t *testing.T) {
	a := chainhash.Hash{0x01}
	b := chainhash.Hash{0x02}
	if !lessTxID(a, b) {
		t.Error("expected a < b")
	}
	if lessTxID(b, a) {
		t.Error("expected b to not be < a")
	}
	if lessTxID(a, a) {
		t.Error("a hash must not be less than itself")
	}
}

func TestExtractCoinbaseHeight(t *testing.T) {
	script, err := txscript.NewScriptBuilder().AddInt64(42).Script()
	if err != nil {
		t.Fatalf("building script: %v", err)
	}
	tx := coinbaseTx()
	tx.TxIn[0].SignatureScript = script

	height, err := extractCoinbaseHeight(tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if height != 42 {
		t.Errorf("got height %d want 42", height)
	}
}

func TestExtractCoinbaseHeightMissing(t *testing.T) {
	tx := coinbaseTx()
	tx.TxIn[0].SignatureScript = nil
	if _, err := extractCoinbaseHeight(tx); err == nil {
		t.Fatal("expected error when signature script carries no height push")
	}
}

func TestCalcSequenceLockCoinbaseUnconstrained(t *testing.T) {
	tx := coinbaseTx()
	view := NewView()
	entries := buildChain(1, 0x1d00ffff)

	lock, err := calcSequenceLock(entries[0], view, tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lock.Seconds != -1 || lock.BlockHeight != -1 {
		t.Errorf("coinbase sequence lock must be unconstrained: got %+v", lock)
	}
}
