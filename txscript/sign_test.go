// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/cashnode/cashd/wire"
)

func signTestTx() *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{
			{PreviousOutpoint: wire.Outpoint{Index: 0}, Sequence: wire.MaxTxInSequenceNum},
		},
		TxOut: []*wire.TxOut{{Value: 1000}},
	}
}

func TestRawTxInECDSASignatureAppendsHashType(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	tx := signTestTx()
	script := []byte{OpDup, OpHash160}

	sig, err := RawTxInECDSASignature(tx, 0, script, SigHashAll|SigHashForkID, key, 1000, nil)
	if err != nil {
		t.Fatalf("RawTxInECDSASignature: %v", err)
	}
	if len(sig) == 0 {
		t.Fatal("expected a non-empty signature")
	}
	if SigHashType(sig[len(sig)-1]) != SigHashAll|SigHashForkID {
		t.Errorf("trailing hash type byte: got 0x%x want 0x%x",
			sig[len(sig)-1], SigHashAll|SigHashForkID)
	}
}

func TestRawTxInSchnorrSignatureAppendsHashType(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	tx := signTestTx()
	script := []byte{OpDup, OpHash160}

	sig, err := RawTxInSchnorrSignature(tx, 0, script, SigHashAll|SigHashForkID, key, 1000, nil)
	if err != nil {
		t.Fatalf("RawTxInSchnorrSignature: %v", err)
	}
	// A raw Schnorr signature is always 64 bytes, plus the hash type byte.
	if len(sig) != 65 {
		t.Errorf("got signature length %d want 65", len(sig))
	}
	if SigHashType(sig[len(sig)-1]) != SigHashAll|SigHashForkID {
		t.Errorf("trailing hash type byte: got 0x%x want 0x%x",
			sig[len(sig)-1], SigHashAll|SigHashForkID)
	}
}

func TestSignatureScriptBuildsTwoPushes(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	tx := signTestTx()
	script := []byte{OpDup, OpHash160}

	sigScript, err := SignatureScript(tx, 0, script, SigHashAll|SigHashForkID, key, 1000, true, true)
	if err != nil {
		t.Fatalf("SignatureScript: %v", err)
	}

	pops, err := parseScript(sigScript)
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if len(pops) != 2 {
		t.Fatalf("got %d pushes want 2 (signature, pubkey)", len(pops))
	}
	for i, pop := range pops {
		if !pop.isPush() {
			t.Errorf("push %d: opcode %v is not a data push", i, pop.opcode.name)
		}
	}

	pubKeyData := pops[1].data
	if len(pubKeyData) != 33 {
		t.Errorf("compressed pubkey push: got %d bytes want 33", len(pubKeyData))
	}
}

func TestMergeScriptsPrefersNonEmptySigScript(t *testing.T) {
	sigScript, err := NewScriptBuilder().AddOp(OpTrue).Script()
	if err != nil {
		t.Fatalf("building sigScript: %v", err)
	}
	prevScript := []byte{OpFalse}

	merged, err := mergeScripts(sigScript, prevScript)
	if err != nil {
		t.Fatalf("mergeScripts: %v", err)
	}
	if string(merged) != string(sigScript) {
		t.Error("mergeScripts should keep a longer, non-empty sigScript")
	}
}

func TestMergeScriptsFallsBackOnEmptySigScript(t *testing.T) {
	prevScript := []byte{OpFalse}
	merged, err := mergeScripts(nil, prevScript)
	if err != nil {
		t.Fatalf("mergeScripts: %v", err)
	}
	if string(merged) != string(prevScript) {
		t.Error("mergeScripts must fall back to prevScript for an empty sigScript")
	}
}

func TestMergeScriptsFallsBackWhenNotLonger(t *testing.T) {
	prevScript := []byte{OpFalse}
	merged, err := mergeScripts([]byte{OpTrue}, prevScript)
	if err != nil {
		t.Fatalf("mergeScripts: %v", err)
	}
	if string(merged) != string(prevScript) {
		t.Error("mergeScripts must fall back to prevScript when sigScript is not longer")
	}
}
