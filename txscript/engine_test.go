// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"
	"testing"

	"golang.org/x/crypto/ripemd160"

	"github.com/cashnode/cashd/wire"
)

func hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

func engineTestTx(sigScript []byte) *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{
			{
				PreviousOutpoint: wire.Outpoint{Index: 0},
				SignatureScript:  sigScript,
				Sequence:         wire.MaxTxInSequenceNum,
			},
		},
		TxOut: []*wire.TxOut{{Value: 1}},
	}
}

func TestEngineExecuteSuccess(t *testing.T) {
	tx := engineTestTx([]byte{OpTrue})
	vm, err := NewEngine([]byte{OpTrue}, tx, 0, ScriptNoFlags, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Errorf("Execute: unexpected error: %v", err)
	}
}

func TestEngineExecuteFalseResult(t *testing.T) {
	tx := engineTestTx([]byte{OpTrue})
	vm, err := NewEngine([]byte{OpFalse}, tx, 0, ScriptNoFlags, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := vm.Execute(); err == nil {
		t.Error("Execute: expected an error for a script ending with a false top stack entry")
	}
}

func TestEngineCleanStackViolation(t *testing.T) {
	tx := engineTestTx([]byte{OpTrue})
	vm, err := NewEngine([]byte{OpTrue}, tx, 0, ScriptVerifyCleanStack, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	err = vm.Execute()
	if err == nil {
		t.Fatal("expected ErrCleanStack for a two-element final stack")
	}
	if !IsErrorCode(err, ErrCleanStack) {
		t.Errorf("got %v want ErrCleanStack", err)
	}
}

func TestEngineEmptyScriptsRejected(t *testing.T) {
	tx := engineTestTx(nil)
	if _, err := NewEngine(nil, tx, 0, ScriptNoFlags, 0, nil, nil); err == nil {
		t.Error("expected an error when both scripts are empty")
	}
}

func TestEngineOutOfRangeInputIndex(t *testing.T) {
	tx := engineTestTx([]byte{OpTrue})
	if _, err := NewEngine([]byte{OpTrue}, tx, 5, ScriptNoFlags, 0, nil, nil); err == nil {
		t.Error("expected an error for an out-of-range input index")
	}
}

func TestEnginePayToScriptHashRequiresPushOnlySig(t *testing.T) {
	redeemScript := []byte{OpTrue}
	scriptPubKey := append([]byte{OpHash160, OpData20}, make([]byte, 20)...)
	scriptPubKey = append(scriptPubKey, OpEqual)

	sigScript := append([]byte{OpDup, byte(len(redeemScript))}, redeemScript...)

	tx := engineTestTx(sigScript)
	if _, err := NewEngine(scriptPubKey, tx, 0, ScriptBip16, 0, nil, nil); err == nil {
		t.Error("expected an error: a P2SH sigScript containing OP_DUP is not push only")
	}
}

func TestCheckHashTypeEncodingRequiresForkID(t *testing.T) {
	vm := &Engine{flags: ScriptEnableSighashForkID}
	if err := vm.checkHashTypeEncoding(SigHashAll); err == nil {
		t.Error("expected an error when the FORKID bit is missing but required")
	}
	if err := vm.checkHashTypeEncoding(SigHashAll | SigHashForkID); err != nil {
		t.Errorf("unexpected error with FORKID set: %v", err)
	}
}

func TestCheckHashTypeEncodingRejectsForkIDWhenDisabled(t *testing.T) {
	vm := &Engine{}
	if err := vm.checkHashTypeEncoding(SigHashAll | SigHashForkID); err == nil {
		t.Error("expected an error when FORKID is set but not enabled")
	}
}

func TestCheckPubKeyEncoding(t *testing.T) {
	vm := &Engine{}
	compressed := make([]byte, 33)
	compressed[0] = 0x02
	if err := vm.checkPubKeyEncoding(compressed); err != nil {
		t.Errorf("compressed key: unexpected error: %v", err)
	}

	invalid := make([]byte, 10)
	if err := vm.checkPubKeyEncoding(invalid); err == nil {
		t.Error("expected an error for a key of invalid length")
	}
}

func TestCheckPubKeyEncodingUncompressedGatedByFlag(t *testing.T) {
	uncompressed := make([]byte, 65)
	uncompressed[0] = 0x04

	vm := &Engine{}
	if err := vm.checkPubKeyEncoding(uncompressed); err != nil {
		t.Errorf("without ScriptVerifyCompressedPubKeyType an uncompressed key must be accepted: %v", err)
	}

	vm = &Engine{flags: ScriptVerifyCompressedPubKeyType}
	err := vm.checkPubKeyEncoding(uncompressed)
	if err == nil || !IsErrorCode(err, ErrNonCompressedPubkey) {
		t.Errorf("got %v want ErrNonCompressedPubkey", err)
	}
}

func TestEngineSegwitRecoveryException(t *testing.T) {
	redeemScript := append([]byte{Op0, OpData20}, make([]byte, 20)...)
	scriptPubKey := append([]byte{OpHash160, OpData20}, hash160(redeemScript)...)
	scriptPubKey = append(scriptPubKey, OpEqual)
	sigScript := append([]byte{byte(len(redeemScript))}, redeemScript...)

	tx := engineTestTx(sigScript)
	vm, err := NewEngine(scriptPubKey, tx, 0, ScriptBip16, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Errorf("a P2SH spend recovering a witness-program redeem script should succeed "+
			"without executing it: %v", err)
	}
}

func TestEngineSegwitRecoveryDisallowed(t *testing.T) {
	redeemScript := append([]byte{Op0, OpData20}, make([]byte, 20)...)
	scriptPubKey := append([]byte{OpHash160, OpData20}, hash160(redeemScript)...)
	scriptPubKey = append(scriptPubKey, OpEqual)
	sigScript := append([]byte{byte(len(redeemScript))}, redeemScript...)

	tx := engineTestTx(sigScript)
	vm, err := NewEngine(scriptPubKey, tx, 0, ScriptBip16|ScriptDisallowSegwitRecovery, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := vm.Execute(); err == nil {
		t.Error("expected the redeem script to actually run and leave a false top stack entry")
	}
}

func TestVerifyInputSigChecksBound(t *testing.T) {
	tx := engineTestTx([]byte{OpTrue})
	sigChecks, err := Verify(tx, 0, []byte{OpTrue}, 0, ScriptVerifyInputSigChecks, nil, nil)
	if err != nil {
		t.Fatalf("Verify: unexpected error for a sigScript with zero sigchecks: %v", err)
	}
	if sigChecks != 0 {
		t.Errorf("sigChecks: got %d want 0 (ScriptVerifyReportSigChecks unset)", sigChecks)
	}
}

func TestVerifyReportSigChecksDiscardedWithoutFlag(t *testing.T) {
	tx := engineTestTx([]byte{OpTrue})
	sigChecks, err := Verify(tx, 0, []byte{OpTrue}, 0, ScriptNoFlags, nil, nil)
	if err != nil {
		t.Fatalf("Verify: unexpected error: %v", err)
	}
	if sigChecks != 0 {
		t.Errorf("sigChecks: got %d want 0", sigChecks)
	}
}

func TestCheckSignatureEncodingSchnorrBypassesDER(t *testing.T) {
	vm := &Engine{flags: ScriptVerifyDERSignatures}
	sig := make([]byte, 64)
	if err := vm.checkSignatureEncoding(sig); err != nil {
		t.Errorf("a 64-byte signature must bypass DER checks: %v", err)
	}
}

func TestCheckSignatureEncodingRejectsTooShort(t *testing.T) {
	vm := &Engine{flags: ScriptVerifyDERSignatures}
	if err := vm.checkSignatureEncoding([]byte{0x30, 0x02}); err == nil {
		t.Error("expected an error for a too-short signature under DER enforcement")
	}
}

func TestCheckSignatureEncodingSkippedWithoutFlag(t *testing.T) {
	vm := &Engine{}
	if err := vm.checkSignatureEncoding([]byte{0x01, 0x02}); err != nil {
		t.Errorf("without ScriptVerifyDERSignatures no shape checks should run: %v", err)
	}
}
