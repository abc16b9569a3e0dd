// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"

	"github.com/cashnode/cashd/chainhash"
)

func TestOpcodeAddSub(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushInt(ScriptNum(2))
	vm.dstack.PushInt(ScriptNum(3))
	if err := opcodeAdd(nil, vm); err != nil {
		t.Fatalf("opcodeAdd: %v", err)
	}
	got, err := vm.dstack.PopInt()
	if err != nil {
		t.Fatalf("PopInt: %v", err)
	}
	if got != 5 {
		t.Errorf("2+3: got %d want 5", got)
	}

	vm.dstack.PushInt(ScriptNum(10))
	vm.dstack.PushInt(ScriptNum(4))
	if err := opcodeSub(nil, vm); err != nil {
		t.Fatalf("opcodeSub: %v", err)
	}
	got, err = vm.dstack.PopInt()
	if err != nil {
		t.Fatalf("PopInt: %v", err)
	}
	if got != 6 {
		t.Errorf("10-4: got %d want 6", got)
	}
}

func TestOpcodeDivByZero(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushInt(ScriptNum(10))
	vm.dstack.PushInt(ScriptNum(0))
	if err := opcodeDiv(nil, vm); err == nil {
		t.Fatal("expected an error dividing by zero")
	} else if !IsErrorCode(err, ErrDivByZero) {
		t.Errorf("got %v want ErrDivByZero", err)
	}
}

func TestOpcodeModByZero(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushInt(ScriptNum(10))
	vm.dstack.PushInt(ScriptNum(0))
	if err := opcodeMod(nil, vm); err == nil {
		t.Fatal("expected an error for modulo by zero")
	} else if !IsErrorCode(err, ErrModByZero) {
		t.Errorf("got %v want ErrModByZero", err)
	}
}

func TestOpcodeEqualVerify(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushByteArray([]byte{0x01, 0x02})
	vm.dstack.PushByteArray([]byte{0x01, 0x02})
	if err := opcodeEqualVerify(nil, vm); err != nil {
		t.Errorf("equal arrays: unexpected error: %v", err)
	}

	vm2 := &Engine{}
	vm2.dstack.PushByteArray([]byte{0x01})
	vm2.dstack.PushByteArray([]byte{0x02})
	err := opcodeEqualVerify(nil, vm2)
	if err == nil || !IsErrorCode(err, ErrEqualVerify) {
		t.Errorf("mismatched arrays: got %v want ErrEqualVerify", err)
	}
}

func TestOpcode1AddAbsNot(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushInt(ScriptNum(4))
	if err := opcode1Add(nil, vm); err != nil {
		t.Fatalf("opcode1Add: %v", err)
	}
	if got, _ := vm.dstack.PopInt(); got != 5 {
		t.Errorf("1Add(4): got %d want 5", got)
	}

	vm.dstack.PushInt(ScriptNum(-7))
	if err := opcodeAbs(nil, vm); err != nil {
		t.Fatalf("opcodeAbs: %v", err)
	}
	if got, _ := vm.dstack.PopInt(); got != 7 {
		t.Errorf("Abs(-7): got %d want 7", got)
	}

	vm.dstack.PushInt(ScriptNum(0))
	if err := opcodeNot(nil, vm); err != nil {
		t.Fatalf("opcodeNot: %v", err)
	}
	if got, _ := vm.dstack.PopInt(); got != 1 {
		t.Errorf("Not(0): got %d want 1", got)
	}
}

func TestOpcodeBoolAndOr(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushInt(ScriptNum(1))
	vm.dstack.PushInt(ScriptNum(0))
	if err := opcodeBoolAnd(nil, vm); err != nil {
		t.Fatalf("opcodeBoolAnd: %v", err)
	}
	if got, _ := vm.dstack.PopInt(); got != 0 {
		t.Errorf("BoolAnd(1,0): got %d want 0", got)
	}

	vm.dstack.PushInt(ScriptNum(1))
	vm.dstack.PushInt(ScriptNum(0))
	if err := opcodeBoolOr(nil, vm); err != nil {
		t.Fatalf("opcodeBoolOr: %v", err)
	}
	if got, _ := vm.dstack.PopInt(); got != 1 {
		t.Errorf("BoolOr(1,0): got %d want 1", got)
	}
}

func TestOpcodeSize(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushByteArray([]byte{0x01, 0x02, 0x03})
	if err := opcodeSize(nil, vm); err != nil {
		t.Fatalf("opcodeSize: %v", err)
	}
	if got, _ := vm.dstack.PopInt(); got != 3 {
		t.Errorf("Size: got %d want 3", got)
	}
	// The original array must still be on the stack; opcodeSize peeks.
	if _, err := vm.dstack.PopByteArray(); err != nil {
		t.Errorf("original array should remain under the size push: %v", err)
	}
}

func TestOpcodeHash160Length(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushByteArray([]byte("cashnode"))
	if err := opcodeHash160(nil, vm); err != nil {
		t.Fatalf("opcodeHash160: %v", err)
	}
	out, err := vm.dstack.PopByteArray()
	if err != nil {
		t.Fatalf("PopByteArray: %v", err)
	}
	if len(out) != 20 {
		t.Errorf("HASH160 output length: got %d want 20", len(out))
	}
}

func TestOpcodeHash256MatchesDoubleHash(t *testing.T) {
	vm := &Engine{}
	msg := []byte("cashnode")
	vm.dstack.PushByteArray(msg)
	if err := opcodeHash256(nil, vm); err != nil {
		t.Fatalf("opcodeHash256: %v", err)
	}
	out, err := vm.dstack.PopByteArray()
	if err != nil {
		t.Fatalf("PopByteArray: %v", err)
	}
	want := chainhash.DoubleHashB(msg)
	if !bytes.Equal(out, want) {
		t.Errorf("HASH256: got %x want %x", out, want)
	}
}

func TestOpcodeDisabledAndReserved(t *testing.T) {
	pop := &parsedOpcode{opcode: &opcode{value: OpInvert, name: "OP_INVERT"}}
	err := opcodeDisabled(pop, &Engine{})
	if err == nil || !IsErrorCode(err, ErrDisabledOpcode) {
		t.Errorf("got %v want ErrDisabledOpcode", err)
	}

	pop2 := &parsedOpcode{opcode: &opcode{value: OpReserved, name: "OP_RESERVED"}}
	err = opcodeReserved(pop2, &Engine{})
	if err == nil || !IsErrorCode(err, ErrBadOpcode) {
		t.Errorf("got %v want ErrBadOpcode", err)
	}
}

func TestOpcodeVerify(t *testing.T) {
	vm := &Engine{}
	vm.dstack.PushBool(true)
	if err := opcodeVerify(nil, vm); err != nil {
		t.Errorf("VERIFY of true: unexpected error: %v", err)
	}

	vm.dstack.PushBool(false)
	if err := opcodeVerify(nil, vm); err == nil {
		t.Error("expected an error for VERIFY of false")
	}
}

func TestOpcodeCheckMultiSigNullDummyGatedByFlag(t *testing.T) {
	push := func(vm *Engine, dummy []byte) {
		vm.dstack.PushByteArray(dummy)
		vm.dstack.PushInt(ScriptNum(0))
		vm.dstack.PushInt(ScriptNum(0))
	}

	vm := &Engine{scripts: [][]parsedOpcode{{}}}
	push(vm, []byte{0x01})
	if err := opcodeCheckMultiSig(nil, vm); err != nil {
		t.Errorf("without ScriptVerifyNullDummy a non-empty dummy must be accepted: %v", err)
	}

	vm = &Engine{scripts: [][]parsedOpcode{{}}, flags: ScriptVerifyNullDummy}
	push(vm, []byte{0x01})
	err := opcodeCheckMultiSig(nil, vm)
	if err == nil || !IsErrorCode(err, ErrInvalidStackOperation) {
		t.Errorf("got %v want ErrInvalidStackOperation", err)
	}
}

func TestOpcodeCheckDataSigGatedByFlag(t *testing.T) {
	push := func(vm *Engine) {
		vm.dstack.PushByteArray([]byte{})
		vm.dstack.PushByteArray([]byte("message"))
		vm.dstack.PushByteArray(make([]byte, 33))
	}

	vm := &Engine{}
	push(vm)
	err := opcodeCheckDataSig(nil, vm)
	if err == nil || !IsErrorCode(err, ErrDisabledOpcode) {
		t.Errorf("got %v want ErrDisabledOpcode", err)
	}

	vm = &Engine{flags: ScriptVerifyCheckDataSig}
	push(vm)
	if err := opcodeCheckDataSig(nil, vm); err != nil {
		t.Errorf("unexpected error with ScriptVerifyCheckDataSig set: %v", err)
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		t.Fatalf("PopBool: %v", err)
	}
	if ok {
		t.Error("expected a false result for an unparseable public key")
	}
}
