// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"golang.org/x/crypto/ripemd160"

	"github.com/cashnode/cashd/wire"
)

// opcodeDisabled is a generic handler for disabled opcodes. It returns an
// appropriate error indicating the opcode is disabled. While most opcodes
// that are disabled also happen to be reserved, bitcoin does not have all
// reserved opcodes defined as disabled.
func opcodeDisabled(op *parsedOpcode, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute disabled opcode %s", op.opcode.name)
	return scriptError(ErrDisabledOpcode, str)
}

// opcodeReserved is a generic handler for reserved opcodes, which by
// definition are always illegal to execute.
func opcodeReserved(op *parsedOpcode, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute reserved opcode %s", op.opcode.name)
	return scriptError(ErrBadOpcode, str)
}

// opcodeNop is a no-op for all flow control opcodes that don't affect the
// stack. OP_NOP1 and OP_NOP4 through OP_NOP10 additionally enforce the
// discourage-upgradable-nops policy.
func opcodeNop(op *parsedOpcode, vm *Engine) error {
	switch op.opcode.value {
	case OpNop1, OpNop4, OpNop5, OpNop6, OpNop7, OpNop8, OpNop9, OpNop10:
		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			str := fmt.Sprintf("%s reserved for soft-fork upgrades", op.opcode.name)
			return scriptError(ErrDiscourageUpgradableNops, str)
		}
	}
	return nil
}

// opcodePushData pushes the data associated with the opcode onto the data
// stack.
func opcodePushData(op *parsedOpcode, vm *Engine) error {
	vm.dstack.PushByteArray(op.data)
	return nil
}

// opcodeNegate pushes the number negative 1 onto the data stack.
func opcodeNegate(op *parsedOpcode, vm *Engine) error {
	vm.dstack.PushInt(ScriptNum(-1))
	return nil
}

// opcodeN pushes the value associated with the opcode (OP_1 through OP_16)
// onto the data stack.
func opcodeN(op *parsedOpcode, vm *Engine) error {
	vm.dstack.PushInt(ScriptNum((op.opcode.value - (Op1 - 1))))
	return nil
}

// opcodeIf treats the top item of the data stack as a boolean, consuming it
// and beginning a conditional branch.
func opcodeIf(op *parsedOpcode, vm *Engine) error {
	condVal := opCondFalse
	if vm.isBranchExecuting() {
		if vm.hasFlag(ScriptVerifyMinimalIf) {
			if err := requireMinimalIf(vm); err != nil {
				return err
			}
		}
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if ok {
			condVal = opCondTrue
		}
	} else {
		condVal = opCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeNotIf is the inverse of opcodeIf.
func opcodeNotIf(op *parsedOpcode, vm *Engine) error {
	condVal := opCondFalse
	if vm.isBranchExecuting() {
		if vm.hasFlag(ScriptVerifyMinimalIf) {
			if err := requireMinimalIf(vm); err != nil {
				return err
			}
		}
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			condVal = opCondTrue
		}
	} else {
		condVal = opCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// requireMinimalIf enforces that the boolean about to be consumed by
// IF/NOTIF is encoded as either the empty array or the single byte 0x01,
// peeking the raw element before the caller pops and coerces it to bool.
func requireMinimalIf(vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	switch len(so) {
	case 0:
		return nil
	case 1:
		if so[0] == 1 {
			return nil
		}
	}
	return scriptError(ErrMinimalIf, "conditional stack element is not minimally encoded")
}

// opcodeElse inverts the condition of the most recent active conditional.
func opcodeElse(op *parsedOpcode, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching opcode to begin conditional execution", op.opcode.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	idx := len(vm.condStack) - 1
	switch vm.condStack[idx] {
	case opCondTrue:
		vm.condStack[idx] = opCondFalse
	case opCondFalse:
		vm.condStack[idx] = opCondTrue
	case opCondSkip:
		// Remains skipped.
	}
	return nil
}

// opcodeEndif terminates a conditional block.
func opcodeEndif(op *parsedOpcode, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching opcode to begin conditional execution", op.opcode.name)
		return scriptError(ErrUnbalancedConditional, str)
	}
	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

// opcodeVerify examines the top item on the data stack as a boolean and
// errors if it is not true, terminating execution.
func opcodeVerify(op *parsedOpcode, vm *Engine) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		return scriptError(ErrVerify, "OP_VERIFY failed")
	}
	return nil
}

// opcodeReturn immediately terminates script execution as failed.
func opcodeReturn(op *parsedOpcode, vm *Engine) error {
	return scriptError(ErrOpReturn, "script returned early")
}

// opcodeCheckLockTimeVerify enforces that the output being spent has an
// absolute locktime at least as recent as the requested value.
func opcodeCheckLockTimeVerify(op *parsedOpcode, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckLockTimeVerify) {
		return opcodeNop(op, vm)
	}

	lockTime, err := vm.dstack.PeekInt(0)
	if err != nil {
		return err
	}
	if lockTime < 0 {
		str := fmt.Sprintf("negative lock time: %d", lockTime)
		return scriptError(ErrNegativeLocktime, str)
	}

	const lockTimeThreshold = 500000000
	txLockTime := int64(vm.tx.LockTime)
	if !((int64(lockTime) < lockTimeThreshold && txLockTime < lockTimeThreshold) ||
		(int64(lockTime) >= lockTimeThreshold && txLockTime >= lockTimeThreshold)) {
		str := fmt.Sprintf("mismatched locktime types -- tx locktime %d, stack locktime %d",
			txLockTime, lockTime)
		return scriptError(ErrUnsatisfiedLocktime, str)
	}

	if int64(lockTime) > txLockTime {
		str := fmt.Sprintf("locktime requirement not satisfied -- locktime is "+
			"greater than the transaction locktime: %d > %d", lockTime, txLockTime)
		return scriptError(ErrUnsatisfiedLocktime, str)
	}

	if vm.tx.TxIn[vm.txIdx].Sequence == wire.SequenceLockTimeDisabled {
		return scriptError(ErrUnsatisfiedLocktime,
			"transaction contains sequence locktime disabled input")
	}

	return nil
}

// opcodeCheckSequenceVerify enforces BIP0112 relative locktime semantics.
func opcodeCheckSequenceVerify(op *parsedOpcode, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckSequenceVerify) {
		return opcodeNop(op, vm)
	}

	stackSequence, err := vm.dstack.PeekInt(0)
	if err != nil {
		return err
	}
	if stackSequence < 0 {
		str := fmt.Sprintf("negative sequence: %d", stackSequence)
		return scriptError(ErrNegativeLocktime, str)
	}

	sequence := int64(stackSequence)
	if sequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		return nil
	}

	if vm.tx.Version < 2 {
		return scriptError(ErrUnsatisfiedLocktime,
			"transaction version does not support relative locktime")
	}

	txSequence := int64(vm.tx.TxIn[vm.txIdx].Sequence)
	if txSequence&int64(wire.SequenceLockTimeDisabled) != 0 {
		return scriptError(ErrUnsatisfiedLocktime,
			"transaction sequence has sequence locktime disabled bit set")
	}

	typeMask := int64(wire.SequenceLockTimeIsSeconds)
	if sequence&typeMask != txSequence&typeMask {
		return scriptError(ErrUnsatisfiedLocktime, "relative locktime type mismatch")
	}

	mask := int64(wire.SequenceLockTimeMask)
	if sequence&mask > txSequence&mask {
		return scriptError(ErrUnsatisfiedLocktime,
			"locktime requirement not satisfied")
	}

	return nil
}

// -- stack manipulation opcodes --

func opcodeToAltStack(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)
	return nil
}

func opcodeFromAltStack(op *parsedOpcode, vm *Engine) error {
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(so)
	return nil
}

func opcode2Drop(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.DropN(2)
}

func opcode2Dup(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(2)
}

func opcode3Dup(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(3)
}

func opcode2Over(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.OverN(2)
}

func opcode2Rot(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.RotN(2)
}

func opcode2Swap(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.SwapN(2)
}

func opcodeIfDup(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}
	return nil
}

func opcodeDepth(op *parsedOpcode, vm *Engine) error {
	vm.dstack.PushInt(ScriptNum(vm.dstack.Depth()))
	return nil
}

func opcodeDrop(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.DropN(1)
}

func opcodeDup(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(1)
}

func opcodeNip(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.NipN(1)
}

func opcodeOver(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.OverN(1)
}

func opcodePick(op *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	return vm.dstack.PickN(int32(n))
}

func opcodeRoll(op *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	return vm.dstack.RollN(int32(n))
}

func opcodeRot(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.RotN(1)
}

func opcodeSwap(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.SwapN(1)
}

func opcodeTuck(op *parsedOpcode, vm *Engine) error {
	return vm.dstack.Tuck()
}

// -- splice opcodes --

func opcodeCat(op *parsedOpcode, vm *Engine) error {
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if len(a)+len(b) > MaxScriptElementSize {
		str := fmt.Sprintf("concatenated size %d exceeds max allowed size %d",
			len(a)+len(b), MaxScriptElementSize)
		return scriptError(ErrInvalidOperandSize, str)
	}
	vm.dstack.PushByteArray(append(append([]byte{}, a...), b...))
	return nil
}

func opcodeSplit(op *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	data, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if n < 0 || int(n) > len(data) {
		str := fmt.Sprintf("split position %d out of range for %d byte value", n, len(data))
		return scriptError(ErrInvalidSplitRange, str)
	}
	first := make([]byte, n)
	copy(first, data[:n])
	second := make([]byte, len(data)-int(n))
	copy(second, data[n:])
	vm.dstack.PushByteArray(first)
	vm.dstack.PushByteArray(second)
	return nil
}

func opcodeNum2bin(op *parsedOpcode, vm *Engine) error {
	size, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	data, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if size < 0 || size > MaxScriptElementSize {
		str := fmt.Sprintf("invalid number of bytes to encode to: %d", size)
		return scriptError(ErrInvalidOperandSize, str)
	}

	n, err := makeScriptNum(data, false, len(data))
	if err != nil {
		return err
	}
	encoded := n.Bytes()
	if len(encoded) > int(size) {
		return scriptError(ErrImpossibleEncoding, "the number cannot be encoded in the given size")
	}
	if len(encoded) == int(size) {
		vm.dstack.PushByteArray(encoded)
		return nil
	}

	var signByte byte
	if len(encoded) > 0 {
		signByte = encoded[len(encoded)-1] & 0x80
		encoded[len(encoded)-1] &^= 0x80
	}

	result := make([]byte, size)
	copy(result, encoded)
	result[size-1] = signByte
	vm.dstack.PushByteArray(result)
	return nil
}

func opcodeBin2num(op *parsedOpcode, vm *Engine) error {
	data, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	n, err := makeScriptNum(data, false, len(data))
	if err != nil {
		return err
	}
	encoded := n.Bytes()
	if len(encoded) > MaxScriptElementSize {
		return scriptError(ErrImpossibleEncoding, "encoded value too large")
	}
	vm.dstack.PushByteArray(encoded)
	return nil
}

func opcodeSize(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	vm.dstack.PushInt(ScriptNum(len(so)))
	return nil
}

func opcodeReverseBytes(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	rev := make([]byte, len(so))
	for i, b := range so {
		rev[len(so)-1-i] = b
	}
	vm.dstack.PushByteArray(rev)
	return nil
}

// -- bitwise opcodes --

func opcodeAnd(op *parsedOpcode, vm *Engine) error {
	return bitwiseOp(vm, func(a, b byte) byte { return a & b })
}

func opcodeOr(op *parsedOpcode, vm *Engine) error {
	return bitwiseOp(vm, func(a, b byte) byte { return a | b })
}

func opcodeXor(op *parsedOpcode, vm *Engine) error {
	return bitwiseOp(vm, func(a, b byte) byte { return a ^ b })
}

func bitwiseOp(vm *Engine, f func(a, b byte) byte) error {
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if len(a) != len(b) {
		str := fmt.Sprintf("operands must be the same size: %d != %d", len(a), len(b))
		return scriptError(ErrInvalidOperandSize, str)
	}
	result := make([]byte, len(a))
	for i := range a {
		result[i] = f(a[i], b[i])
	}
	vm.dstack.PushByteArray(result)
	return nil
}

func opcodeEqual(op *parsedOpcode, vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

func opcodeEqualVerify(op *parsedOpcode, vm *Engine) error {
	err := opcodeEqual(op, vm)
	if err == nil {
		var verified bool
		verified, err = vm.dstack.PopBool()
		if err == nil && !verified {
			err = scriptError(ErrEqualVerify, "OP_EQUALVERIFY failed")
		}
	}
	return err
}

// -- arithmetic opcodes --

func arithUnary(vm *Engine, f func(ScriptNum) ScriptNum) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(f(n))
	return nil
}

func arithBinary(vm *Engine, f func(a, b ScriptNum) (ScriptNum, error)) error {
	b, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	result, err := f(a, b)
	if err != nil {
		return err
	}
	vm.dstack.PushInt(result)
	return nil
}

func opcode1Add(op *parsedOpcode, vm *Engine) error {
	return arithUnary(vm, func(n ScriptNum) ScriptNum { return n + 1 })
}

func opcode1Sub(op *parsedOpcode, vm *Engine) error {
	return arithUnary(vm, func(n ScriptNum) ScriptNum { return n - 1 })
}

func opcodeNegate1(op *parsedOpcode, vm *Engine) error {
	return arithUnary(vm, func(n ScriptNum) ScriptNum { return -n })
}

func opcodeAbs(op *parsedOpcode, vm *Engine) error {
	return arithUnary(vm, func(n ScriptNum) ScriptNum {
		if n < 0 {
			return -n
		}
		return n
	})
}

func opcodeNot(op *parsedOpcode, vm *Engine) error {
	return arithUnary(vm, func(n ScriptNum) ScriptNum {
		if n == 0 {
			return 1
		}
		return 0
	})
}

func opcode0NotEqual(op *parsedOpcode, vm *Engine) error {
	return arithUnary(vm, func(n ScriptNum) ScriptNum {
		if n != 0 {
			return 1
		}
		return 0
	})
}

func opcodeAdd(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) { return a + b, nil })
}

func opcodeSub(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) { return a - b, nil })
}

func opcodeDiv(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if b == 0 {
			return 0, scriptError(ErrDivByZero, "division by zero")
		}
		return a / b, nil
	})
}

func opcodeMod(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if b == 0 {
			return 0, scriptError(ErrModByZero, "modulo by zero")
		}
		return a % b, nil
	})
}

func opcodeBoolAnd(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a != 0 && b != 0 {
			return 1, nil
		}
		return 0, nil
	})
}

func opcodeBoolOr(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a != 0 || b != 0 {
			return 1, nil
		}
		return 0, nil
	})
}

func opcodeNumEqual(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a == b {
			return 1, nil
		}
		return 0, nil
	})
}

func opcodeNumEqualVerify(op *parsedOpcode, vm *Engine) error {
	err := opcodeNumEqual(op, vm)
	if err == nil {
		var verified bool
		verified, err = vm.dstack.PopBool()
		if err == nil && !verified {
			err = scriptError(ErrNumEqualVerify, "OP_NUMEQUALVERIFY failed")
		}
	}
	return err
}

func opcodeNumNotEqual(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a != b {
			return 1, nil
		}
		return 0, nil
	})
}

func opcodeLessThan(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a < b {
			return 1, nil
		}
		return 0, nil
	})
}

func opcodeGreaterThan(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a > b {
			return 1, nil
		}
		return 0, nil
	})
}

func opcodeLessThanOrEqual(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a <= b {
			return 1, nil
		}
		return 0, nil
	})
}

func opcodeGreaterThanOrEqual(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a >= b {
			return 1, nil
		}
		return 0, nil
	})
}

func opcodeMin(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a < b {
			return a, nil
		}
		return b, nil
	})
}

func opcodeMax(op *parsedOpcode, vm *Engine) error {
	return arithBinary(vm, func(a, b ScriptNum) (ScriptNum, error) {
		if a > b {
			return a, nil
		}
		return b, nil
	})
}

func opcodeWithin(op *parsedOpcode, vm *Engine) error {
	maxVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	minVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	x, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushBool(x >= minVal && x < maxVal)
	return nil
}

// -- crypto opcodes --

func opcodeRipemd160(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	h := ripemd160.New()
	h.Write(so)
	vm.dstack.PushByteArray(h.Sum(nil))
	return nil
}

func opcodeSha1(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	hash := sha1.Sum(so)
	vm.dstack.PushByteArray(hash[:])
	return nil
}

func opcodeSha256(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	hash := sha256.Sum256(so)
	vm.dstack.PushByteArray(hash[:])
	return nil
}

func opcodeHash160(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	shaSum := sha256.Sum256(so)
	h := ripemd160.New()
	h.Write(shaSum[:])
	vm.dstack.PushByteArray(h.Sum(nil))
	return nil
}

func opcodeHash256(op *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	first := sha256.Sum256(so)
	second := sha256.Sum256(first[:])
	vm.dstack.PushByteArray(second[:])
	return nil
}

func opcodeCodeSeparator(op *parsedOpcode, vm *Engine) error {
	vm.lastCodeSep = vm.scriptOff
	return nil
}

// opcodeCheckSig implements the core signature-verification opcode: pop
// the public key and signature, verify against the transaction's signature
// hash for the active input, and push the result.
func opcodeCheckSig(op *parsedOpcode, vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	ok, err := vm.verifySignature(sigBytes, pkBytes, vm.subScript())
	if err != nil {
		return err
	}

	if !ok && vm.hasFlag(ScriptVerifyNullFail) && len(sigBytes) > 0 {
		return scriptError(ErrNullFail, "signature not empty on failed checksig")
	}

	vm.dstack.PushBool(ok)
	return nil
}

func opcodeCheckSigVerify(op *parsedOpcode, vm *Engine) error {
	if err := opcodeCheckSig(op, vm); err != nil {
		return err
	}
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		return scriptError(ErrCheckSigVerify, "OP_CHECKSIGVERIFY failed")
	}
	return nil
}

// opcodeCheckDataSig verifies a signature over an explicit message rather
// than the transaction's signature hash. Shares its signature/key encoding
// checks with CHECKSIG but hashes the provided message with a single
// SHA-256 round instead of the transaction sighash algorithm.
func opcodeCheckDataSig(op *parsedOpcode, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckDataSig) {
		return scriptError(ErrDisabledOpcode, "OP_CHECKDATASIG requires the MagneticAnomaly deployment")
	}

	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	msg, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(sigBytes) > 0 {
		if err := vm.checkSignatureEncoding(sigBytes); err != nil {
			return err
		}
		if err := vm.checkPubKeyEncoding(pkBytes); err != nil {
			return err
		}
	}

	hash := sha256.Sum256(msg)
	ok, err := vm.verifyRawSignature(sigBytes, pkBytes, hash[:])
	if err != nil {
		return err
	}

	if !ok && vm.hasFlag(ScriptVerifyNullFail) && len(sigBytes) > 0 {
		return scriptError(ErrNullFail, "signature not empty on failed checkdatasig")
	}

	vm.dstack.PushBool(ok)
	return nil
}

func opcodeCheckDataSigVerify(op *parsedOpcode, vm *Engine) error {
	if err := opcodeCheckDataSig(op, vm); err != nil {
		return err
	}
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		return scriptError(ErrCheckDataSigVerify, "OP_CHECKDATASIGVERIFY failed")
	}
	return nil
}

// opcodeCheckMultiSig implements m-of-n signature verification. Two
// schemes are supported depending on signature length: the legacy greedy
// ECDSA matching scheme (with the historical Satoshi-bug dummy element,
// required to be empty here) and the Schnorr bitfield scheme, where the
// dummy element is a bitfield selecting which key slot each signature, in
// stack order, corresponds to.
func opcodeCheckMultiSig(op *parsedOpcode, vm *Engine) error {
	numKeys, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numPubKeys := int(numKeys)
	if numPubKeys < 0 || numPubKeys > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("number of pubkeys %d is not in the range [0, %d]",
			numPubKeys, MaxPubKeysPerMultiSig)
		return scriptError(ErrPubKeyCount, str)
	}
	vm.numOps += numPubKeys
	if vm.numOps > MaxOpsPerScript {
		str := fmt.Sprintf("exceeded max operation limit of %d", MaxOpsPerScript)
		return scriptError(ErrOpCount, str)
	}

	pubKeys := make([][]byte, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pubKeys[i], err = vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
	}

	numSigsNum, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numSigs := int(numSigsNum)
	if numSigs < 0 || numSigs > numPubKeys {
		str := fmt.Sprintf("number of signatures %d is not in the range [0, %d]",
			numSigs, numPubKeys)
		return scriptError(ErrSigCount, str)
	}

	sigs := make([][]byte, numSigs)
	for i := 0; i < numSigs; i++ {
		sigs[i], err = vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
	}

	dummy, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	subScript := vm.subScript()

	schnorrMode := false
	for _, sig := range sigs {
		if len(sig) > 0 {
			schnorrMode = len(sig) == 65
			break
		}
	}

	var success bool
	if schnorrMode {
		success, err = vm.verifyBitfieldMultiSig(dummy, sigs, pubKeys, subScript)
	} else {
		if len(dummy) != 0 && vm.hasFlag(ScriptVerifyNullDummy) {
			return scriptError(ErrInvalidStackOperation,
				"multisig dummy element must be empty")
		}
		success, err = vm.verifyGreedyMultiSig(sigs, pubKeys, subScript)
	}
	if err != nil {
		return err
	}

	if !success && vm.hasFlag(ScriptVerifyNullFail) {
		for _, sig := range sigs {
			if len(sig) != 0 {
				return scriptError(ErrNullFail, "signature not empty on failed checkmultisig")
			}
		}
	}

	vm.dstack.PushBool(success)
	return nil
}

func opcodeCheckMultiSigVerify(op *parsedOpcode, vm *Engine) error {
	if err := opcodeCheckMultiSig(op, vm); err != nil {
		return err
	}
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		return scriptError(ErrCheckMultisigVerify, "OP_CHECKMULTISIGVERIFY failed")
	}
	return nil
}

// verifyGreedyMultiSig implements the classic Satoshi CHECKMULTISIG
// algorithm: signatures must appear in the same relative order as their
// corresponding public keys, but need not use every key.
func (vm *Engine) verifyGreedyMultiSig(sigs, pubKeys [][]byte, subScript []parsedOpcode) (bool, error) {
	sigIdx := 0
	keyIdx := 0
	for sigIdx < len(sigs) {
		if len(sigs)-sigIdx > len(pubKeys)-keyIdx {
			return false, nil
		}
		ok, err := vm.verifySignature(sigs[sigIdx], pubKeys[keyIdx], subScript)
		if err != nil {
			return false, err
		}
		if ok {
			sigIdx++
		}
		keyIdx++
	}
	return true, nil
}

// verifyBitfieldMultiSig implements the Schnorr bitfield scheme: the
// bitfield is resolved to a fixed signature-to-key assignment before any
// signature is verified, per the open-question decision recorded for this
// interpreter.
func (vm *Engine) verifyBitfieldMultiSig(bitfield []byte, sigs, pubKeys [][]byte, subScript []parsedOpcode) (bool, error) {
	n := len(pubKeys)
	needed := (n + 7) / 8
	if len(bitfield) != needed {
		str := fmt.Sprintf("invalid bitfield size %d for %d keys", len(bitfield), n)
		return false, scriptError(ErrInvalidBitfieldSize, str)
	}

	var keyIdxs []int
	for i := 0; i < n; i++ {
		byteIdx := i / 8
		bitIdx := uint(7 - (i % 8))
		if bitfield[byteIdx]&(1<<bitIdx) != 0 {
			keyIdxs = append(keyIdxs, i)
		}
	}
	if len(keyIdxs) != len(sigs) {
		str := fmt.Sprintf("bitfield selects %d keys for %d signatures", len(keyIdxs), len(sigs))
		return false, scriptError(ErrBitfieldSize, str)
	}
	for i := n; i < needed*8; i++ {
		byteIdx := i / 8
		bitIdx := uint(7 - (i % 8))
		if bitfield[byteIdx]&(1<<bitIdx) != 0 {
			return false, scriptError(ErrBitRange, "bitfield sets a bit beyond the key count")
		}
	}

	for i, sig := range sigs {
		ok, err := vm.verifySignature(sig, pubKeys[keyIdxs[i]], subScript)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// subScript returns the portion of the currently executing script after
// the most recent OP_CODESEPARATOR.
func (vm *Engine) subScript() []parsedOpcode {
	return vm.currentScript()[vm.lastCodeSep:]
}

// verifySignature checks sig against pubKey over the signature hash of the
// current input, using subScript as the scriptCode, enforcing encoding
// rules and consulting the signature cache.
func (vm *Engine) verifySignature(sig []byte, pubKey []byte, subScript []parsedOpcode) (bool, error) {
	if len(sig) == 0 {
		return false, nil
	}

	hashType := SigHashType(sig[len(sig)-1])
	if err := vm.checkHashTypeEncoding(hashType); err != nil {
		return false, err
	}
	if err := vm.checkSignatureEncoding(sig[:len(sig)-1]); err != nil {
		return false, err
	}
	if err := vm.checkPubKeyEncoding(pubKey); err != nil {
		return false, err
	}

	hash, err := CalcSignatureHash(subScript, hashType, &vm.tx, vm.txIdx, vm.inputAmount, vm.hashCache)
	if err != nil {
		return false, err
	}

	return vm.verifyRawSignature(sig[:len(sig)-1], pubKey, hash[:])
}

// verifyRawSignature verifies a bare signature (no appended hash type byte)
// over an arbitrary message hash, consulting and populating the sig cache.
func (vm *Engine) verifyRawSignature(sig []byte, pubKey []byte, hash []byte) (bool, error) {
	vm.sigChecks++

	var sigHash [32]byte
	copy(sigHash[:], hash)

	if vm.sigCache != nil && vm.sigCache.Exists(sigHash, sig, pubKey) {
		return true, nil
	}

	pk, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false, nil
	}

	var ok bool
	if len(sig) == 64 {
		schnorrSig, err := schnorr.ParseSignature(sig)
		if err != nil {
			return false, nil
		}
		ok = schnorrSig.Verify(hash, pk)
	} else {
		ecdsaSig, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			return false, nil
		}
		ok = ecdsaSig.Verify(hash, pk)
	}

	if ok && vm.sigCache != nil {
		vm.sigCache.Add(sigHash, sig, pubKey)
	}
	return ok, nil
}
