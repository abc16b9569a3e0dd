// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/cashnode/cashd/wire"
)

// ScriptFlags is a bitmask defining additional operations or tests that will
// be done when executing a script pair.
type ScriptFlags uint32

const (
	// ScriptBip16 defines whether the bip16 threshold has passed and thus
	// pay-to-script-hash transactions will be fully validated.
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptVerifyDERSignatures defines that signatures are required to
	// be in the strict DER format.
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS defines that signatures are required to have a
	// low S value according to BIP0062.
	ScriptVerifyLowS

	// ScriptVerifyMinimalData defines that signatures are required to
	// use the smallest possible push operator and numbers must be
	// encoded with the fewest possible bytes.
	ScriptVerifyMinimalData

	// ScriptVerifyCleanStack defines that the stack must contain only
	// one stack element after evaluation and that the element must be
	// true if interpreted as a boolean.
	ScriptVerifyCleanStack

	// ScriptVerifyNullFail defines that signatures must be empty if a
	// CHECKSIG or CHECKMULTISIG operation fails.
	ScriptVerifyNullFail

	// ScriptVerifySigPushOnly defines that a transaction signature script
	// must only contain opcodes which push data onto the stack.
	ScriptVerifySigPushOnly

	// ScriptDiscourageUpgradableNops defines whether to verify that
	// NOP1 through NOP10 are reserved for future soft-fork upgrades.
	// This flag must not be applied to blocks as it is a stricter
	// standard-only check applied at the mempool boundary.
	ScriptDiscourageUpgradableNops

	// ScriptVerifyCheckLockTimeVerify defines whether to verify that a
	// transaction output is spendable based on the locktime.
	ScriptVerifyCheckLockTimeVerify

	// ScriptVerifyCheckSequenceVerify defines whether to allow execution
	// of the OP_CHECKSEQUENCEVERIFY opcode as per BIP0112.
	ScriptVerifyCheckSequenceVerify

	// ScriptEnableSighashForkID defines that signature hashes use the
	// BIP143-style FORKID-tagged preimage and that the FORKID bit is
	// mandatory on every hash type.
	ScriptEnableSighashForkID

	// ScriptVerifyStrictSchnorr names the Schnorr signature rule. The
	// engine does not read this flag: a 64-byte signature (65 bytes with
	// CHECKSIG's hash type byte) is treated as Schnorr whether or not it
	// is set.
	ScriptVerifyStrictSchnorr

	// ScriptVerifyMinimalIf defines that the conditional stack element
	// consumed by IF/NOTIF must be encoded as either the empty array or
	// the single byte 0x01.
	ScriptVerifyMinimalIf

	// ScriptVerifyCompressedPubKeyType defines that a CHECKSIG/
	// CHECKMULTISIG public key is required to be in compressed SEC1
	// form; an otherwise well-formed 65-byte uncompressed key is
	// rejected only when this flag is set.
	ScriptVerifyCompressedPubKeyType

	// ScriptVerifyNullDummy defines that the dummy element consumed by
	// the legacy ECDSA CHECKMULTISIG scheme must be the empty byte
	// array.
	ScriptVerifyNullDummy

	// ScriptDisallowSegwitRecovery disables the P2SH segwit-recovery
	// exception: when unset, a P2SH spend whose popped redeem script is
	// a witness-program template and leaves an empty stack is accepted
	// without executing the redeem script.
	ScriptDisallowSegwitRecovery

	// ScriptVerifyInputSigChecks requires the signature script to be at
	// least sigChecks*43-60 bytes, bounding the number of signature
	// checks a small scriptSig can trigger.
	ScriptVerifyInputSigChecks

	// ScriptVerifyReportSigChecks causes Verify to report the per-input
	// sigcheck count to its caller instead of discarding it.
	ScriptVerifyReportSigChecks

	// ScriptVerifyCheckDataSig enables OP_CHECKDATASIG and
	// OP_CHECKDATASIGVERIFY. Both opcodes fail the script as disabled
	// when this flag is unset.
	ScriptVerifyCheckDataSig
)

// ScriptNoFlags is used when no additional checks are required.
const ScriptNoFlags ScriptFlags = 0

const (
	// MaxStackSize is the maximum combined height of stack and alt stack
	// during execution.
	MaxStackSize = 1000

	// MaxScriptSize is the maximum allowed length of a raw script.
	MaxScriptSize = 10000

	// MaxScriptElementSize is the maximum allowed size, in bytes, of an
	// element on either of the stacks.
	MaxScriptElementSize = 520

	// MaxOpsPerScript is the maximum number of non-push operations
	// allowed in a single script.
	MaxOpsPerScript = 201

	// MaxPubKeysPerMultiSig is the maximum number of public keys allowed
	// in an OP_CHECKMULTISIG operation.
	MaxPubKeysPerMultiSig = 20
)

// Conditional execution constants represent the current state of a
// conditional execution branch (the condStack entries).
const (
	opCondFalse = 0
	opCondTrue  = 1
	opCondSkip  = 2
)

// halfOrder is used to tame ECDSA malleability per BIP0062: valid
// signatures must use the low-S member of {s, N-s}.
var halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// Engine is the virtual machine that executes scripts.
type Engine struct {
	scripts         [][]parsedOpcode
	scriptIdx       int
	scriptOff       int
	dstack          stack
	astack          stack
	tx              wire.MsgTx
	txIdx           int
	inputAmount     int64
	condStack       []int
	numOps          int
	flags           ScriptFlags
	sigCache        *SigCache
	hashCache       *TxSigHashes
	isP2SH          bool
	savedFirstStack [][]byte
	sigChecks       int
	lastCodeSep     int
}

// hasFlag returns whether the script engine instance has the passed flag
// set.
func (vm *Engine) hasFlag(flag ScriptFlags) bool {
	return vm.flags&flag == flag
}

// isBranchExecuting returns whether or not the current conditional branch
// is actively executing. It properly handles nested conditionals.
func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == opCondTrue
}

// executeOpcode performs execution on the passed opcode, taking into
// account whether it is hidden by conditionals and the rules that must
// still be applied regardless (disabled/illegal opcodes, push size,
// operation count).
func (vm *Engine) executeOpcode(pop *parsedOpcode) error {
	if pop.opcode.name == "OP_MALFORMED" {
		str := "script terminated with a truncated data push"
		return scriptError(ErrBadOpcode, str)
	}

	if pop.isDisabled() {
		str := fmt.Sprintf("attempt to execute disabled opcode %s", pop.opcode.name)
		return scriptError(ErrDisabledOpcode, str)
	}

	if pop.alwaysIllegal() {
		str := fmt.Sprintf("attempt to execute reserved opcode %s", pop.opcode.name)
		return scriptError(ErrBadOpcode, str)
	}

	if pop.opcode.value > Op16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			str := fmt.Sprintf("exceeded max operation limit of %d", MaxOpsPerScript)
			return scriptError(ErrOpCount, str)
		}
	} else if len(pop.data) > MaxScriptElementSize {
		str := fmt.Sprintf("element size %d exceeds max allowed size %d",
			len(pop.data), MaxScriptElementSize)
		return scriptError(ErrPushSize, str)
	}

	if !vm.isBranchExecuting() && !pop.isConditional() {
		return nil
	}

	if vm.isBranchExecuting() && vm.hasFlag(ScriptVerifyMinimalData) &&
		pop.opcode.value >= Op0 && pop.opcode.value <= OpPushData4 {
		if err := pop.checkMinimalDataPush(); err != nil {
			return err
		}
	}

	return pop.opcode.opfunc(pop, vm)
}

// disasm produces a disassembly line for the opcode at the given position.
func (vm *Engine) disasm(scriptIdx int, scriptOff int) string {
	return fmt.Sprintf("%02x:%04x: %s", scriptIdx, scriptOff,
		vm.scripts[scriptIdx][scriptOff].print(false))
}

// validPC returns an error if the current script position is not valid for
// execution.
func (vm *Engine) validPC() error {
	if vm.scriptIdx >= len(vm.scripts) {
		str := fmt.Sprintf("past input scripts %v:%v %v:xxxx",
			vm.scriptIdx, vm.scriptOff, len(vm.scripts))
		return scriptError(ErrInternal, str)
	}
	if vm.scriptOff >= len(vm.scripts[vm.scriptIdx]) {
		str := fmt.Sprintf("past input scripts %v:%v %v:%04d",
			vm.scriptIdx, vm.scriptOff, vm.scriptIdx, len(vm.scripts[vm.scriptIdx]))
		return scriptError(ErrInternal, str)
	}
	return nil
}

// DisasmPC returns the disassembly of the opcode that will execute next.
func (vm *Engine) DisasmPC() (string, error) {
	if err := vm.validPC(); err != nil {
		return "", err
	}
	return vm.disasm(vm.scriptIdx, vm.scriptOff), nil
}

// DisasmScript returns the disassembly for the script at the given index.
// Index 0 is the signature script, 1 the public key script, and 2 (when
// present) the redeem script of a P2SH input.
func (vm *Engine) DisasmScript(idx int) (string, error) {
	if idx < 0 || idx >= len(vm.scripts) {
		str := fmt.Sprintf("script index %d >= total scripts %d", idx, len(vm.scripts))
		return "", scriptError(ErrInternal, str)
	}
	var disstr string
	for i := range vm.scripts[idx] {
		disstr += vm.disasm(idx, i) + "\n"
	}
	return disstr, nil
}

// CheckErrorCondition returns nil if the running script has ended and was
// successful, leaving a single true boolean on the stack.
func (vm *Engine) CheckErrorCondition(finalScript bool) error {
	if vm.scriptIdx < len(vm.scripts) {
		return scriptError(ErrInternal, "error check when script unfinished")
	}

	if finalScript && vm.hasFlag(ScriptVerifyCleanStack) {
		if vm.dstack.Depth() != 1 {
			str := fmt.Sprintf("stack contains %d unexpected items",
				vm.dstack.Depth()-1)
			return scriptError(ErrCleanStack, str)
		}
	}

	if vm.dstack.Depth() < 1 {
		return scriptError(ErrEvalFalse, "stack empty at end of script execution")
	}

	v, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		return scriptError(ErrEvalFalse, "false stack entry at end of script execution")
	}
	return nil
}

// Step executes the next instruction and advances the program counter to
// the next opcode in the script, or the next script if the current one has
// ended. It returns true once the final script has finished executing.
func (vm *Engine) Step() (done bool, err error) {
	if err = vm.validPC(); err != nil {
		return true, err
	}
	opcode := &vm.scripts[vm.scriptIdx][vm.scriptOff]
	vm.scriptOff++

	if err = vm.executeOpcode(opcode); err != nil {
		return true, err
	}

	combinedStackSize := vm.dstack.Depth() + vm.astack.Depth()
	if combinedStackSize > MaxStackSize {
		str := fmt.Sprintf("combined stack size %d > max allowed %d",
			combinedStackSize, MaxStackSize)
		return false, scriptError(ErrStackSize, str)
	}

	if vm.scriptOff >= len(vm.scripts[vm.scriptIdx]) {
		if len(vm.condStack) != 0 {
			return false, scriptError(ErrUnbalancedConditional,
				"end of script reached in conditional execution")
		}

		_ = vm.astack.DropN(vm.astack.Depth())

		vm.numOps = 0
		vm.scriptOff = 0
		vm.lastCodeSep = 0
		switch {
		case vm.scriptIdx == 0 && vm.isP2SH:
			vm.scriptIdx++
			vm.savedFirstStack = vm.GetStack()
		case vm.scriptIdx == 1 && vm.isP2SH:
			vm.scriptIdx++
			if err := vm.CheckErrorCondition(false); err != nil {
				return false, err
			}

			script := vm.savedFirstStack[len(vm.savedFirstStack)-1]
			remaining := vm.savedFirstStack[:len(vm.savedFirstStack)-1]
			pops, err := parseScript(script)
			if err != nil {
				return false, err
			}

			if len(remaining) == 0 && isWitnessProgram(pops) &&
				!vm.hasFlag(ScriptDisallowSegwitRecovery) {
				vm.SetStack(remaining)
				vm.dstack.PushBool(true)
				break
			}

			vm.scripts = append(vm.scripts, pops)
			vm.SetStack(remaining)
		default:
			vm.scriptIdx++
		}

		if vm.scriptIdx < len(vm.scripts) && vm.scriptOff >= len(vm.scripts[vm.scriptIdx]) {
			vm.scriptIdx++
		}
		if vm.scriptIdx >= len(vm.scripts) {
			return true, nil
		}
	}
	return false, nil
}

// Execute runs every script in the engine to completion and reports
// whether the combined evaluation succeeded.
func (vm *Engine) Execute() error {
	done := false
	var err error
	for !done {
		done, err = vm.Step()
		if err != nil {
			log.Tracef("script execution failed at script %d offset %d: %s",
				vm.scriptIdx, vm.scriptOff, err)
			return err
		}
	}
	return vm.CheckErrorCondition(true)
}

// currentScript returns the script currently being processed.
func (vm *Engine) currentScript() []parsedOpcode {
	return vm.scripts[vm.scriptIdx]
}

// checkHashTypeEncoding validates the hash type byte of a signature,
// requiring the FORKID bit when the replay-protected sighash rules are
// active.
func (vm *Engine) checkHashTypeEncoding(hashType SigHashType) error {
	if vm.hasFlag(ScriptEnableSighashForkID) {
		if hashType&SigHashForkID == 0 {
			return scriptError(ErrMustUseForkID, "hash type missing required fork id flag")
		}
		hashType &^= SigHashForkID
	} else if hashType&SigHashForkID != 0 {
		return scriptError(ErrIllegalForkID, "fork id flag set when not enabled")
	}

	hashType &^= SigHashAnyOneCanPay
	if hashType < SigHashAll || hashType > SigHashSingle {
		str := fmt.Sprintf("invalid hash type 0x%x", hashType)
		return scriptError(ErrSigHashType, str)
	}
	return nil
}

// checkPubKeyEncoding validates that the public key is in compressed or
// uncompressed SEC1 form. The uncompressed form is only rejected when
// ScriptVerifyCompressedPubKeyType is set.
func (vm *Engine) checkPubKeyEncoding(pubKey []byte) error {
	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		return nil
	}
	if len(pubKey) == 65 && pubKey[0] == 0x04 {
		if vm.hasFlag(ScriptVerifyCompressedPubKeyType) {
			return scriptError(ErrNonCompressedPubkey, "only compressed keys are allowed")
		}
		return nil
	}
	return scriptError(ErrPubKeyType, "unsupported public key type")
}

// checkSignatureEncoding validates that a signature adheres to the strict
// DER requirements and, when required, the low-S rule. A 64-byte signature
// is treated as Schnorr and bypasses the DER grammar entirely.
func (vm *Engine) checkSignatureEncoding(sig []byte) error {
	if len(sig) == 0 {
		return nil
	}
	if len(sig) == 64 {
		return nil
	}

	if !vm.hasFlag(ScriptVerifyDERSignatures) {
		return nil
	}

	if len(sig) < 8 {
		str := fmt.Sprintf("malformed signature: too short: %d < 8", len(sig))
		return scriptError(ErrSigDER, str)
	}
	if len(sig) > 72 {
		str := fmt.Sprintf("malformed signature: too long: %d > 72", len(sig))
		return scriptError(ErrSigDER, str)
	}
	if sig[0] != 0x30 {
		str := fmt.Sprintf("malformed signature: format has wrong type: 0x%x", sig[0])
		return scriptError(ErrSigDER, str)
	}
	if int(sig[1]) != len(sig)-2 {
		str := fmt.Sprintf("malformed signature: bad length: %d != %d", sig[1], len(sig)-2)
		return scriptError(ErrSigDER, str)
	}

	rLen := int(sig[3])
	if rLen+5 > len(sig) {
		return scriptError(ErrSigDER, "malformed signature: S out of bounds")
	}
	sLen := int(sig[rLen+5])
	if rLen+sLen+6 != len(sig) {
		return scriptError(ErrSigDER, "malformed signature: invalid R length")
	}
	if sig[2] != 0x02 {
		return scriptError(ErrSigDER, "malformed signature: missing first integer marker")
	}
	if rLen == 0 {
		return scriptError(ErrSigDER, "malformed signature: R length is zero")
	}
	if sig[4]&0x80 != 0 {
		return scriptError(ErrSigDER, "malformed signature: R value is negative")
	}
	if rLen > 1 && sig[4] == 0x00 && sig[5]&0x80 == 0 {
		return scriptError(ErrSigDER, "malformed signature: invalid R value")
	}
	if sig[rLen+4] != 0x02 {
		return scriptError(ErrSigDER, "malformed signature: missing second integer marker")
	}
	if sLen == 0 {
		return scriptError(ErrSigDER, "malformed signature: S length is zero")
	}
	if sig[rLen+6]&0x80 != 0 {
		return scriptError(ErrSigDER, "malformed signature: S value is negative")
	}
	if sLen > 1 && sig[rLen+6] == 0x00 && sig[rLen+7]&0x80 == 0 {
		return scriptError(ErrSigDER, "malformed signature: invalid S value")
	}

	if vm.hasFlag(ScriptVerifyLowS) {
		sValue := new(big.Int).SetBytes(sig[rLen+6 : rLen+6+sLen])
		if sValue.Cmp(halfOrder) > 0 {
			return scriptError(ErrSigHighS,
				"signature is not canonical due to unnecessarily high S value")
		}
	}

	return nil
}

// getStack returns the contents of a stack as a byte array, bottom up.
func getStack(s *stack) [][]byte {
	array := make([][]byte, s.Depth())
	for i := range array {
		array[len(array)-i-1], _ = s.PeekByteArray(i)
	}
	return array
}

// setStack replaces the contents of a stack with data, where the last item
// becomes the top of the stack.
func setStack(s *stack, data [][]byte) {
	_ = s.DropN(s.Depth())
	for i := range data {
		s.PushByteArray(data[i])
	}
}

// GetStack returns the contents of the primary stack, bottom up.
func (vm *Engine) GetStack() [][]byte {
	return getStack(&vm.dstack)
}

// SetStack replaces the contents of the primary stack.
func (vm *Engine) SetStack(data [][]byte) {
	setStack(&vm.dstack, data)
}

// GetAltStack returns the contents of the alternate stack, bottom up.
func (vm *Engine) GetAltStack() [][]byte {
	return getStack(&vm.astack)
}

// SetAltStack replaces the contents of the alternate stack.
func (vm *Engine) SetAltStack(data [][]byte) {
	setStack(&vm.astack, data)
}

// SigChecks returns the number of signature check operations performed
// while evaluating this engine's scripts so far, used to enforce the
// per-input sigchecks budget.
func (vm *Engine) SigChecks() int {
	return vm.sigChecks
}

// NewEngine returns a new script engine for the provided public key
// script, transaction, and input index.
func NewEngine(scriptPubKey []byte, tx *wire.MsgTx, txIdx int, flags ScriptFlags,
	inputAmount int64, sigCache *SigCache, hashCache *TxSigHashes) (*Engine, error) {

	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or >= %d",
			txIdx, len(tx.TxIn))
		return nil, scriptError(ErrInternal, str)
	}
	scriptSig := tx.TxIn[txIdx].SignatureScript

	if len(scriptSig) == 0 && len(scriptPubKey) == 0 {
		return nil, scriptError(ErrEvalFalse, "false stack entry at end of script execution")
	}

	vm := Engine{
		flags:       flags,
		sigCache:    sigCache,
		hashCache:   hashCache,
		tx:          *tx,
		txIdx:       txIdx,
		inputAmount: inputAmount,
	}

	parsedScriptSig, err := parseScriptAndVerifySize(scriptSig)
	if err != nil {
		return nil, err
	}
	if vm.hasFlag(ScriptVerifySigPushOnly) && !isPushOnly(parsedScriptSig) {
		return nil, scriptError(ErrSigPushOnly, "signature script is not push only")
	}

	parsedScriptPubKey, err := parseScriptAndVerifySize(scriptPubKey)
	if err != nil {
		return nil, err
	}

	vm.scripts = [][]parsedOpcode{parsedScriptSig, parsedScriptPubKey}
	if len(scriptSig) == 0 {
		vm.scriptIdx++
	}

	if vm.hasFlag(ScriptBip16) && isScriptHash(vm.scripts[1]) {
		if !isPushOnly(vm.scripts[0]) {
			return nil, scriptError(ErrSigPushOnly, "pay to script hash is not push only")
		}
		vm.isP2SH = true
	}

	return &vm, nil
}

// Verify is the top-level input validator: it builds an Engine for the
// given input's signature script and previous output's public key script,
// runs it to completion (including any P2SH redeem script and the segwit
// recovery exception), and enforces the per-input sigcheck budget. It
// returns the input's sigcheck count, reported to the caller only when
// ScriptVerifyReportSigChecks is set (otherwise 0, per the "clear the
// counter unless asked to report it" rule).
func Verify(tx *wire.MsgTx, txIdx int, scriptPubKey []byte, inputAmount int64,
	flags ScriptFlags, sigCache *SigCache, hashCache *TxSigHashes) (int, error) {

	vm, err := NewEngine(scriptPubKey, tx, txIdx, flags, inputAmount, sigCache, hashCache)
	if err != nil {
		return 0, err
	}
	if err := vm.Execute(); err != nil {
		return 0, err
	}

	sigChecks := vm.SigChecks()
	if vm.hasFlag(ScriptVerifyInputSigChecks) {
		scriptSigSize := int64(len(tx.TxIn[txIdx].SignatureScript))
		if scriptSigSize < int64(sigChecks)*43-60 {
			str := fmt.Sprintf("signature script of %d bytes is too small for %d sigchecks",
				scriptSigSize, sigChecks)
			return 0, scriptError(ErrInputSigChecks, str)
		}
	}

	if !vm.hasFlag(ScriptVerifyReportSigChecks) {
		return 0, nil
	}
	return sigChecks, nil
}

func parseScriptAndVerifySize(script []byte) ([]parsedOpcode, error) {
	if len(script) > MaxScriptSize {
		str := fmt.Sprintf("script size %d is larger than max allowed size %d",
			len(script), MaxScriptSize)
		return nil, scriptError(ErrScriptSize, str)
	}
	return parseScript(script)
}
