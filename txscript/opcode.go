// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// An opcode defines the information related to a txscript opcode.
// opfunc, if present, is the function to call to actually execute the
// opcode.
type opcode struct {
	value  byte
	name   string
	length int
	opfunc func(*parsedOpcode, *Engine) error
}

// These constants are the values of the official opcodes used on the wire
// format. The opcode numbering matches Bitcoin Cash consensus.
const (
	Op0                   = 0x00
	OpFalse               = 0x00
	OpData1               = 0x01
	OpData2               = 0x02
	OpData3               = 0x03
	OpData4               = 0x04
	OpData5               = 0x05
	OpData6               = 0x06
	OpData7               = 0x07
	OpData8               = 0x08
	OpData9               = 0x09
	OpData10              = 0x0a
	OpData11              = 0x0b
	OpData12              = 0x0c
	OpData13              = 0x0d
	OpData14              = 0x0e
	OpData15              = 0x0f
	OpData16              = 0x10
	OpData17              = 0x11
	OpData18              = 0x12
	OpData19              = 0x13
	OpData20              = 0x14
	OpData21              = 0x15
	OpData22              = 0x16
	OpData23              = 0x17
	OpData24              = 0x18
	OpData25              = 0x19
	OpData26              = 0x1a
	OpData27              = 0x1b
	OpData28              = 0x1c
	OpData29              = 0x1d
	OpData30              = 0x1e
	OpData31              = 0x1f
	OpData32              = 0x20
	OpData33              = 0x21
	OpData34              = 0x22
	OpData35              = 0x23
	OpData36              = 0x24
	OpData37              = 0x25
	OpData38              = 0x26
	OpData39              = 0x27
	OpData40              = 0x28
	OpData41              = 0x29
	OpData42              = 0x2a
	OpData43              = 0x2b
	OpData44              = 0x2c
	OpData45              = 0x2d
	OpData46              = 0x2e
	OpData47              = 0x2f
	OpData48              = 0x30
	OpData49              = 0x31
	OpData50              = 0x32
	OpData51              = 0x33
	OpData52              = 0x34
	OpData53              = 0x35
	OpData54              = 0x36
	OpData55              = 0x37
	OpData56              = 0x38
	OpData57              = 0x39
	OpData58              = 0x3a
	OpData59              = 0x3b
	OpData60              = 0x3c
	OpData61              = 0x3d
	OpData62              = 0x3e
	OpData63              = 0x3f
	OpData64              = 0x40
	OpData65              = 0x41
	OpData66              = 0x42
	OpData67              = 0x43
	OpData68              = 0x44
	OpData69              = 0x45
	OpData70              = 0x46
	OpData71              = 0x47
	OpData72              = 0x48
	OpData73              = 0x49
	OpData74              = 0x4a
	OpData75              = 0x4b
	OpPushData1           = 0x4c
	OpPushData2           = 0x4d
	OpPushData4           = 0x4e
	Op1Negate             = 0x4f
	OpReserved            = 0x50
	Op1                   = 0x51
	OpTrue                = 0x51
	Op2                   = 0x52
	Op3                   = 0x53
	Op4                   = 0x54
	Op5                   = 0x55
	Op6                   = 0x56
	Op7                   = 0x57
	Op8                   = 0x58
	Op9                   = 0x59
	Op10                  = 0x5a
	Op11                  = 0x5b
	Op12                  = 0x5c
	Op13                  = 0x5d
	Op14                  = 0x5e
	Op15                  = 0x5f
	Op16                  = 0x60
	OpNop                 = 0x61
	OpVer                 = 0x62
	OpIf                  = 0x63
	OpNotIf               = 0x64
	OpVerIf               = 0x65
	OpVerNotIf            = 0x66
	OpElse                = 0x67
	OpEndIf               = 0x68
	OpVerify              = 0x69
	OpReturn              = 0x6a
	OpToAltStack          = 0x6b
	OpFromAltStack        = 0x6c
	Op2Drop               = 0x6d
	Op2Dup                = 0x6e
	Op3Dup                = 0x6f
	Op2Over               = 0x70
	Op2Rot                = 0x71
	Op2Swap               = 0x72
	OpIfDup               = 0x73
	OpDepth               = 0x74
	OpDrop                = 0x75
	OpDup                 = 0x76
	OpNip                 = 0x77
	OpOver                = 0x78
	OpPick                = 0x79
	OpRoll                = 0x7a
	OpRot                 = 0x7b
	OpSwap                = 0x7c
	OpTuck                = 0x7d
	OpCat                 = 0x7e
	OpSplit               = 0x7f
	OpNum2Bin             = 0x80
	OpBin2Num             = 0x81
	OpSize                = 0x82
	OpInvert              = 0x83
	OpAnd                 = 0x84
	OpOr                  = 0x85
	OpXor                 = 0x86
	OpEqual               = 0x87
	OpEqualVerify         = 0x88
	OpReserved1           = 0x89
	OpReserved2           = 0x8a
	Op1Add                = 0x8b
	Op1Sub                = 0x8c
	Op2Mul                = 0x8d
	Op2Div                = 0x8e
	OpNegate              = 0x8f
	OpAbs                 = 0x90
	OpNot                 = 0x91
	Op0NotEqual           = 0x92
	OpAdd                 = 0x93
	OpSub                 = 0x94
	OpMul                 = 0x95
	OpDiv                 = 0x96
	OpMod                 = 0x97
	OpLShift              = 0x98
	OpRShift              = 0x99
	OpBoolAnd             = 0x9a
	OpBoolOr              = 0x9b
	OpNumEqual            = 0x9c
	OpNumEqualVerify      = 0x9d
	OpNumNotEqual         = 0x9e
	OpLessThan            = 0x9f
	OpGreaterThan         = 0xa0
	OpLessThanOrEqual     = 0xa1
	OpGreaterThanOrEqual  = 0xa2
	OpMin                 = 0xa3
	OpMax                 = 0xa4
	OpWithin              = 0xa5
	OpRipeMD160           = 0xa6
	OpSha1                = 0xa7
	OpSha256              = 0xa8
	OpHash160             = 0xa9
	OpHash256             = 0xaa
	OpCodeSeparator       = 0xab
	OpCheckSig            = 0xac
	OpCheckSigVerify      = 0xad
	OpCheckMultiSig       = 0xae
	OpCheckMultiSigVerify = 0xaf
	OpNop1                = 0xb0
	OpCheckLockTimeVerify = 0xb1
	OpCheckSequenceVerify = 0xb2
	OpNop4                = 0xb3
	OpNop5                = 0xb4
	OpNop6                = 0xb5
	OpNop7                = 0xb6
	OpNop8                = 0xb7
	OpNop9                = 0xb8
	OpNop10               = 0xb9
	OpCheckDataSig        = 0xba
	OpCheckDataSigVerify  = 0xbb
	OpReverseBytes        = 0xbc
	OpInvalidOpCode       = 0xff
)

// opcodeUndefined is a placeholder for opcode values that do not correspond
// to any operation; executing one is always ErrBadOpcode.
func opcodeUndefined(op *parsedOpcode, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute reserved/invalid opcode %s", op.opcode.name)
	return scriptError(ErrBadOpcode, str)
}

// opcodeArray associates an opcode with its respective function, byte
// value, and length. length tracks the standard length for each opcode:
//   - Positive values mean a fixed length, counting the opcode byte: 1 for
//     every non-push and unknown opcode, n+1 for OP_DATA_n (1-75 bytes).
//   - Negative values -1,-2,-4 mean the next 1, 2, or 4 bytes are the
//     length of data to push (PUSHDATA1/2/4).
var opcodeArray [256]opcode

func init() {
	opcodeArray[Op0] = opcode{Op0, "OP_0", 1, opcodePushData}
	for i := OpData1; i <= OpData75; i++ {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_DATA_%d", i), i + 1, opcodePushData}
	}
	opcodeArray[OpPushData1] = opcode{OpPushData1, "OP_PUSHDATA1", -1, opcodePushData}
	opcodeArray[OpPushData2] = opcode{OpPushData2, "OP_PUSHDATA2", -2, opcodePushData}
	opcodeArray[OpPushData4] = opcode{OpPushData4, "OP_PUSHDATA4", -4, opcodePushData}
	opcodeArray[Op1Negate] = opcode{Op1Negate, "OP_1NEGATE", 1, opcodeNegate}
	opcodeArray[OpReserved] = opcode{OpReserved, "OP_RESERVED", 1, opcodeReserved}
	for i := Op1; i <= Op16; i++ {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_%d", i-Op1+1), 1, opcodeN}
	}

	opcodeArray[OpNop] = opcode{OpNop, "OP_NOP", 1, opcodeNop}
	opcodeArray[OpVer] = opcode{OpVer, "OP_VER", 1, opcodeReserved}
	opcodeArray[OpIf] = opcode{OpIf, "OP_IF", 1, opcodeIf}
	opcodeArray[OpNotIf] = opcode{OpNotIf, "OP_NOTIF", 1, opcodeNotIf}
	opcodeArray[OpVerIf] = opcode{OpVerIf, "OP_VERIF", 1, opcodeReserved}
	opcodeArray[OpVerNotIf] = opcode{OpVerNotIf, "OP_VERNOTIF", 1, opcodeReserved}
	opcodeArray[OpElse] = opcode{OpElse, "OP_ELSE", 1, opcodeElse}
	opcodeArray[OpEndIf] = opcode{OpEndIf, "OP_ENDIF", 1, opcodeEndif}
	opcodeArray[OpVerify] = opcode{OpVerify, "OP_VERIFY", 1, opcodeVerify}
	opcodeArray[OpReturn] = opcode{OpReturn, "OP_RETURN", 1, opcodeReturn}

	opcodeArray[OpToAltStack] = opcode{OpToAltStack, "OP_TOALTSTACK", 1, opcodeToAltStack}
	opcodeArray[OpFromAltStack] = opcode{OpFromAltStack, "OP_FROMALTSTACK", 1, opcodeFromAltStack}
	opcodeArray[Op2Drop] = opcode{Op2Drop, "OP_2DROP", 1, opcode2Drop}
	opcodeArray[Op2Dup] = opcode{Op2Dup, "OP_2DUP", 1, opcode2Dup}
	opcodeArray[Op3Dup] = opcode{Op3Dup, "OP_3DUP", 1, opcode3Dup}
	opcodeArray[Op2Over] = opcode{Op2Over, "OP_2OVER", 1, opcode2Over}
	opcodeArray[Op2Rot] = opcode{Op2Rot, "OP_2ROT", 1, opcode2Rot}
	opcodeArray[Op2Swap] = opcode{Op2Swap, "OP_2SWAP", 1, opcode2Swap}
	opcodeArray[OpIfDup] = opcode{OpIfDup, "OP_IFDUP", 1, opcodeIfDup}
	opcodeArray[OpDepth] = opcode{OpDepth, "OP_DEPTH", 1, opcodeDepth}
	opcodeArray[OpDrop] = opcode{OpDrop, "OP_DROP", 1, opcodeDrop}
	opcodeArray[OpDup] = opcode{OpDup, "OP_DUP", 1, opcodeDup}
	opcodeArray[OpNip] = opcode{OpNip, "OP_NIP", 1, opcodeNip}
	opcodeArray[OpOver] = opcode{OpOver, "OP_OVER", 1, opcodeOver}
	opcodeArray[OpPick] = opcode{OpPick, "OP_PICK", 1, opcodePick}
	opcodeArray[OpRoll] = opcode{OpRoll, "OP_ROLL", 1, opcodeRoll}
	opcodeArray[OpRot] = opcode{OpRot, "OP_ROT", 1, opcodeRot}
	opcodeArray[OpSwap] = opcode{OpSwap, "OP_SWAP", 1, opcodeSwap}
	opcodeArray[OpTuck] = opcode{OpTuck, "OP_TUCK", 1, opcodeTuck}

	opcodeArray[OpCat] = opcode{OpCat, "OP_CAT", 1, opcodeCat}
	opcodeArray[OpSplit] = opcode{OpSplit, "OP_SPLIT", 1, opcodeSplit}
	opcodeArray[OpNum2Bin] = opcode{OpNum2Bin, "OP_NUM2BIN", 1, opcodeNum2bin}
	opcodeArray[OpBin2Num] = opcode{OpBin2Num, "OP_BIN2NUM", 1, opcodeBin2num}
	opcodeArray[OpSize] = opcode{OpSize, "OP_SIZE", 1, opcodeSize}

	opcodeArray[OpInvert] = opcode{OpInvert, "OP_INVERT", 1, opcodeDisabled}
	opcodeArray[OpAnd] = opcode{OpAnd, "OP_AND", 1, opcodeAnd}
	opcodeArray[OpOr] = opcode{OpOr, "OP_OR", 1, opcodeOr}
	opcodeArray[OpXor] = opcode{OpXor, "OP_XOR", 1, opcodeXor}
	opcodeArray[OpEqual] = opcode{OpEqual, "OP_EQUAL", 1, opcodeEqual}
	opcodeArray[OpEqualVerify] = opcode{OpEqualVerify, "OP_EQUALVERIFY", 1, opcodeEqualVerify}
	opcodeArray[OpReserved1] = opcode{OpReserved1, "OP_RESERVED1", 1, opcodeReserved}
	opcodeArray[OpReserved2] = opcode{OpReserved2, "OP_RESERVED2", 1, opcodeReserved}

	opcodeArray[Op1Add] = opcode{Op1Add, "OP_1ADD", 1, opcode1Add}
	opcodeArray[Op1Sub] = opcode{Op1Sub, "OP_1SUB", 1, opcode1Sub}
	opcodeArray[Op2Mul] = opcode{Op2Mul, "OP_2MUL", 1, opcodeDisabled}
	opcodeArray[Op2Div] = opcode{Op2Div, "OP_2DIV", 1, opcodeDisabled}
	opcodeArray[OpNegate] = opcode{OpNegate, "OP_NEGATE", 1, opcodeNegate1}
	opcodeArray[OpAbs] = opcode{OpAbs, "OP_ABS", 1, opcodeAbs}
	opcodeArray[OpNot] = opcode{OpNot, "OP_NOT", 1, opcodeNot}
	opcodeArray[Op0NotEqual] = opcode{Op0NotEqual, "OP_0NOTEQUAL", 1, opcode0NotEqual}
	opcodeArray[OpAdd] = opcode{OpAdd, "OP_ADD", 1, opcodeAdd}
	opcodeArray[OpSub] = opcode{OpSub, "OP_SUB", 1, opcodeSub}
	opcodeArray[OpMul] = opcode{OpMul, "OP_MUL", 1, opcodeDisabled}
	opcodeArray[OpDiv] = opcode{OpDiv, "OP_DIV", 1, opcodeDiv}
	opcodeArray[OpMod] = opcode{OpMod, "OP_MOD", 1, opcodeMod}
	opcodeArray[OpLShift] = opcode{OpLShift, "OP_LSHIFT", 1, opcodeDisabled}
	opcodeArray[OpRShift] = opcode{OpRShift, "OP_RSHIFT", 1, opcodeDisabled}
	opcodeArray[OpBoolAnd] = opcode{OpBoolAnd, "OP_BOOLAND", 1, opcodeBoolAnd}
	opcodeArray[OpBoolOr] = opcode{OpBoolOr, "OP_BOOLOR", 1, opcodeBoolOr}
	opcodeArray[OpNumEqual] = opcode{OpNumEqual, "OP_NUMEQUAL", 1, opcodeNumEqual}
	opcodeArray[OpNumEqualVerify] = opcode{OpNumEqualVerify, "OP_NUMEQUALVERIFY", 1, opcodeNumEqualVerify}
	opcodeArray[OpNumNotEqual] = opcode{OpNumNotEqual, "OP_NUMNOTEQUAL", 1, opcodeNumNotEqual}
	opcodeArray[OpLessThan] = opcode{OpLessThan, "OP_LESSTHAN", 1, opcodeLessThan}
	opcodeArray[OpGreaterThan] = opcode{OpGreaterThan, "OP_GREATERTHAN", 1, opcodeGreaterThan}
	opcodeArray[OpLessThanOrEqual] = opcode{OpLessThanOrEqual, "OP_LESSTHANOREQUAL", 1, opcodeLessThanOrEqual}
	opcodeArray[OpGreaterThanOrEqual] = opcode{OpGreaterThanOrEqual, "OP_GREATERTHANOREQUAL", 1, opcodeGreaterThanOrEqual}
	opcodeArray[OpMin] = opcode{OpMin, "OP_MIN", 1, opcodeMin}
	opcodeArray[OpMax] = opcode{OpMax, "OP_MAX", 1, opcodeMax}
	opcodeArray[OpWithin] = opcode{OpWithin, "OP_WITHIN", 1, opcodeWithin}

	opcodeArray[OpRipeMD160] = opcode{OpRipeMD160, "OP_RIPEMD160", 1, opcodeRipemd160}
	opcodeArray[OpSha1] = opcode{OpSha1, "OP_SHA1", 1, opcodeSha1}
	opcodeArray[OpSha256] = opcode{OpSha256, "OP_SHA256", 1, opcodeSha256}
	opcodeArray[OpHash160] = opcode{OpHash160, "OP_HASH160", 1, opcodeHash160}
	opcodeArray[OpHash256] = opcode{OpHash256, "OP_HASH256", 1, opcodeHash256}
	opcodeArray[OpCodeSeparator] = opcode{OpCodeSeparator, "OP_CODESEPARATOR", 1, opcodeCodeSeparator}
	opcodeArray[OpCheckSig] = opcode{OpCheckSig, "OP_CHECKSIG", 1, opcodeCheckSig}
	opcodeArray[OpCheckSigVerify] = opcode{OpCheckSigVerify, "OP_CHECKSIGVERIFY", 1, opcodeCheckSigVerify}
	opcodeArray[OpCheckMultiSig] = opcode{OpCheckMultiSig, "OP_CHECKMULTISIG", 1, opcodeCheckMultiSig}
	opcodeArray[OpCheckMultiSigVerify] = opcode{OpCheckMultiSigVerify, "OP_CHECKMULTISIGVERIFY", 1, opcodeCheckMultiSigVerify}
	opcodeArray[OpCheckDataSig] = opcode{OpCheckDataSig, "OP_CHECKDATASIG", 1, opcodeCheckDataSig}
	opcodeArray[OpCheckDataSigVerify] = opcode{OpCheckDataSigVerify, "OP_CHECKDATASIGVERIFY", 1, opcodeCheckDataSigVerify}
	opcodeArray[OpReverseBytes] = opcode{OpReverseBytes, "OP_REVERSEBYTES", 1, opcodeReverseBytes}

	opcodeArray[OpNop1] = opcode{OpNop1, "OP_NOP1", 1, opcodeNop}
	opcodeArray[OpCheckLockTimeVerify] = opcode{OpCheckLockTimeVerify, "OP_CHECKLOCKTIMEVERIFY", 1, opcodeCheckLockTimeVerify}
	opcodeArray[OpCheckSequenceVerify] = opcode{OpCheckSequenceVerify, "OP_CHECKSEQUENCEVERIFY", 1, opcodeCheckSequenceVerify}
	for i := OpNop4; i <= OpNop10; i++ {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_NOP%d", i-OpNop1+1), 1, opcodeNop}
	}

	// Everything else not explicitly assigned above is an invalid/
	// reserved opcode; fill the gaps so the table always has 256
	// entries.
	for i := 0; i < 256; i++ {
		if opcodeArray[i].name == "" {
			opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_UNKNOWN%d", i), 1, opcodeUndefined}
		}
	}
}

// disabledOpcodes are opcodes that are permanently disabled and cause a
// script to fail if present in a script regardless of execution path.
var disabledOpcodes = map[byte]bool{
	OpInvert: true,
	Op2Mul:   true,
	Op2Div:   true,
	OpMul:    true,
	OpLShift: true,
	OpRShift: true,
}

// parsedOpcode represents an opcode that has been parsed and includes any
// potential data associated with it.
type parsedOpcode struct {
	opcode *opcode
	data   []byte
}

// isDisabled returns whether or not the opcode is disabled and thus is
// always bad to see in the instruction stream.
func (pop *parsedOpcode) isDisabled() bool {
	return disabledOpcodes[pop.opcode.value]
}

// alwaysIllegal returns whether or not the opcode is always illegal when
// present in a script.
func (pop *parsedOpcode) alwaysIllegal() bool {
	switch pop.opcode.value {
	case OpVerIf, OpVerNotIf:
		return true
	}
	return false
}

// isConditional returns whether or not the opcode is a conditional opcode
// which changes the conditional execution stack when executed.
func (pop *parsedOpcode) isConditional() bool {
	switch pop.opcode.value {
	case OpIf, OpNotIf, OpElse, OpEndIf:
		return true
	}
	return false
}

// isBranch is an alias for isConditional: IF/NOTIF/ELSE/ENDIF only.
func (pop *parsedOpcode) isBranch() bool {
	return pop.isConditional()
}

// isPush returns true iff the opcode pushes data onto the stack (including
// small-int opcodes OP_0/OP_1NEGATE/OP_1..OP_16, matching Bitcoin's
// "anything up to and including OP_16" push-only definition).
func (pop *parsedOpcode) isPush() bool {
	return pop.opcode.value <= Op16
}

// checkMinimalDataPush returns whether or not the current data push uses
// the minimal opcode required to push the data.
func (pop *parsedOpcode) checkMinimalDataPush() error {
	data := pop.data
	dataLen := len(data)
	opcodeVal := pop.opcode.value

	// OP_1NEGATE and OP_1..OP_16 carry no data bytes; each is already the
	// minimal encoding of its value.
	if opcodeVal == Op1Negate || (opcodeVal >= Op1 && opcodeVal <= Op16) {
		return nil
	}

	if dataLen == 0 && opcodeVal != Op0 {
		str := fmt.Sprintf("zero length data push is encoded with " +
			"opcode other than OP_0")
		return scriptError(ErrMinimalData, str)
	} else if dataLen == 1 && data[0] >= 1 && data[0] <= 16 {
		if opcodeVal != Op1+data[0]-1 {
			str := fmt.Sprintf("data push of the value %d encoded "+
				"with opcode %s instead of OP_%d", data[0],
				pop.opcode.name, data[0])
			return scriptError(ErrMinimalData, str)
		}
	} else if dataLen == 1 && data[0] == 0x81 {
		if opcodeVal != Op1Negate {
			str := fmt.Sprintf("data push of the value -1 encoded " +
				"with opcode other than OP_1NEGATE")
			return scriptError(ErrMinimalData, str)
		}
	} else if dataLen <= 75 {
		if int(opcodeVal) != dataLen+(OpData1-1) {
			str := fmt.Sprintf("data push of %d bytes encoded "+
				"with opcode %s instead of OP_DATA_%d", dataLen,
				pop.opcode.name, dataLen)
			return scriptError(ErrMinimalData, str)
		}
	} else if dataLen <= 255 {
		if opcodeVal != OpPushData1 {
			str := fmt.Sprintf("data push of %d bytes encoded "+
				"with opcode %s instead of OP_PUSHDATA1",
				dataLen, pop.opcode.name)
			return scriptError(ErrMinimalData, str)
		}
	} else if dataLen <= 65535 {
		if opcodeVal != OpPushData2 {
			str := fmt.Sprintf("data push of %d bytes encoded "+
				"with opcode %s instead of OP_PUSHDATA2",
				dataLen, pop.opcode.name)
			return scriptError(ErrMinimalData, str)
		}
	}
	return nil
}

// bytes returns any data associated with the opcode encoded as it would be
// in a script, including the opcode and any length prefix.
func (pop *parsedOpcode) bytes() ([]byte, error) {
	var retbytes []byte
	if pop.opcode.length > 0 {
		retbytes = make([]byte, 1, pop.opcode.length)
	} else {
		retbytes = make([]byte, 1, 1+len(pop.data)+
			-pop.opcode.length)
	}

	retbytes[0] = pop.opcode.value
	if pop.opcode.length == 1 {
		if len(pop.data) != 0 {
			str := fmt.Sprintf("internal consistency error - "+
				"parsed opcode %s has data length %d when %d "+
				"was expected", pop.opcode.name, len(pop.data),
				0)
			return nil, scriptError(ErrInternal, str)
		}
		return retbytes, nil
	}
	nbytes := pop.opcode.length
	if pop.opcode.length < 0 {
		l := len(pop.data)
		switch pop.opcode.length {
		case -1:
			retbytes = append(retbytes, byte(l))
			nbytes = int(retbytes[1]) + len(retbytes)
		case -2:
			retbytes = append(retbytes, byte(l&0xff), byte(l>>8&0xff))
			nbytes = int(littleEndianUint16(retbytes[1:3])) + len(retbytes)
		case -4:
			retbytes = append(retbytes, byte(l&0xff), byte((l>>8)&0xff),
				byte((l>>16)&0xff), byte((l>>24)&0xff))
			nbytes = int(littleEndianUint32(retbytes[1:5])) + len(retbytes)
		}
	}

	retbytes = append(retbytes, pop.data...)

	if len(retbytes) != nbytes {
		str := fmt.Sprintf("internal consistency error - parsed "+
			"opcode %s has data length %d when %d was expected",
			pop.opcode.name, len(retbytes), nbytes)
		return nil, scriptError(ErrInternal, str)
	}

	return retbytes, nil
}

func littleEndianUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func littleEndianUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// print returns a human-readable string representation of the opcode for
// use in script disassembly.
func (pop *parsedOpcode) print(oneline bool) string {
	opcodeName := pop.opcode.name
	if oneline {
		if opcodeName == "OP_MALFORMED" {
			return fmt.Sprintf("[error] %x", pop.data)
		}
	}

	if pop.opcode.length == 1 {
		return opcodeName
	}

	return fmt.Sprintf("%s 0x%02x 0x%02x", opcodeName, len(pop.data), pop.data)
}

// parseScript preparses the script in bytes into a list of parsed opcodes
// while applying a few sanity checks.
//
// If the script ends mid-push (a truncated PUSHDATAn or fixed-length
// push), the scan stops and the final entry is a sentinel "Malformed"
// opcode carrying the tail bytes; scanners must stop at this sentinel.
func parseScript(script []byte) ([]parsedOpcode, error) {
	return parseScriptTemplate(script, &opcodeArray)
}

// malformedOpcode is the sentinel entry appended when a script ends
// mid-push. It is never present in opcodeArray; scanners recognize it by
// comparing pop.opcode against &malformedOpcode.
var malformedOpcode = opcode{value: OpInvalidOpCode, name: "OP_MALFORMED", length: 1}

func parseScriptTemplate(script []byte, opcodes *[256]opcode) ([]parsedOpcode, error) {
	retScript := make([]parsedOpcode, 0, len(script))
	for i := 0; i < len(script); {
		instr := script[i]
		op := &opcodes[instr]
		pop := parsedOpcode{opcode: op}

		switch {
		case op.length == 1:
			i++
		case op.length > 1:
			if len(script[i:]) < op.length {
				retScript = append(retScript, parsedOpcode{opcode: &malformedOpcode, data: script[i+1:]})
				return retScript, nil
			}
			pop.data = script[i+1 : i+op.length]
			i += op.length
		case op.length < 0:
			var l int
			off := i + 1
			switch op.length {
			case -1:
				if len(script[off:]) < 1 {
					retScript = append(retScript, parsedOpcode{opcode: &malformedOpcode, data: script[off:]})
					return retScript, nil
				}
				l = int(script[off])
				off++
			case -2:
				if len(script[off:]) < 2 {
					retScript = append(retScript, parsedOpcode{opcode: &malformedOpcode, data: script[off:]})
					return retScript, nil
				}
				l = int(littleEndianUint16(script[off : off+2]))
				off += 2
			case -4:
				if len(script[off:]) < 4 {
					retScript = append(retScript, parsedOpcode{opcode: &malformedOpcode, data: script[off:]})
					return retScript, nil
				}
				l = int(littleEndianUint32(script[off : off+4]))
				off += 4
			}
			if len(script[off:]) < l {
				retScript = append(retScript, parsedOpcode{opcode: &malformedOpcode, data: script[off:]})
				return retScript, nil
			}
			pop.data = script[off : off+l]
			i = off + l
		}

		retScript = append(retScript, pop)
	}

	return retScript, nil
}

// unparseScript reverses the above, reassembling a slice of parsed opcodes
// into its canonical serialized byte vector.
func unparseScript(pops []parsedOpcode) ([]byte, error) {
	script := make([]byte, 0, len(pops))
	for _, pop := range pops {
		b, err := pop.bytes()
		if err != nil {
			return nil, err
		}
		script = append(script, b...)
	}
	return script, nil
}

// isPushOnly returns true if every opcode in the script is a data push
// opcode, the SIGPUSHONLY / P2SH input-script requirement.
func isPushOnly(pops []parsedOpcode) bool {
	for _, pop := range pops {
		if pop.opcode.value > Op16 {
			return false
		}
	}
	return true
}

// isScriptHash returns true if the script passed is a pay-to-script-hash
// transaction, False otherwise.
func isScriptHash(pops []parsedOpcode) bool {
	return len(pops) == 3 &&
		pops[0].opcode.value == OpHash160 &&
		pops[1].opcode.value == OpData20 &&
		pops[2].opcode.value == OpEqual
}

// isWitnessProgram reports whether pops matches the minimal "witness
// program" template (OP_0..OP_16 followed by a single 2-40 byte push),
// used only to recognize the segwit-recovery exception in verify.
func isWitnessProgram(pops []parsedOpcode) bool {
	if len(pops) != 2 {
		return false
	}
	version := pops[0].opcode.value
	if version != Op0 && !(version >= Op1 && version <= Op16) {
		return false
	}
	if pops[1].opcode.value > OpData75 {
		return false
	}
	l := len(pops[1].data)
	return l >= 2 && l <= 40
}

// PushedData returns the pushed data carried by every opcode in script, in
// order, including small-integer pushes (OP_1..OP_16, OP_1NEGATE) reported
// as their serialized ScriptNum form. Used by the chain package to extract
// the BIP34 height push from a coinbase scriptSig without otherwise
// executing the script.
func PushedData(script []byte) ([][]byte, error) {
	pops, err := parseScript(script)
	if err != nil {
		return nil, err
	}

	var data [][]byte
	for _, pop := range pops {
		if pop.opcode.value > Op16 {
			continue
		}
		switch {
		case pop.opcode.value == Op0:
			data = append(data, nil)
		case pop.opcode.value == Op1Negate:
			data = append(data, ScriptNum(-1).Bytes())
		case pop.opcode.value >= Op1 && pop.opcode.value <= Op16:
			data = append(data, ScriptNum(pop.opcode.value-(Op1-1)).Bytes())
		default:
			data = append(data, pop.data)
		}
	}
	return data, nil
}
