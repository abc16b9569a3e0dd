// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
)

// defaultScriptAlloc is the default size used for the backing array for a
// script being built by the ScriptBuilder. The array will be reallocated
// once the builder has enough data for it to grow past this initial size.
const defaultScriptAlloc = 500

// ScriptBuilder provides a facility for building custom scripts. It allows
// you to push opcodes, ints, and data while respecting canonical encoding.
// In general it does not ensure the script will execute correctly, however
// any data pushes which would exceed the maximum allowed script engine
// limits and are therefore guaranteed to fail at execution time are
// instead rejected immediately.
type ScriptBuilder struct {
	script []byte
	err    error
}

// AddOp pushes the passed opcode to the end of the script.
func (b *ScriptBuilder) AddOp(opcode byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if len(b.script)+1 > MaxScriptSize {
		b.err = fmt.Errorf("adding an opcode would exceed the maximum "+
			"allowed canonical script length of %d", MaxScriptSize)
		return b
	}

	b.script = append(b.script, opcode)
	return b
}

// AddOps pushes the passed raw opcode bytes to the end of the script. It is
// used internally to re-append an already-parsed subscript.
func (b *ScriptBuilder) AddOps(opcodes []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if len(b.script)+len(opcodes) > MaxScriptSize {
		b.err = fmt.Errorf("adding opcodes would exceed the maximum "+
			"allowed canonical script length of %d", MaxScriptSize)
		return b
	}

	b.script = append(b.script, opcodes...)
	return b
}

// AddInt64 pushes the passed int64 to the end of the script, using the
// smallest canonical push opcode available.
func (b *ScriptBuilder) AddInt64(val int64) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if val == 0 {
		b.script = append(b.script, Op0)
		return b
	}
	if val == -1 || (val >= 1 && val <= 16) {
		b.script = append(b.script, byte(Op1-1+val))
		return b
	}

	return b.AddData(ScriptNum(val).Bytes())
}

// AddData pushes the passed data to the end of the script, using the
// smallest canonical data push opcode that encodes the data's length.
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	dataSize := canonicalDataSize(data)
	if len(b.script)+dataSize > MaxScriptSize {
		b.err = fmt.Errorf("adding %d bytes of data would exceed the "+
			"maximum allowed canonical script length of %d",
			dataSize, MaxScriptSize)
		return b
	}

	if len(data) > MaxScriptElementSize {
		b.err = fmt.Errorf("adding a data element of %d bytes would "+
			"exceed the maximum allowed script element size of %d",
			len(data), MaxScriptElementSize)
		return b
	}

	b.script = addData(b.script, data)
	return b
}

// canonicalDataSize returns the number of bytes the canonical encoding of
// data will take up.
func canonicalDataSize(data []byte) int {
	dataLen := len(data)

	if dataLen == 0 {
		return 1
	}
	if dataLen == 1 && data[0] <= 16 {
		return 1
	}
	if dataLen == 1 && data[0] == 0x81 {
		return 1
	}

	if dataLen < OpPushData1 {
		return 1 + dataLen
	} else if dataLen <= 0xff {
		return 2 + dataLen
	} else if dataLen <= 0xffff {
		return 3 + dataLen
	}
	return 5 + dataLen
}

// addData is the internal function used to add the passed byte slice to the
// script using the smallest possible opcode encoding.
func addData(script []byte, data []byte) []byte {
	dataLen := len(data)

	if dataLen == 0 || (dataLen == 1 && data[0] == 0) {
		return append(script, Op0)
	} else if dataLen == 1 && data[0] <= 16 {
		return append(script, byte(Op1-1+data[0]))
	} else if dataLen == 1 && data[0] == 0x81 {
		return append(script, byte(Op1Negate))
	}

	switch {
	case dataLen < OpPushData1:
		script = append(script, byte(OpData1-1+dataLen))
	case dataLen <= 0xff:
		script = append(script, OpPushData1, byte(dataLen))
	case dataLen <= 0xffff:
		script = append(script, OpPushData2, byte(dataLen), byte(dataLen>>8))
	default:
		script = append(script, OpPushData4, byte(dataLen), byte(dataLen>>8),
			byte(dataLen>>16), byte(dataLen>>24))
	}

	return append(script, data...)
}

// Script returns the currently built script. When any errors occurred while
// building the script, the script will be returned up to the point of the
// first error along with the error.
func (b *ScriptBuilder) Script() ([]byte, error) {
	return b.script, b.err
}

// Reset resets the script so it has no content.
func (b *ScriptBuilder) Reset() *ScriptBuilder {
	b.script = b.script[:0]
	b.err = nil
	return b
}

// NewScriptBuilder returns a new instance of a script builder. See
// ScriptBuilder for details.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{script: make([]byte, 0, defaultScriptAlloc)}
}
