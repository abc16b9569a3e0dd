// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

const (
	// defaultScriptNumLen is the default number of bytes data being
	// interpreted as an integer may be.
	defaultScriptNumLen = 4

	// maxScriptNumLen is the most bytes a script number operand used by
	// the locktime opcodes (CHECKLOCKTIMEVERIFY/CHECKSEQUENCEVERIFY) may
	// occupy.
	maxScriptNumLen = 5
)

// ScriptNum represents a numeric value used in the scripting engine with
// special handling to deal with the subtle semantics required by
// consensus.
//
// All numbers are stored on the data and alternate stacks encoded as
// little-endian with a sign bit. All numeric opcodes such as OP_ADD, OP_SUB,
// and OP_MUL, are only allowed to operate on 4-byte integers in the
// range [-2^31 + 1, 2^31 - 1], however the result of a successful operation
// may overflow back into the valid range between -2^31 + 1 and 2^31 - 1.
type ScriptNum int64

// checkMinimalDataEncoding returns whether or not the passed byte array
// adheres to the minimal encoding requirements.
func checkMinimalDataEncoding(v []byte) error {
	if len(v) == 0 {
		return nil
	}

	// Check that the number is encoded with the fewest possible bytes.
	if v[len(v)-1]&0x7f == 0 {
		// The second-to-last byte must have the high bit set in order
		// for the last byte to be considered non-redundant, unless
		// the entire value is a single byte.
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			str := fmt.Sprintf("numeric value encoded as %x is "+
				"not minimally encoded", v)
			return scriptError(ErrMinimalData, str)
		}
	}

	return nil
}

// Bytes returns the little endian byte representation of the script number.
func (n ScriptNum) Bytes() []byte {
	// Zero encodes as the empty string.
	if n == 0 {
		return nil
	}

	// Take the absolute value and keep track of whether it was originally
	// negative.
	isNegative := n < 0
	var absoluteValue int64
	if isNegative {
		absoluteValue = -int64(n)
	} else {
		absoluteValue = int64(n)
	}

	result := make([]byte, 0, 9)
	for absoluteValue > 0 {
		result = append(result, byte(absoluteValue&0xff))
		absoluteValue >>= 8
	}

	// When the most significant byte already has the high bit set, add
	// an extra byte of 0x00 (or 0x80 if negative) to signal that the
	// following byte is the sign byte.
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// Int32 returns the script number clamped to a valid int32. This is
// provided for opcodes that expect an int32 regardless of whether the
// script number overflows the range.
func (n ScriptNum) Int32() int32 {
	if n > int64(1<<31-1) {
		return 1<<31 - 1
	}
	if n < int64(-(1<<31)+1) {
		return -(1<<31 - 1)
	}
	return int32(n)
}

// MakeScriptNum exposes makeScriptNum to callers outside this package, such
// as the chain package's BIP34 coinbase-height extraction, which needs to
// decode a raw push the same way the interpreter does without running a
// script.
func MakeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (ScriptNum, error) {
	return makeScriptNum(v, requireMinimal, scriptNumLen)
}

// makeScriptNum interprets the passed serialized bytes as an encoded script
// number and returns the result as a ScriptNum.
//
// Since the consensus rules dictate that serialized bytes interpreted as
// an integer must be of a specific length (4 bytes for most arithmetic
// opcodes, 5 for the locktime opcodes), the provided bounds restrict the
// allowed range. requireMinimal enforces that the provided byte array was
// encoded using the minimum possible number of bytes.
func makeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (ScriptNum, error) {
	if len(v) > scriptNumLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes "+
			"which exceeds the max allowed of %d", v, len(v), scriptNumLen)
		return 0, scriptError(ErrInvalidNumberRange, str)
	}

	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}

	if len(v) == 0 {
		return 0, nil
	}

	var result int64
	for i, b := range v {
		result |= int64(b) << uint8(8*i)
	}

	// If the sign bit is set on the most significant byte, the number is
	// negative; mask it off and flip the sign.
	if v[len(v)-1]&0x80 != 0 {
		result &= ^(int64(0x80) << uint8(8*(len(v)-1)))
		return ScriptNum(-result), nil
	}

	return ScriptNum(result), nil
}
