// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/hex"
	"fmt"
)

// asBool gets the boolean interpretation of the byte array, following
// Bitcoin's script truth convention: any non-zero value is true, except a
// value consisting of only zero bytes with the final byte being exactly
// 0x80 (negative zero), which is false.
func asBool(t []byte) bool {
	for i := range t {
		if t[i] != 0 {
			if i == len(t)-1 && t[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// fromBool converts a boolean into the appropriate byte array.
func fromBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return nil
}

// stack represents a stack of immutable objects to be used with the script
// engine. Objects may be pushed/popped from the stack either as a byte
// slice or a script number.
type stack struct {
	stk        [][]byte
	verifyMinimalData bool
}

// stackIndex converts the passed index into the equivalent stack position.
func (s *stack) stackIndex(idx int) int {
	adjustedIdx := len(s.stk) + idx
	return adjustedIdx
}

// checkIndex returns an error if the index is out of bounds.
func (s *stack) checkIndex(idx int) error {
	if idx < 0 || idx >= len(s.stk) {
		str := fmt.Sprintf("index %d is invalid for stack size %d",
			idx, len(s.stk))
		return scriptError(ErrInvalidStackOperation, str)
	}
	return nil
}

// Depth returns the number of items on the stack.
func (s *stack) Depth() int32 {
	return int32(len(s.stk))
}

// PushByteArray pushes the provided byte array onto the stack.
func (s *stack) PushByteArray(so []byte) {
	s.stk = append(s.stk, so)
}

// PushInt pushes the provided script num onto the stack.
func (s *stack) PushInt(val ScriptNum) {
	s.PushByteArray(val.Bytes())
}

// PushBool pushes the provided boolean onto the stack.
func (s *stack) PushBool(val bool) {
	s.PushByteArray(fromBool(val))
}

// PopByteArray pops the value off the top of the stack and returns it.
func (s *stack) PopByteArray() ([]byte, error) {
	return s.nipN(0)
}

// PopInt pops the value off the top of the stack, converts it into a script
// number, and returns it.
func (s *stack) PopInt() (ScriptNum, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, s.verifyMinimalData, defaultScriptNumLen)
}

// PopBool pops the value off the top of the stack, converts it into a bool,
// and returns it.
func (s *stack) PopBool() (bool, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

// PeekByteArray returns the Nth item on the stack without removing it.
func (s *stack) PeekByteArray(idx int) ([]byte, error) {
	sz := len(s.stk)
	if idx < 0 || idx >= sz {
		str := fmt.Sprintf("index %d is invalid for stack size %d", idx, sz)
		return nil, scriptError(ErrInvalidStackOperation, str)
	}
	return s.stk[sz-idx-1], nil
}

// PeekInt returns the Nth item on the stack as a script num without
// removing it. It accepts items of up to maxScriptNumLen bytes, the operand
// limit of the locktime opcodes.
func (s *stack) PeekInt(idx int) (ScriptNum, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, s.verifyMinimalData, maxScriptNumLen)
}

// PeekBool returns the Nth item on the stack as a bool without removing it.
func (s *stack) PeekBool(idx int) (bool, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

// nipN is an internal function that removes the nth object on the stack and
// returns it.
func (s *stack) nipN(idx int) ([]byte, error) {
	sz := len(s.stk)
	if idx < 0 || idx >= sz {
		str := fmt.Sprintf("index %d is invalid for stack size %d", idx, sz)
		return nil, scriptError(ErrInvalidStackOperation, str)
	}
	so := s.stk[sz-idx-1]
	if idx == 0 {
		s.stk = s.stk[:sz-1]
	} else if idx == sz-1 {
		s1 := make([][]byte, sz-1)
		copy(s1, s.stk[1:])
		s.stk = s1
	} else {
		s1 := s.stk[:sz-idx-1]
		s2 := s.stk[sz-idx:]
		s0 := make([][]byte, sz-1)
		copy(s0, s1)
		copy(s0[len(s1):], s2)
		s.stk = s0
	}
	return so, nil
}

// NipN removes the Nth object on the stack and discards it.
func (s *stack) NipN(idx int) error {
	_, err := s.nipN(idx)
	return err
}

// Tuck copies the item at the top of the stack and inserts it before the
// 2nd to top item.
func (s *stack) Tuck() error {
	so2, err := s.PopByteArray()
	if err != nil {
		return err
	}
	so1, err := s.PopByteArray()
	if err != nil {
		return err
	}
	s.PushByteArray(so2)
	s.PushByteArray(so1)
	s.PushByteArray(so2)
	return nil
}

// DropN drops the top N items from the stack.
func (s *stack) DropN(n int32) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to drop %d items from stack", n)
		return scriptError(ErrInvalidStackOperation, str)
	}
	for ; n > 0; n-- {
		_, err := s.PopByteArray()
		if err != nil {
			return err
		}
	}
	return nil
}

// DupN duplicates the top N items on the stack.
func (s *stack) DupN(n int32) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to dup %d items from stack", n)
		return scriptError(ErrInvalidStackOperation, str)
	}
	for i := n; i > 0; i-- {
		so, err := s.PeekByteArray(int(n - 1))
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

// RotN rotates the top 3N items on the stack to the left N times.
func (s *stack) RotN(n int32) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to rotate %d items from stack", n)
		return scriptError(ErrInvalidStackOperation, str)
	}
	entry := 3*n - 1
	for i := int32(0); i < n; i++ {
		so, err := s.nipN(int(entry))
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

// SwapN swaps the top N items on the stack with those below them.
func (s *stack) SwapN(n int32) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to swap %d items from stack", n)
		return scriptError(ErrInvalidStackOperation, str)
	}
	entry := 2*n - 1
	for i := int32(0); i < n; i++ {
		so, err := s.nipN(int(entry))
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

// OverN copies N items N items back to the top of the stack.
func (s *stack) OverN(n int32) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to perform over on %d stack items", n)
		return scriptError(ErrInvalidStackOperation, str)
	}
	entry := 2*n - 1
	for ; n > 0; n-- {
		so, err := s.PeekByteArray(int(entry))
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

// PickN copies the item N items back in the stack to the top.
func (s *stack) PickN(n int32) error {
	return s.pickRoll(n, true)
}

// RollN moves the item N items back in the stack to the top.
func (s *stack) RollN(n int32) error {
	return s.pickRoll(n, false)
}

func (s *stack) pickRoll(n int32, isPick bool) error {
	if n < 0 {
		str := fmt.Sprintf("invalid index %d for stack size %d", n, len(s.stk))
		return scriptError(ErrInvalidStackOperation, str)
	}
	so, err := s.PeekByteArray(int(n))
	if err != nil {
		return err
	}
	if isPick {
		s.PushByteArray(so)
		return nil
	}
	err = s.NipN(int(n))
	if err != nil {
		return err
	}
	s.PushByteArray(so)
	return nil
}

// String returns the stack in a human readable format.
func (s *stack) String() string {
	var result string
	for _, stk := range s.stk {
		if len(stk) == 0 {
			result += "00000000  <empty>\n"
			continue
		}
		result += hex.Dump(stk)
	}
	return result
}
