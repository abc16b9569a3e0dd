// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"
)

func TestScriptNumBytes(t *testing.T) {
	tests := []struct {
		num      ScriptNum
		serial   []byte
	}{
		{0, nil},
		{1, []byte{0x01}},
		{-1, []byte{0x81}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x00}},
		{129, []byte{0x81, 0x00}},
		{256, []byte{0x00, 0x01}},
		{-256, []byte{0x00, 0x81}},
		{32767, []byte{0xff, 0x7f}},
		{-32768, []byte{0x00, 0x80, 0x80}},
		{2147483647, []byte{0xff, 0xff, 0xff, 0x7f}},
		{-2147483647, []byte{0xff, 0xff, 0xff, 0xff}},
	}

	for _, test := range tests {
		got := test.num.Bytes()
		if !bytes.Equal(got, test.serial) {
			t.Errorf("Bytes: %d: got %x want %x", test.num, got, test.serial)
		}
	}
}

func TestMakeScriptNum(t *testing.T) {
	tests := []struct {
		serial         []byte
		num            ScriptNum
		requireMinimal bool
		scriptNumLen   int
		err            bool
	}{
		{nil, 0, false, defaultScriptNumLen, false},
		{[]byte{0x00}, 0, true, defaultScriptNumLen, true},
		{[]byte{0x01}, 1, false, defaultScriptNumLen, false},
		{[]byte{0x81}, -1, false, defaultScriptNumLen, false},
		{[]byte{0x80, 0x00}, 128, false, defaultScriptNumLen, false},
		{[]byte{0x00, 0x80, 0x80}, -32768, false, defaultScriptNumLen, false},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff}, 0, false, defaultScriptNumLen, true},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff}, -549755813887, false, maxScriptNumLen, false},
		{[]byte{0x00, 0x00}, 0, true, defaultScriptNumLen, true},
	}

	for i, test := range tests {
		got, err := makeScriptNum(test.serial, test.requireMinimal, test.scriptNumLen)
		if test.err {
			if err == nil {
				t.Errorf("test %d: expected error, got none", i)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: unexpected error: %v", i, err)
			continue
		}
		if got != test.num {
			t.Errorf("test %d: got %d want %d", i, got, test.num)
		}
	}
}

func TestScriptNumRoundTrip(t *testing.T) {
	values := []ScriptNum{0, 1, -1, 127, 128, -128, 32767, -32767, 2147483647, -2147483647}
	for _, v := range values {
		serial := v.Bytes()
		got, err := makeScriptNum(serial, true, maxScriptNumLen)
		if err != nil {
			t.Errorf("round trip %d: unexpected error: %v", v, err)
			continue
		}
		if got != v {
			t.Errorf("round trip: got %d want %d", got, v)
		}
	}
}

func TestScriptNumInt32(t *testing.T) {
	tests := []struct {
		in   ScriptNum
		want int32
	}{
		{0, 0},
		{1 << 31, 1<<31 - 1},
		{-(1 << 31), -(1<<31 - 1)},
		{1000, 1000},
		{-1000, -1000},
	}

	for _, test := range tests {
		got := test.in.Int32()
		if got != test.want {
			t.Errorf("Int32(%d): got %d want %d", test.in, got, test.want)
		}
	}
}

func TestCheckMinimalDataEncoding(t *testing.T) {
	tests := []struct {
		serial []byte
		valid  bool
	}{
		{nil, true},
		{[]byte{0x01}, true},
		{[]byte{0x80}, false},
		{[]byte{0x00, 0x81}, true},
		{[]byte{0x00, 0x80}, false},
		{[]byte{0x00}, false},
	}

	for i, test := range tests {
		err := checkMinimalDataEncoding(test.serial)
		if test.valid && err != nil {
			t.Errorf("test %d: unexpected error: %v", i, err)
		}
		if !test.valid && err == nil {
			t.Errorf("test %d: expected error, got none", i)
		}
	}
}
