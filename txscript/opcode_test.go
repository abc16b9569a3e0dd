// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"
)

func TestParseScriptSimplePush(t *testing.T) {
	script := []byte{OpData3, 0x01, 0x02, 0x03, OpDup}
	pops, err := parseScript(script)
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if len(pops) != 2 {
		t.Fatalf("got %d opcodes want 2", len(pops))
	}
	if !bytes.Equal(pops[0].data, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("push data: got %x want 010203", pops[0].data)
	}
	if pops[1].opcode.value != OpDup {
		t.Errorf("second opcode: got 0x%x want OpDup", pops[1].opcode.value)
	}
}

func TestParseScriptTruncatedPushIsMalformed(t *testing.T) {
	script := []byte{OpData3, 0x01}
	pops, err := parseScript(script)
	if err != nil {
		t.Fatalf("parseScript: unexpected error: %v", err)
	}
	if len(pops) != 1 || pops[0].opcode != &malformedOpcode {
		t.Error("a truncated push must parse to a single malformedOpcode entry")
	}
}

func TestUnparseScriptRoundTrip(t *testing.T) {
	script := []byte{OpData3, 0x01, 0x02, 0x03, OpDup, OpHash160}
	pops, err := parseScript(script)
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	out, err := unparseScript(pops)
	if err != nil {
		t.Fatalf("unparseScript: %v", err)
	}
	if !bytes.Equal(out, script) {
		t.Errorf("round trip: got %x want %x", out, script)
	}
}

func TestIsPushOnly(t *testing.T) {
	pushOnly, err := parseScript([]byte{OpData1, 0x01, Op16})
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if !isPushOnly(pushOnly) {
		t.Error("expected an all-push script to report isPushOnly")
	}

	notPushOnly, err := parseScript([]byte{OpData1, 0x01, OpDup})
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if isPushOnly(notPushOnly) {
		t.Error("a script with OP_DUP must not report isPushOnly")
	}
}

func TestIsScriptHash(t *testing.T) {
	script := append([]byte{OpHash160, OpData20}, make([]byte, 20)...)
	script = append(script, OpEqual)
	pops, err := parseScript(script)
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if !isScriptHash(pops) {
		t.Error("expected a canonical P2SH template to be recognized")
	}
}

func TestCheckMinimalDataPush(t *testing.T) {
	tests := []struct {
		name    string
		script  []byte
		wantErr bool
	}{
		{"minimal OP_1", []byte{Op1}, false},
		{"OP_1NEGATE", []byte{Op1Negate}, false},
		{"non-minimal single byte via OP_DATA_1", []byte{OpData1, 0x01}, true},
		{"minimal three-byte push", []byte{OpData3, 0x01, 0x02, 0x03}, false},
	}
	for _, test := range tests {
		pops, err := parseScript(test.script)
		if err != nil {
			t.Fatalf("%s: parseScript: %v", test.name, err)
		}
		err = pops[0].checkMinimalDataPush()
		if (err != nil) != test.wantErr {
			t.Errorf("%s: checkMinimalDataPush() error = %v, wantErr %v", test.name, err, test.wantErr)
		}
	}
}

func TestPushedData(t *testing.T) {
	script, err := NewScriptBuilder().
		AddInt64(-1).
		AddInt64(5).
		AddData([]byte{0xde, 0xad, 0xbe, 0xef}).
		Script()
	if err != nil {
		t.Fatalf("building script: %v", err)
	}

	data, err := PushedData(script)
	if err != nil {
		t.Fatalf("PushedData: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("got %d pushes want 3", len(data))
	}
	if !bytes.Equal(data[2], []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("third push: got %x want deadbeef", data[2])
	}
}
