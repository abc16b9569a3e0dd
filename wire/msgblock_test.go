// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
)

func sampleBlockMsg() *MsgBlock {
	return &MsgBlock{
		Header: BlockHeader{
			Version: 1,
			Bits:    0x1d00ffff,
		},
		Transactions: []*MsgTx{sampleTx()},
	}
}

func TestMsgBlockSerializeDeserializeRoundTrip(t *testing.T) {
	block := sampleBlockMsg()

	var buf bytes.Buffer
	if err := block.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if buf.Len() != block.SerializeSize() {
		t.Errorf("SerializeSize: got %d want %d", block.SerializeSize(), buf.Len())
	}

	var got MsgBlock
	if err := got.Deserialize(&buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if got.Header.Bits != block.Header.Bits {
		t.Error("header mismatch after round trip")
	}
	if len(got.Transactions) != 1 {
		t.Fatalf("got %d transactions want 1", len(got.Transactions))
	}
	if got.Transactions[0].TxHash() != block.Transactions[0].TxHash() {
		t.Error("transaction mismatch after round trip")
	}
}

func TestMsgBlockDeserializeEmptyBlock(t *testing.T) {
	block := &MsgBlock{Header: BlockHeader{Version: 1}}

	var buf bytes.Buffer
	if err := block.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var got MsgBlock
	if err := got.Deserialize(&buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(got.Transactions) != 0 {
		t.Errorf("got %d transactions want 0", len(got.Transactions))
	}
}
