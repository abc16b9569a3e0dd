// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

func TestGenesisBlocksSelfConsistent(t *testing.T) {
	if mainNetGenesisBlock.Header.MerkleRoot != genesisCoinbaseTx.TxHash() {
		t.Error("mainnet genesis merkle root doesn't match its coinbase tx hash")
	}
	if regTestGenesisBlock.Header.MerkleRoot != genesisCoinbaseTx.TxHash() {
		t.Error("regtest genesis merkle root doesn't match its coinbase tx hash")
	}
	if testNet3GenesisBlock.Header.MerkleRoot != genesisCoinbaseTx.TxHash() {
		t.Error("testnet3 genesis merkle root doesn't match its coinbase tx hash")
	}
}

func TestGenesisHashesDeriveFromHeader(t *testing.T) {
	if mainNetGenesisHash != mainNetGenesisBlock.Header.BlockHash() {
		t.Error("mainNetGenesisHash doesn't match its header's computed hash")
	}
	if regTestGenesisHash != regTestGenesisBlock.Header.BlockHash() {
		t.Error("regTestGenesisHash doesn't match its header's computed hash")
	}
	if testNet3GenesisHash != testNet3GenesisBlock.Header.BlockHash() {
		t.Error("testNet3GenesisHash doesn't match its header's computed hash")
	}
}

func TestGenesisNetworksDistinct(t *testing.T) {
	if mainNetGenesisHash == testNet3GenesisHash {
		t.Error("mainnet and testnet3 genesis hashes must differ")
	}
	if mainNetGenesisHash == regTestGenesisHash {
		t.Error("mainnet and regtest genesis hashes must differ")
	}
}
