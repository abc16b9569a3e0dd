// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/cashnode/cashd/chainhash"
)

func TestSigCacheAddExists(t *testing.T) {
	cache := NewSigCache(10)
	hash := chainhash.Hash{0x01}
	sig := []byte{0x02, 0x03}
	pubKey := []byte{0x04, 0x05}

	if cache.Exists(hash, sig, pubKey) {
		t.Error("Exists on an empty cache must return false")
	}

	cache.Add(hash, sig, pubKey)
	if !cache.Exists(hash, sig, pubKey) {
		t.Error("Exists must report a hit for an added triple")
	}
}

func TestSigCacheExistsRequiresExactMatch(t *testing.T) {
	cache := NewSigCache(10)
	hash := chainhash.Hash{0x01}
	sig := []byte{0x02, 0x03}
	pubKey := []byte{0x04, 0x05}
	cache.Add(hash, sig, pubKey)

	if cache.Exists(hash, []byte{0xff}, pubKey) {
		t.Error("a mismatched signature must not hit")
	}
	if cache.Exists(hash, sig, []byte{0xff}) {
		t.Error("a mismatched pubkey must not hit")
	}
}

func TestSigCacheEviction(t *testing.T) {
	cache := NewSigCache(2)
	sig, pubKey := []byte{0x01}, []byte{0x02}

	h1 := chainhash.Hash{0x01}
	h2 := chainhash.Hash{0x02}
	h3 := chainhash.Hash{0x03}

	cache.Add(h1, sig, pubKey)
	cache.Add(h2, sig, pubKey)
	cache.Add(h3, sig, pubKey)

	if cache.Exists(h1, sig, pubKey) {
		t.Error("oldest entry should have been evicted once capacity was exceeded")
	}
	if !cache.Exists(h2, sig, pubKey) || !cache.Exists(h3, sig, pubKey) {
		t.Error("the two most recently added entries should still be present")
	}
}

func TestSigCacheMinimumSize(t *testing.T) {
	cache := NewSigCache(0)
	h := chainhash.Hash{0x01}
	cache.Add(h, []byte{0x01}, []byte{0x02})
	if !cache.Exists(h, []byte{0x01}, []byte{0x02}) {
		t.Error("a non-positive maxEntries must still allow at least one entry")
	}
}
