// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cashnode/cashd/chainhash"
)

// sigCacheEntry represents an entry in the SigCache. Entries are keyed by
// the signature hash and track the pubkey/signature pair that produced a
// successful verification, so a forged cache hit cannot be produced simply
// by guessing the sighash.
type sigCacheEntry struct {
	sig    []byte
	pubKey []byte
}

// SigCache implements an ECDSA/Schnorr signature verification cache with
// least-recently-used eviction provided by an underlying LRU; lookups
// through Exists do not refresh an entry. Only valid signatures are added
// to the cache. It exists to avoid
// re-verifying the same signature repeatedly across mempool acceptance and
// block validation.
type SigCache struct {
	mtx   sync.RWMutex
	valid *lru.Cache[chainhash.Hash, sigCacheEntry]
}

// NewSigCache creates and initializes a new instance of SigCache. The
// maxEntries parameter bounds the number of entries held by the cache at
// any given time.
func NewSigCache(maxEntries int) *SigCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	c, err := lru.New[chainhash.Hash, sigCacheEntry](maxEntries)
	if err != nil {
		// Only returned for a non-positive size, guarded against above.
		panic(err)
	}
	return &SigCache{valid: c}
}

// Exists returns true if the (sigHash, signature, pubkey) triple is already
// found within the SigCache.
func (s *SigCache) Exists(sigHash chainhash.Hash, sig []byte, pubKey []byte) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	entry, ok := s.valid.Peek(sigHash)
	if !ok {
		return false
	}
	return bytesEqual(entry.sig, sig) && bytesEqual(entry.pubKey, pubKey)
}

// Add adds the (sigHash, signature, pubkey) triple to the SigCache.
func (s *SigCache) Add(sigHash chainhash.Hash, sig []byte, pubKey []byte) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.valid.Add(sigHash, sigCacheEntry{sig: sig, pubKey: pubKey})
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
