// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cashnode/cashd/chainhash"
)

// invalidSetSize bounds how many previously-rejected hashes are remembered.
// Unbounded growth isn't needed: the only purpose is to short-circuit
// revalidation of a hash a peer keeps re-relaying.
const invalidSetSize = 4096

// invalidSet is an LRU-bounded set of hashes that have already failed a
// non-malleated VerifyError. mark is idempotent; once marked, a hash short
// circuits every future add/connect attempt until it ages out of the LRU.
type invalidSet struct {
	cache *lru.Cache[chainhash.Hash, struct{}]
}

func newInvalidSet() *invalidSet {
	c, _ := lru.New[chainhash.Hash, struct{}](invalidSetSize)
	return &invalidSet{cache: c}
}

func (s *invalidSet) mark(hash chainhash.Hash) {
	s.cache.Add(hash, struct{}{})
}

func (s *invalidSet) contains(hash chainhash.Hash) bool {
	return s.cache.Contains(hash)
}

func (s *invalidSet) purge() {
	s.cache.Purge()
}
