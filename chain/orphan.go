// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"time"

	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/wire"
)

// maxOrphans bounds the orphan pool. A linear best-chain only ever needs
// to hold blocks immediately ahead of the tip it hasn't seen the parent
// of yet, so this stays small relative to a DAG-shaped pool.
const maxOrphans = 20

// orphanExpiration is how long an orphan is kept before it's evicted even
// if the pool isn't full.
const orphanExpiration = time.Hour

type orphanBlock struct {
	block      *wire.MsgBlock
	receivedAt time.Time
}

// orphanPool holds blocks whose parent hasn't been seen yet, indexed both
// by their own hash and by the parent hash they're waiting on. Exactly one
// orphan is kept per parent hash: a competing orphan on the same parent
// replaces the earlier one rather than queuing alongside it.
type orphanPool struct {
	byHash   map[chainhash.Hash]*orphanBlock
	byParent map[chainhash.Hash]*orphanBlock
}

func newOrphanPool() *orphanPool {
	return &orphanPool{
		byHash:   make(map[chainhash.Hash]*orphanBlock),
		byParent: make(map[chainhash.Hash]*orphanBlock),
	}
}

// add inserts block into the pool, evicting whatever else was already
// waiting on the same parent. It first lazily expires anything older than
// orphanExpiration, then — if still full — evicts the single oldest entry.
func (p *orphanPool) add(block *wire.MsgBlock) {
	now := time.Now()
	for hash, o := range p.byHash {
		if now.Sub(o.receivedAt) > orphanExpiration {
			p.remove(hash)
		}
	}

	if len(p.byHash) >= maxOrphans {
		p.evictOldest()
	}

	hash := block.BlockHash()
	if existing, ok := p.byParent[block.Header.PrevBlock]; ok {
		p.remove(existing.block.BlockHash())
	}

	o := &orphanBlock{block: block, receivedAt: now}
	p.byHash[hash] = o
	p.byParent[block.Header.PrevBlock] = o
}

func (p *orphanPool) evictOldest() {
	var oldestHash chainhash.Hash
	var oldest *orphanBlock
	for hash, o := range p.byHash {
		if oldest == nil || o.receivedAt.Before(oldest.receivedAt) {
			oldest = o
			oldestHash = hash
		}
	}
	if oldest != nil {
		p.remove(oldestHash)
	}
}

func (p *orphanPool) remove(hash chainhash.Hash) {
	o, ok := p.byHash[hash]
	if !ok {
		return
	}
	delete(p.byHash, hash)
	if p.byParent[o.block.Header.PrevBlock] == o {
		delete(p.byParent, o.block.Header.PrevBlock)
	}
}

// childOf returns the orphan waiting on parentHash, if any.
func (p *orphanPool) childOf(parentHash chainhash.Hash) (*wire.MsgBlock, bool) {
	o, ok := p.byParent[parentHash]
	if !ok {
		return nil, false
	}
	return o.block, true
}

func (p *orphanPool) has(hash chainhash.Hash) bool {
	_, ok := p.byHash[hash]
	return ok
}

// purge empties the pool, used on checkpoint mismatch and on reset.
func (p *orphanPool) purge() {
	p.byHash = make(map[chainhash.Hash]*orphanBlock)
	p.byParent = make(map[chainhash.Hash]*orphanBlock)
}
