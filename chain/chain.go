// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/cashnode/cashd/chaincfg"
	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/wire"
)

// AddFlags are the caller-visible options add() accepts, independent of
// the per-script txscript.ScriptFlags a deployment.State carries.
type AddFlags uint32

const (
	// AddFlagVerifyPow checks the block's hash against its own claimed
	// bits before anything else runs; callers that already validated
	// proof-of-work upstream (SPV headers-first sync) may omit it.
	AddFlagVerifyPow AddFlags = 1 << iota
	// AddFlagVerifyBody runs full per-tx/per-input verification. Without
	// it, add runs only verify's block-level checks (no UTXO spends, no
	// script execution) and persists an empty View — the SPV path
	// described by verifyContext.
	AddFlagVerifyBody
)

// Chain is the single mutable best-chain state machine: one tip, one
// height, one State, advanced by serialized add/reset/invalidate/replay
// calls and read freely in between by lock-free lookups against db.
type Chain struct {
	params *chaincfg.Params
	db     DB
	pool   *workerPool

	mu       sync.Mutex
	hashLock map[chainhash.Hash]*sync.Mutex
	hashMu   sync.Mutex

	index   *index
	orphans *orphanPool
	invalid *invalidSet
	events  *eventQueue
	deps    *deployments

	tip    *Entry
	state  *State
	opened bool
}

// New constructs a Chain over db for params, dispatching per-input script
// verification to a worker pool capped at maxWorkers (0 means unlimited).
func New(params *chaincfg.Params, db DB, maxWorkers int) *Chain {
	return &Chain{
		params:   params,
		db:       db,
		pool:     newWorkerPool(context.Background(), maxWorkers),
		hashLock: make(map[chainhash.Hash]*sync.Mutex),
		index:    newIndex(),
		orphans:  newOrphanPool(),
		invalid:  newInvalidSet(),
		events:   newEventQueue(),
		deps:     newDeployments(params),
	}
}

// Subscribe registers l to receive every future chain event.
func (c *Chain) Subscribe(l EventListener) {
	c.events.subscribe(l)
}

// open loads (or creates, at genesis) the chain's tip and derives the
// DeploymentState active for it.
func (c *Chain) open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.Open(); err != nil {
		return errors.Wrap(err, "opening chain database")
	}

	tip, err := c.db.Tip()
	if err != nil {
		genesisEntry := NewEntry(&c.params.GenesisBlock.Header, nil)
		if err := c.db.Save(genesisEntry, c.params.GenesisBlock, NewView()); err != nil {
			return errors.Wrap(err, "persisting genesis entry")
		}
		tip = genesisEntry
	}

	c.index.add(tip)
	c.tip = tip
	c.state = c.deps.Derive(tip.Parent(), medianTimePast(tip))
	c.opened = true
	return nil
}

// close releases the database. No further calls to Chain are valid once
// close returns.
func (c *Chain) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = false
	return c.db.Close()
}

// Tip returns the current best-chain entry.
func (c *Chain) Tip() *Entry {
	return c.tip
}

// Entry looks up an entry by hash, anywhere in the known tree.
func (c *Chain) Entry(hash chainhash.Hash) (*Entry, bool) {
	return c.index.lookup(hash)
}

// Locator returns a chain locator rooted at the current tip.
func (c *Chain) Locator() Locator {
	return GetLocator(c.tip)
}

func (c *Chain) perHashLock(hash chainhash.Hash) *sync.Mutex {
	c.hashMu.Lock()
	defer c.hashMu.Unlock()
	l, ok := c.hashLock[hash]
	if !ok {
		l = &sync.Mutex{}
		c.hashLock[hash] = l
	}
	return l
}

// add is the primary entry point: it validates and, on success, connects
// block to the tree rooted at genesis (possibly reorganizing the best
// chain), returning the Entry it formed. Concurrent add calls for the same
// hash collapse onto the first caller's work via an inner per-hash lock;
// the chain lock serializes against every other mutating operation for
// its entire duration, so addLocked and anything it calls (including
// recursive orphan handling) must never try to take it again.
func (c *Chain) add(block *wire.MsgBlock, flags AddFlags, peerID string) (*Entry, error) {
	hash := block.BlockHash()

	hl := c.perHashLock(hash)
	hl.Lock()
	defer hl.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.addLocked(block, flags, peerID)
}

// addLocked is add's body, callable by handleOrphans while the chain lock
// is already held by the outer add call.
func (c *Chain) addLocked(block *wire.MsgBlock, flags AddFlags, peerID string) (*Entry, error) {
	hash := block.BlockHash()

	if hash == *c.params.GenesisHash {
		return nil, verifyError(ErrorKindDuplicate, ErrDuplicateBlock, "genesis block is already known")
	}
	if c.orphans.has(hash) {
		return nil, verifyError(ErrorKindDuplicate, ErrDuplicateBlock, "block is already a known orphan")
	}
	if c.invalid.contains(hash) {
		return nil, verifyError(ErrorKindInvalid, ErrInvalidAncestorBlock, "block was previously marked invalid")
	}
	if c.index.haveEntry(hash) {
		return nil, verifyError(ErrorKindDuplicate, ErrDuplicateBlock, "block is already known")
	}

	if flags&AddFlagVerifyPow != 0 {
		if err := checkProofOfWork(&block.Header, c.params.PowLimit); err != nil {
			return nil, err
		}
	}

	prev, ok := c.index.lookup(block.Header.PrevBlock)
	if !ok {
		c.orphans.add(block)
		c.events.enter()
		c.events.emit(EventOrphan, block)
		c.events.leave()
		return nil, nil
	}

	entry, err := c.connect(prev, block, flags, peerID)
	if err != nil {
		return nil, err
	}

	c.handleOrphans(hash, flags, peerID)
	return entry, nil
}

// handleOrphans recursively connects every orphan chained off newParent,
// in the order their parents become known. Called only while the chain
// lock is already held.
func (c *Chain) handleOrphans(newParent chainhash.Hash, flags AddFlags, peerID string) {
	for {
		child, ok := c.orphans.childOf(newParent)
		if !ok {
			return
		}
		c.orphans.remove(child.BlockHash())
		entry, err := c.addLocked(child, flags, peerID)
		if err != nil {
			c.events.enter()
			c.events.emit(EventBadOrphan, err, peerID)
			c.events.leave()
			return
		}
		if entry == nil {
			return
		}
		newParent = entry.Hash
	}
}

// connect builds the Entry for block extending prev and either extends the
// best chain through setBestChain or saves it as a verified-but-not-input-
// verified competitor.
func (c *Chain) connect(prev *Entry, block *wire.MsgBlock, flags AddFlags, peerID string) (*Entry, error) {
	entry := NewEntry(&block.Header, prev)

	if c.tip != nil && entry.ChainWork.Cmp(c.tip.ChainWork) <= 0 {
		return c.saveAlternate(entry, block, flags)
	}
	return c.setBestChain(entry, block, flags, peerID)
}

// saveAlternate verifies block without connecting its inputs and persists
// it alongside the main chain as a competitor, should it ever accumulate
// enough work to become the new tip.
func (c *Chain) saveAlternate(entry *Entry, block *wire.MsgBlock, flags AddFlags) (*Entry, error) {
	state := c.deps.Derive(entry.Parent(), medianTimePast(entry.Parent()))
	if err := c.verifyContext(entry, block, state, flags&^AddFlagVerifyBody); err != nil {
		if !err.Malleated {
			c.invalid.mark(entry.Hash)
		}
		return nil, err
	}

	if err := c.db.Save(entry, block, NewView()); err != nil {
		return nil, errors.Wrap(err, "persisting alternate-chain block")
	}
	c.index.add(entry)

	c.events.enter()
	c.events.emit(EventCompetitor, block, entry)
	c.events.leave()
	return entry, nil
}

// setBestChain makes entry the new tip, reorganizing off the prior tip
// first if entry does not extend it directly.
func (c *Chain) setBestChain(entry *Entry, block *wire.MsgBlock, flags AddFlags, peerID string) (*Entry, error) {
	oldTip := c.tip

	if oldTip != nil && entry.PrevHash != oldTip.Hash {
		if err := c.reorganize(entry.Parent(), flags); err != nil {
			return nil, err
		}
	}

	state := c.deps.Derive(entry.Parent(), medianTimePast(entry.Parent()))
	view, err := c.verifyContextWithView(entry, block, state, flags)
	if err != nil {
		if !err.Malleated {
			c.invalid.mark(entry.Hash)
		}
		return nil, err
	}

	if err := c.db.Save(entry, block, view); err != nil {
		return nil, errors.Wrap(err, "persisting connected block")
	}
	c.index.add(entry)
	c.tip = entry
	c.state = state

	log.Debugf("new tip %s at height %d", entry.Hash, entry.Height)

	c.events.enter()
	c.events.emit(EventTip, entry)
	c.events.emit(EventBlock, block, entry)
	c.events.emit(EventConnect, entry, block, view)
	if oldTip != nil && entry.PrevHash != oldTip.Hash {
		log.Infof("chain reorganize: %s -> %s", oldTip.Hash, entry.Hash)
		c.events.emit(EventReorganize, oldTip, entry)
	}
	for _, cp := range c.params.Checkpoints {
		if cp.Height == entry.Height {
			c.events.emit(EventCheckpoint, entry.Hash, entry.Height)
		}
	}
	c.events.leave()

	return entry, nil
}

// reorganize rewinds the main chain from the current tip down to fork
// (the lowest common ancestor of tip and the competitor that will replace
// it), then reconnects every block from fork+1 up to competitor's parent.
// The competitor entry itself is connected by the enclosing setBestChain
// once reorganize returns.
func (c *Chain) reorganize(competitor *Entry, flags AddFlags) error {
	fork := lowestCommonAncestor(c.tip, competitor)

	for e := c.tip; e != nil && e.Hash != fork.Hash; e = e.Parent() {
		view, err := c.db.Disconnect(e)
		if err != nil {
			return errors.Wrapf(err, "disconnecting %s", e.Hash)
		}
		c.events.enter()
		block, _ := c.db.Block(e.Hash)
		c.events.emit(EventDisconnect, e, block, view)
		c.events.leave()
	}
	c.tip = fork
	c.state = c.deps.Derive(fork.Parent(), medianTimePast(fork))

	var toReconnect []*Entry
	for e := competitor; e != nil && e.Hash != fork.Hash; e = e.Parent() {
		toReconnect = append([]*Entry{e}, toReconnect...)
	}
	// The last element is competitor itself; setBestChain connects it.
	if len(toReconnect) > 0 {
		toReconnect = toReconnect[:len(toReconnect)-1]
	}

	for _, e := range toReconnect {
		block, ok := c.db.Block(e.Hash)
		if !ok {
			return errors.Errorf("reconnecting %s: block body not found", e.Hash)
		}
		state := c.deps.Derive(e.Parent(), medianTimePast(e.Parent()))
		view, verr := c.verifyContextWithView(e, block, state, flags)
		if verr != nil {
			return verr
		}
		if err := c.db.Reconnect(e, block, view); err != nil {
			return errors.Wrapf(err, "reconnecting %s", e.Hash)
		}
		c.tip = e
		c.state = state
		c.events.enter()
		c.events.emit(EventReconnect, e, block)
		c.events.leave()
	}

	return nil
}

// lowestCommonAncestor returns the highest entry reachable from both a and
// b by walking parent links.
func lowestCommonAncestor(a, b *Entry) *Entry {
	for a.Height > b.Height {
		a = a.Parent()
	}
	for b.Height > a.Height {
		b = b.Parent()
	}
	for a.Hash != b.Hash {
		a = a.Parent()
		b = b.Parent()
	}
	return a
}

// verifyContext runs the non-contextual-plus-contextual verify() checks
// and, only if flags requests full body verification, verifyDuplicates and
// verifyInputs; it discards the resulting view.
func (c *Chain) verifyContext(entry *Entry, block *wire.MsgBlock, state *State, flags AddFlags) *VerifyError {
	_, err := c.verifyContextWithView(entry, block, state, flags)
	return err
}

// verifyContextWithView is verifyContext's full form, returning the
// CoinView verifyInputs produced (or an empty one, in SPV mode) so the
// caller can persist it.
func (c *Chain) verifyContextWithView(entry *Entry, block *wire.MsgBlock, state *State, flags AddFlags) (*View, *VerifyError) {
	if err := verify(c.params, entry.Parent(), block, state, time.Now()); err != nil {
		if err.Kind == ErrorKindCheckpoint {
			c.orphans.purge()
		}
		return nil, err
	}

	if flags&AddFlagVerifyBody == 0 {
		return NewView(), nil
	}

	view, dbErr := c.db.BlockView(block)
	if dbErr != nil {
		return nil, &VerifyError{Kind: ErrorKindMalformed, Code: ErrMissingTxOut, Reason: dbErr.Error(), Score: 100}
	}

	if !state.BIP34 {
		if err := verifyDuplicates(c.db, block); err != nil {
			return nil, err
		}
	}

	if _, err := verifyInputs(c.params, entry.Height, block, state, view, entry.Parent(), c.pool, nil); err != nil {
		return nil, err
	}

	return view, nil
}

// checkProofOfWork verifies header's hash satisfies its own claimed bits
// and that those bits do not exceed powLimit.
func checkProofOfWork(header *wire.BlockHeader, powLimit *big.Int) *VerifyError {
	target := CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return ruleError(ErrHighHash, "block target difficulty is non-positive")
	}
	if target.Cmp(powLimit) > 0 {
		return ruleError(ErrHighHash, "block target difficulty exceeds the network's proof-of-work limit")
	}

	hash := header.BlockHash()
	if hashToBig(&hash).Cmp(target) > 0 {
		return ruleError(ErrHighHash, "block hash does not satisfy its claimed proof-of-work target")
	}
	return nil
}

// hashToBig interprets hash as a big-endian number for target comparison.
// A chainhash.Hash is stored in the little-endian, reversed-byte order
// conventional for display; reversing it back recovers the actual integer
// the proof-of-work target is compared against.
func hashToBig(hash *chainhash.Hash) *big.Int {
	var buf chainhash.Hash
	blen := len(hash)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = hash[blen-1-i], hash[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// reset rewinds the main chain to hashOrHeight, purging the orphan pool
// (whose members may no longer parent onto anything reachable) and
// recomputing DeploymentState for the new tip.
func (c *Chain) reset(hashOrHeight interface{}) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.db.Reset(hashOrHeight)
	if err != nil {
		return nil, errors.Wrap(err, "resetting chain")
	}

	c.orphans.purge()
	c.tip = entry
	c.state = c.deps.Derive(entry.Parent(), medianTimePast(entry))

	c.events.enter()
	c.events.emit(EventReset, entry)
	c.events.leave()
	return entry, nil
}

// invalidate marks hash (and, implicitly, every descendant add() will
// encounter later) as permanently rejected.
func (c *Chain) invalidate(hash chainhash.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalid.mark(hash)
}

// replay re-verifies every block from hashOrHeight to the current tip
// in order, without touching the database, returning the first VerifyError
// encountered or nil if the whole range still validates.
func (c *Chain) replay(hashOrHeight interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var start *Entry
	var ok bool
	switch v := hashOrHeight.(type) {
	case chainhash.Hash:
		start, ok = c.db.Entry(v)
	case uint64:
		start, ok = c.db.EntryAtHeight(v)
	}
	if !ok {
		return errors.Errorf("locating replay start: unknown target %v", hashOrHeight)
	}

	var chain []*Entry
	for e, ok := c.db.Next(start); ok; e, ok = c.db.Next(e) {
		chain = append(chain, e)
	}

	prev := start
	for _, e := range chain {
		block, ok := c.db.Block(e.Hash)
		if !ok {
			return errors.Errorf("replaying %s: block body not found", e.Hash)
		}
		state := c.deps.Derive(prev, medianTimePast(prev))
		if verr := c.verifyContext(e, block, state, AddFlagVerifyPow|AddFlagVerifyBody); verr != nil {
			return verr
		}
		prev = e
	}
	return nil
}
