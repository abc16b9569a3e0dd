// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cashnode/cashd/chaincfg"
)

// ThresholdState is a BIP9 soft-fork's state within its voting window.
type ThresholdState byte

const (
	ThresholdDefined ThresholdState = iota
	ThresholdStarted
	ThresholdLockedIn
	ThresholdActive
	ThresholdFailed
)

func (t ThresholdState) String() string {
	switch t {
	case ThresholdDefined:
		return "defined"
	case ThresholdStarted:
		return "started"
	case ThresholdLockedIn:
		return "locked-in"
	case ThresholdActive:
		return "active"
	case ThresholdFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// versionBitTopMask/versionBitTopBits select the bit from a header's version
// field the way BIP9 specifies: the top 3 bits must read 001, and the
// deployment's bit number indexes the remaining 29.
const (
	versionBitTopMask = 0xe0000000
	versionBitTopBits = 0x20000000
)

// thresholdCacheKey is the LRU key: a deployment's voting outcome only
// depends on which window-boundary entry is being evaluated and which bit
// it's evaluating, so (bit, entry hash) is a valid joint cache key.
type thresholdCacheKey struct {
	bit  uint8
	hash [32]byte
}

// thresholdCache memoizes ThresholdState per (bit, window-boundary entry)
// so that ThresholdStateAt doesn't replay the entire deployment history on
// every call; BIP9's own definition makes state monotonic along a chain, so
// caching the immediately-prior window's outcome is sufficient to compute
// the next one in O(1) amortized.
type thresholdCache struct {
	cache *lru.Cache[thresholdCacheKey, ThresholdState]
}

func newThresholdCache(size int) *thresholdCache {
	c, _ := lru.New[thresholdCacheKey, ThresholdState](size)
	return &thresholdCache{cache: c}
}

func (c *thresholdCache) get(bit uint8, e *Entry) (ThresholdState, bool) {
	return c.cache.Get(thresholdCacheKey{bit: bit, hash: e.Hash})
}

func (c *thresholdCache) set(bit uint8, e *Entry, state ThresholdState) {
	c.cache.Add(thresholdCacheKey{bit: bit, hash: e.Hash}, state)
}

// windowStartAncestor returns the last entry of the most recent complete
// confirmation window at or below e (e itself when e ends a window), i.e.
// the entry whose ThresholdState governs the block after e. Returns nil
// while e is below the end of the first window.
func windowStartAncestor(e *Entry, confirmationWindow uint64) *Entry {
	numToGo := (e.Height + 1) % confirmationWindow
	return e.Ancestor(e.Height - numToGo)
}

// thresholdState computes the BIP9 state for deployment dep as of the
// window containing prev.Height+1. It walks backward window-by-window,
// consulting the cache, until it finds a cached or DEFINED starting point,
// then replays forward.
func thresholdState(cache *thresholdCache, bit uint8, dep *chaincfg.ConsensusDeployment, confirmationWindow, activationThreshold uint64, prev *Entry) ThresholdState {
	if prev == nil {
		return ThresholdDefined
	}

	// Walk back to the first window boundary at or before prev, building
	// up the chain of windows that need (re)computing.
	var windows []*Entry
	node := prev.Ancestor(prev.Height - ((prev.Height + 1) % confirmationWindow))
	state := ThresholdDefined
	for node != nil {
		if cached, ok := cache.get(bit, node); ok {
			state = cached
			break
		}
		windows = append(windows, node)
		if node.Height < confirmationWindow {
			break
		}
		node = node.Ancestor(node.Height - confirmationWindow)
	}

	// Replay forward from the oldest uncached window to prev's window.
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		switch state {
		case ThresholdDefined:
			if medianTimePast(w) >= int64(dep.StartTime) {
				state = ThresholdStarted
			}
		case ThresholdStarted:
			if medianTimePast(w) >= int64(dep.ExpireTime) {
				state = ThresholdFailed
				break
			}
			if countVotes(w, bit, confirmationWindow) >= activationThreshold {
				state = ThresholdLockedIn
			}
		case ThresholdLockedIn:
			state = ThresholdActive
		}
		cache.set(bit, w, state)
	}

	return state
}

// countVotes counts headers in the confirmationWindow-sized window ending
// at w that signal bit via the BIP9 version-bits scheme.
func countVotes(w *Entry, bit uint8, confirmationWindow uint64) uint64 {
	var count uint64
	n := w
	for i := uint64(0); i < confirmationWindow && n != nil; i++ {
		if uint32(n.Version)&versionBitTopMask == versionBitTopBits &&
			uint32(n.Version)&(1<<bit) != 0 {
			count++
		}
		n = n.parent
	}
	return count
}
