// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/cashnode/cashd/chaincfg"
	"github.com/cashnode/cashd/wire"
)

func buildChainWithVersion(n int, version int32) []*Entry {
	entries := make([]*Entry, n)
	var prev *Entry
	for i := 0; i < n; i++ {
		h := &wire.BlockHeader{
			Version: version,
			Bits:    0x1d00ffff,
		}
		if prev != nil {
			h.PrevBlock = prev.Hash
		}
		e := NewEntry(h, prev)
		entries[i] = e
		prev = e
	}
	return entries
}

func TestCountVotesAllSignaling(t *testing.T) {
	// Top bits 001 plus bit 0 set.
	entries := buildChainWithVersion(10, int32(versionBitTopBits|0x1))
	tip := entries[len(entries)-1]

	got := countVotes(tip, 0, 10)
	if got != 10 {
		t.Errorf("countVotes all-signaling: got %d want 10", got)
	}
}

func TestCountVotesNoneSignaling(t *testing.T) {
	entries := buildChainWithVersion(10, int32(versionBitTopBits))
	tip := entries[len(entries)-1]

	got := countVotes(tip, 0, 10)
	if got != 0 {
		t.Errorf("countVotes none-signaling: got %d want 0", got)
	}
}

func TestCountVotesWrongTopBits(t *testing.T) {
	// Top bits not 001 must not be counted even with bit 0 set.
	entries := buildChainWithVersion(5, 0x1)
	tip := entries[len(entries)-1]

	got := countVotes(tip, 0, 5)
	if got != 0 {
		t.Errorf("countVotes wrong top bits: got %d want 0", got)
	}
}

func TestThresholdStateDefinedBeforeStart(t *testing.T) {
	params := chaincfg.MainNetParams
	window := params.MinerConfirmationWindow
	entries := buildChain(int(window)+1, params.PowLimitBits)
	prev := entries[len(entries)-1]

	// buildChain's timestamps sit around 1600000000; a StartTime far past
	// that point must leave the deployment in its initial state.
	dep := chaincfg.ConsensusDeployment{BitNumber: 1, StartTime: 4000000000, ExpireTime: 4100000000}
	cache := newThresholdCache(64)

	state := thresholdState(cache, dep.BitNumber, &dep, window,
		params.RuleChangeActivationThreshold, prev)
	if state != ThresholdDefined {
		t.Errorf("deployment with a far-future StartTime: got %v want defined", state)
	}
}

func TestThresholdStateNilPrevIsDefined(t *testing.T) {
	cache := newThresholdCache(64)
	dep := chaincfg.ConsensusDeployment{BitNumber: 0, StartTime: 0, ExpireTime: 1}
	state := thresholdState(cache, 0, &dep, 100, 75, nil)
	if state != ThresholdDefined {
		t.Errorf("nil prev: got %v want defined", state)
	}
}
