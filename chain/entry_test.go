// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"
	"time"

	"github.com/cashnode/cashd/wire"
)

func buildChain(n int, bits uint32) []*Entry {
	entries := make([]*Entry, n)
	var prev *Entry
	for i := 0; i < n; i++ {
		h := &wire.BlockHeader{
			Version:   1,
			Timestamp: time.Unix(int64(1600000000+i*600), 0),
			Bits:      bits,
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

func TestNewEntryGenesis(t *testing.T) {
	h := &wire.BlockHeader{Version: 1, Bits: 0x1d00ffff}
	e := NewEntry(h, nil)
	if e.Height != 0 {
		t.Errorf("genesis height: got %d want 0", e.Height)
	}
	if e.Parent() != nil {
		t.Error("genesis must have a nil parent")
	}
	if e.ChainWork.Sign() <= 0 {
		t.Error("genesis chain work must be positive")
	}
}

func TestNewEntryChainsWork(t *testing.T) {
	entries := buildChain(3, 0x1d00ffff)
	for i, e := range entries {
		if e.Height != uint64(i) {
			t.Errorf("entry %d: height got %d want %d", i, e.Height, i)
		}
		if i > 0 {
			if e.Parent() != entries[i-1] {
				t.Errorf("entry %d: parent pointer mismatch", i)
			}
			if e.ChainWork.Cmp(entries[i-1].ChainWork) <= 0 {
				t.Errorf("entry %d: chain work must strictly increase", i)
			}
		}
	}
}

func TestEntryAncestor(t *testing.T) {
	entries := buildChain(5, 0x1d00ffff)
	tip := entries[4]

	for h := uint64(0); h < 5; h++ {
		got := tip.Ancestor(h)
		if got != entries[h] {
			t.Errorf("Ancestor(%d): got %v want %v", h, got, entries[h])
		}
	}

	if tip.Ancestor(5) != nil {
		t.Error("Ancestor beyond tip height must return nil")
	}
}

func TestEntryRelativeAncestor(t *testing.T) {
	entries := buildChain(5, 0x1d00ffff)
	tip := entries[4]

	got := tip.RelativeAncestor(2)
	if got != entries[2] {
		t.Errorf("RelativeAncestor(2): got %v want %v", got, entries[2])
	}

	if tip.RelativeAncestor(10) != nil {
		t.Error("RelativeAncestor exceeding height must return nil")
	}
}

func TestCalcWorkMonotonic(t *testing.T) {
	easier := CalcWork(0x1d00ffff)
	harder := CalcWork(0x1c00ffff)
	if harder.Cmp(easier) <= 0 {
		t.Error("a lower (harder) target must represent more work")
	}
}

func TestCalcWorkNonPositiveTarget(t *testing.T) {
	work := CalcWork(0)
	if work.Sign() != 0 {
		t.Errorf("CalcWork with a degenerate target: got %v want 0", work)
	}
}

func TestIndexAddLookup(t *testing.T) {
	idx := newIndex()
	e := buildChain(1, 0x1d00ffff)[0]

	if idx.haveEntry(e.Hash) {
		t.Fatal("index should not report an unseen hash as known")
	}

	idx.add(e)
	if !idx.haveEntry(e.Hash) {
		t.Fatal("index should report an added entry as known")
	}

	got, ok := idx.lookup(e.Hash)
	if !ok || got != e {
		t.Errorf("lookup: got %v, %v want %v, true", got, ok, e)
	}
}
