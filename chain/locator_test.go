// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "testing"

func TestGetLocatorNil(t *testing.T) {
	if got := GetLocator(nil); got != nil {
		t.Errorf("GetLocator(nil): got %v want nil", got)
	}
}

func TestGetLocatorGenesisOnly(t *testing.T) {
	entries := buildChain(1, 0x1d00ffff)
	loc := GetLocator(entries[0])
	if len(loc) != 1 || loc[0] != entries[0].Hash {
		t.Errorf("single-entry locator: got %v", loc)
	}
}

func TestGetLocatorStartsAtTip(t *testing.T) {
	entries := buildChain(20, 0x1d00ffff)
	tip := entries[len(entries)-1]
	loc := GetLocator(tip)

	if loc[0] != tip.Hash {
		t.Fatalf("locator must start at the tip: got %v want %v", loc[0], tip.Hash)
	}

	last := loc[len(loc)-1]
	if last != entries[0].Hash {
		t.Errorf("locator must end at genesis: got %v want %v", last, entries[0].Hash)
	}
}

func TestGetLocatorRecentDensity(t *testing.T) {
	entries := buildChain(30, 0x1d00ffff)
	tip := entries[len(entries)-1]
	loc := GetLocator(tip)

	// The first locatorRecentCount+1 entries are consecutive ancestors
	// (one per height) before the step starts doubling.
	for i := 0; i <= locatorRecentCount; i++ {
		want := entries[int(tip.Height)-i].Hash
		if loc[i] != want {
			t.Errorf("locator entry %d: got %v want %v", i, loc[i], want)
		}
	}
}
