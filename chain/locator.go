// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "github.com/cashnode/cashd/chainhash"

// Locator is a compact summary of a chain used to find a common ancestor
// with a peer's chain: hashes of recent blocks at exponentially increasing
// distance from the tip, thinning out to one entry per doubling as the
// distance from the tip grows.
//
// For a chain genesis -> 1 -> ... -> 15 -> 16 -> 17 -> 18, GetLocator(18)
// returns: [18 17 16 15 14 13 12 11 10 9 8 7 6 5 3 genesis].
type Locator []chainhash.Hash

// locatorRecentCount is how many immediately-preceding hashes are included
// at full density before the step starts doubling.
const locatorRecentCount = 12

// GetLocator builds a Locator walking back from e to genesis.
func GetLocator(e *Entry) Locator {
	if e == nil {
		return nil
	}

	maxEntries := locatorRecentCount + 1
	for height := e.Height; height > 0; height >>= 1 {
		maxEntries++
	}
	locator := make(Locator, 0, maxEntries)

	step := uint64(1)
	n := e
	for n != nil {
		locator = append(locator, n.Hash)
		if n.Height == 0 {
			break
		}

		height := int64(n.Height) - int64(step)
		if height < 0 {
			height = 0
		}
		n = e.Ancestor(uint64(height))

		if len(locator) > locatorRecentCount {
			step *= 2
		}
	}
	return locator
}
