// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "github.com/btcsuite/btclog"

// log is the package-level logger. It is disabled by default so importing
// this package has no logging side effects until a caller opts in.
var log = btclog.Disabled

// UseLogger sets the package-wide logger. It must be called before any
// other function in this package to guarantee consistent logging behavior.
func UseLogger(logger btclog.Logger) {
	log = logger
}
