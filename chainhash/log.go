// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import "github.com/btcsuite/btclog"

// log is the package-level logger used for the rare operations in this
// package that are worth surfacing (namely hash-parsing failures). Callers
// that don't need hash diagnostics never pay for them: until UseLogger is
// called, log discards everything.
var log = btclog.Disabled

// UseLogger sets the package-wide logger. It must be called before any
// other function in this package to guarantee consistent logging behavior.
func UseLogger(logger btclog.Logger) {
	log = logger
}
