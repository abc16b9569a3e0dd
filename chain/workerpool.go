// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// workerPool parallelizes per-input script verification across a block's
// transactions: verifyInputs submits one job per input and joins once all
// have either succeeded or the first one has failed.
type workerPool struct {
	group *errgroup.Group
	ctx   context.Context
}

// newWorkerPool returns a pool bound to ctx, capped at maxWorkers
// concurrent jobs (0 means unlimited, matching errgroup's default).
func newWorkerPool(ctx context.Context, maxWorkers int) *workerPool {
	g, gctx := errgroup.WithContext(ctx)
	if maxWorkers > 0 {
		g.SetLimit(maxWorkers)
	}
	return &workerPool{group: g, ctx: gctx}
}

// submit schedules fn to run concurrently with every other submitted job.
// Once any job returns a non-nil error, the pool's context is canceled and
// that error is what joinAll returns.
func (p *workerPool) submit(fn func() error) {
	p.group.Go(fn)
}

// joinAll waits for every submitted job to finish and returns the first
// error encountered, if any.
func (p *workerPool) joinAll() error {
	return p.group.Wait()
}
