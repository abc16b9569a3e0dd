// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

func TestWorkerPoolJoinAllSuccess(t *testing.T) {
	pool := newWorkerPool(context.Background(), 4)

	var ran int32
	for i := 0; i < 10; i++ {
		pool.submit(func() error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
	}

	if err := pool.joinAll(); err != nil {
		t.Fatalf("joinAll: unexpected error: %v", err)
	}
	if ran != 10 {
		t.Errorf("got %d jobs run want 10", ran)
	}
}

func TestWorkerPoolJoinAllPropagatesFirstError(t *testing.T) {
	pool := newWorkerPool(context.Background(), 4)
	wantErr := errors.New("job failed")

	pool.submit(func() error { return wantErr })
	pool.submit(func() error { return nil })

	if err := pool.joinAll(); err == nil {
		t.Fatal("joinAll: expected the failing job's error to propagate")
	}
}

func TestWorkerPoolCancelsContextOnError(t *testing.T) {
	pool := newWorkerPool(context.Background(), 1)
	wantErr := errors.New("boom")

	pool.submit(func() error { return wantErr })
	_ = pool.joinAll()

	select {
	case <-pool.ctx.Done():
	default:
		t.Error("pool context must be canceled once a submitted job fails")
	}
}
