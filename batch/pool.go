// Copyright 2025 go-bitheap Authors. SPDX-License-Identifier: Apache-2.0

// Package batch compresses many independent bit heaps in parallel.
//
// Operator instances share nothing but the read-only profile and catalog, so
// each heap is compressed by one worker of a persistent Pool, and a failure
// only affects its own instance.
//
// Usage:
//
//	pool := batch.NewPool(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	runner := batch.NewRunner(engine, pool)
//	for _, out := range runner.Run(heaps) {
//	    if out.Err != nil { ... }
//	}
package batch

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool reused across batches. Workers are spawned
// once at creation.
type Pool struct {
	numWorkers int
	workC      chan workItem

	// mu orders sends on workC before Close closes it.
	mu     sync.RWMutex
	closed bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// NewPool creates a pool with numWorkers workers, GOMAXPROCS if numWorkers
// <= 0.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts the pool down once pending work completes. It is safe to call
// Close more than once, and concurrently with ForEach: a ForEach that already
// queued its work finishes it, later ones run sequentially.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.workC)
}

// ForEach calls fn for every index in [0, n) and blocks until all calls
// return. Workers grab the next index atomically, which balances heaps of
// very different sizes. A closed pool runs fn sequentially.
func (p *Pool) ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(p.numWorkers, n)
	p.mu.RLock()
	if p.closed || workers == 1 {
		p.mu.RUnlock()
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		p.workC <- workItem{
			fn: func() {
				for {
					i := int(next.Add(1)) - 1
					if i >= n {
						return
					}
					fn(i)
				}
			},
			barrier: &wg,
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}
