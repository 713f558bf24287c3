// Copyright 2025 go-bitheap Authors. SPDX-License-Identifier: Apache-2.0

package batch

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ajroetker/go-bitheap/bitheap"
	"github.com/ajroetker/go-bitheap/compress"
)

// Outcome is the result of one operator instance.
type Outcome struct {
	Heap   *bitheap.Heap
	Result *compress.Result
	Err    error
}

// Runner compresses heaps on a pool with a shared engine.
type Runner struct {
	engine *compress.Engine
	pool   *Pool
}

// NewRunner creates a runner. The pool is not owned by the runner.
func NewRunner(e *compress.Engine, p *Pool) *Runner {
	return &Runner{engine: e, pool: p}
}

// Run compresses every heap and returns the outcomes in input order. A failed
// or panicking instance reports its error without stopping the others.
func (r *Runner) Run(heaps []*bitheap.Heap) []Outcome {
	out := make([]Outcome, len(heaps))
	r.pool.ForEach(len(heaps), func(i int) {
		out[i] = r.runOne(heaps[i])
	})
	return out
}

func (r *Runner) runOne(h *bitheap.Heap) (o Outcome) {
	o.Heap = h
	defer func() {
		if p := recover(); p != nil {
			o.Err = fmt.Errorf("compress %s: panic: %v", h.Name, p)
		}
	}()
	o.Result, o.Err = r.engine.Run(h)
	return o
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	return lo.Filter(outcomes, func(o Outcome, _ int) bool { return o.Err != nil })
}
