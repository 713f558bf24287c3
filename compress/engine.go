// Copyright 2025 go-bitheap Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package compress reduces a bit heap with a greedy, efficiency-first
// placement of compressors and closes it with a carry-propagate final adder.
//
// The Engine walks the stages of a heap in increasing order. In each stage it
// sweeps the columns from the LSB up and, at every column that would still be
// too high, places the first compressor of the catalog whose inputs are all
// available within the timing window of the stage. Outputs go to the next
// stage, bits left over are promoted to it. Columns that drop to a single bit
// are emitted directly as part of the result, the rest is summed by the final
// adder once every column fits its height.
//
// The same heap, profile and catalog always produce the same Solution.
package compress

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ajroetker/go-bitheap/bitheap"
	"github.com/ajroetker/go-bitheap/compressor"
	"github.com/ajroetker/go-bitheap/netlist"
	"github.com/ajroetker/go-bitheap/schedule"
	"github.com/ajroetker/go-bitheap/target"
)

// Instantiator is the structural instantiation service the engine emits into.
// *netlist.Netlist implements it.
type Instantiator interface {
	Input(name string) netlist.Wire
	Constant(v bool) netlist.Wire
	WireName(w netlist.Wire) string
	Compressor(shape netlist.Shape, inputs [][]netlist.Wire) ([][]netlist.Wire, error)
	Adder(kind netlist.Kind, operands [][]netlist.Wire, cin netlist.Wire) ([]netlist.Wire, error)
}

// Engine compresses heaps for one profile and catalog. It holds no per-heap
// state: Run can be called concurrently on different heaps.
type Engine struct {
	profile *target.Profile
	catalog *compressor.Catalog
	verbose io.Writer
	check   bool

	// newInstantiator creates the instantiation service of one run. The
	// default creates a fresh *netlist.Netlist named after the heap.
	newInstantiator func(name string) Instantiator
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog replaces the default catalog of the profile.
func WithCatalog(c *compressor.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithVerbose prints the decisions of every run to w. Concurrent runs
// interleave their lines.
func WithVerbose(w io.Writer) Option {
	return func(e *Engine) {
		e.verbose = w
	}
}

// WithCheck verifies the bit amount matrix against the bit arena after every
// stage.
func WithCheck(on bool) Option {
	return func(e *Engine) {
		e.check = on
	}
}

// WithInstantiator makes every run emit into the service returned by f
// instead of a fresh netlist. Result.Netlist is then only set when f returns a
// *netlist.Netlist.
func WithInstantiator(f func(name string) Instantiator) Option {
	return func(e *Engine) {
		e.newInstantiator = f
	}
}

// New creates an engine for a profile.
func New(p *target.Profile, opts ...Option) (*Engine, error) {
	e := &Engine{
		profile: p,
		newInstantiator: func(name string) Instantiator {
			return netlist.New(name)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		c, err := compressor.Default(p)
		if err != nil {
			return nil, fmt.Errorf("compress: %w", err)
		}
		e.catalog = c
	}
	return e, nil
}

// Profile returns the profile of the engine.
func (e *Engine) Profile() *target.Profile { return e.profile }

// Catalog returns the catalog of the engine.
func (e *Engine) Catalog() *compressor.Catalog { return e.catalog }

// Snapshot is the height of every column at the start of a stage. Bits that
// arrive in later stages are not included.
type Snapshot struct {
	Stage   int
	Heights []int
}

// Result is the outcome of one compression run.
type Result struct {
	// Heap is the compressed heap.
	Heap *bitheap.Heap

	// Chunks tile the result columns, LSB first.
	Chunks []Chunk

	// Solution is the compressor ledger.
	Solution *Solution

	// Usage counts the placed compressors per spec name.
	Usage map[string]int

	// Snapshots holds the column heights at the start of every stage.
	Snapshots []Snapshot

	// Final holds the column heights handed to the final adder.
	Final []int

	// Plan is the stage range computed by the scheduler.
	Plan schedule.Plan

	// Dropped counts compressor outputs that fell past the MSB.
	Dropped int

	// ConstantNonzero is set when the heap carries a non-zero constant.
	ConstantNonzero bool

	// Netlist is the structure emitted by the run, when the instantiation
	// service is a netlist.
	Netlist *netlist.Netlist

	// Instantiator is the service the run emitted into.
	Instantiator Instantiator
}

// Width returns the number of result columns.
func (r *Result) Width() int {
	return r.Heap.Width()
}

// Wires returns the result wires, LSB first.
func (r *Result) Wires() []netlist.Wire {
	var ws []netlist.Wire
	for _, ch := range r.Chunks {
		ws = append(ws, ch.Bits...)
	}
	return ws
}

// Value reads the result, relative to the heap LSB, from simulated wire
// values.
func (r *Result) Value(vals netlist.Values) *big.Int {
	v := new(big.Int)
	for i, w := range r.Wires() {
		if vals.Get(w) {
			v.SetBit(v, i, 1)
		}
	}
	return v
}

// Run compresses a heap.
func (e *Engine) Run(h *bitheap.Heap) (*Result, error) {
	inst := e.newInstantiator(h.Name)
	r := &run{
		Engine: e,
		heap:   h,
		store:  bitheap.NewStore(h.Width()),
		inst:   inst,
		sol:    NewSolution(),
	}
	res := &Result{
		Heap:            h,
		Solution:        r.sol,
		ConstantNonzero: h.Constant().Sign() != 0,
		Instantiator:    inst,
	}
	if nl, ok := inst.(*netlist.Netlist); ok {
		res.Netlist = nl
	}

	r.load()
	r.plan = schedule.New(e.profile, schedule.WithVerbose(e.verbose)).Order(r.store)
	res.Plan = r.plan

	err := r.compress()
	res.Snapshots = r.snapshots
	res.Dropped = r.store.Dropped()
	res.Usage = r.sol.Usage()
	if err != nil {
		return res, err
	}

	res.Final = make([]int, h.Width())
	for c := range res.Final {
		res.Final[c] = r.store.ColumnHeight(c)
	}
	b := &FinalAdderBuilder{Profile: e.profile, Inst: inst, Heap: h.Name}
	chunks, err := b.Build(r.store, r.done)
	if err != nil {
		return res, err
	}
	r.chunks = append(r.chunks, chunks...)
	res.Chunks = r.chunks
	if err := r.store.Check(); err != nil {
		return res, fmt.Errorf("compress %s: %w", h.Name, err)
	}
	if n := len(res.Wires()); n != h.Width() {
		return res, fmt.Errorf("compress %s: result has %d bits, heap has %d columns", h.Name, n, h.Width())
	}
	return res, nil
}

// run is the state of one Engine.Run call.
type run struct {
	*Engine

	heap  *bitheap.Heap
	store *bitheap.Store
	inst  Instantiator
	sol   *Solution
	plan  schedule.Plan

	// done is the first column not yet emitted; every column below it is in
	// chunks.
	done      int
	chunks    []Chunk
	snapshots []Snapshot
}

func (r *run) printf(format string, args ...any) {
	if r.verbose != nil {
		fmt.Fprintf(r.verbose, "compress %s: "+format+"\n", append([]any{r.heap.Name}, args...)...)
	}
}

// load copies the heap terms and the constant bits into the store.
func (r *run) load() {
	for _, t := range r.heap.Terms {
		w := r.inst.Input(t.Signal)
		r.store.AddBit(r.heap.Column(t.Weight), 0, t.Signal, t.Arrival, w, bitheap.Free)
	}
	for _, c := range r.heap.ConstantColumns() {
		id := r.store.AddBit(c, 0, "'1'", bitheap.Arrival{}, r.inst.Constant(true), bitheap.Free)
		r.store.Bit(id).Constant = true
	}
	r.printf("%d bits over %d columns, constant %s", r.store.Len(), r.heap.Width(), r.heap.Constant())
}
