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

package compress

import (
	"fmt"

	"github.com/ajroetker/go-bitheap/bitheap"
	"github.com/ajroetker/go-bitheap/netlist"
	"github.com/ajroetker/go-bitheap/target"
)

// ChunkKind tells how a chunk of the result was produced.
type ChunkKind int

const (
	// ChunkDirect columns held at most one bit and are wired straight to the
	// result.
	ChunkDirect ChunkKind = iota

	// ChunkAdder columns are the sum bits of the final adder.
	ChunkAdder
)

// String returns a human-readable name for the ChunkKind.
func (k ChunkKind) String() string {
	switch k {
	case ChunkDirect:
		return "direct"
	case ChunkAdder:
		return "adder"
	default:
		return fmt.Sprintf("ChunkKind(%d)", int(k))
	}
}

// Chunk is a run of consecutive result columns.
type Chunk struct {
	Name string
	Kind ChunkKind

	// LSB is the first column of the chunk.
	LSB int

	// Bits are the result wires, LSB first.
	Bits []netlist.Wire
}

// MSB returns the last column of the chunk.
func (c Chunk) MSB() int { return c.LSB + len(c.Bits) - 1 }

func (c Chunk) String() string {
	return fmt.Sprintf("%s[%d:%d] %s", c.Name, c.MSB(), c.LSB, c.Kind)
}

// directChunk collects the columns from `from` up that hold at most one bit.
// An empty column contributes a constant zero.
func directChunk(store *bitheap.Store, inst Instantiator, from int) (Chunk, bool) {
	ch := Chunk{Kind: ChunkDirect, LSB: from}
	for c := from; c < store.Width(); c++ {
		live := store.Live(c)
		if len(live) > 1 {
			break
		}
		if len(live) == 0 {
			ch.Bits = append(ch.Bits, inst.Constant(false))
		} else {
			ch.Bits = append(ch.Bits, store.Bit(live[0]).Wire)
		}
	}
	if len(ch.Bits) == 0 {
		return ch, false
	}
	ch.Name = fmt.Sprintf("direct_%d_%d", ch.LSB, ch.MSB())
	return ch, true
}

// FinalAdderBuilder sums a reduced heap with a carry-propagate adder.
type FinalAdderBuilder struct {
	Profile *target.Profile
	Inst    Instantiator

	// Heap names the heap in errors.
	Heap string
}

// Build emits the columns of store from done up. Columns holding at most one
// bit up to the first higher column are wired directly; the rest must hold at
// most three bits and go to the final adder:
//
//   - at most two bits per column, plus an optional third bit in the lowest
//     column used as carry-in: one two-operand adder;
//   - three bits in a higher column: a ternary adder when the profile allows
//     it, otherwise two chained two-operand adders.
//
// A column higher than three fails with bitheap.ErrIncompleteReduction.
func (b *FinalAdderBuilder) Build(store *bitheap.Store, done int) ([]Chunk, error) {
	var chunks []Chunk
	if ch, ok := directChunk(store, b.Inst, done); ok {
		chunks = append(chunks, ch)
		done = ch.MSB() + 1
	}
	if done >= store.Width() {
		return chunks, nil
	}

	rows := [3][]netlist.Wire{}
	needThree := false
	for c := done; c < store.Width(); c++ {
		live := store.Live(c)
		if len(live) > 3 {
			return nil, bitheap.Errorf(b.Heap, store.LastStage(), c, bitheap.ErrIncompleteReduction,
				"column height %d", len(live))
		}
		if len(live) == 3 && c > done {
			needThree = true
		}
		for i := range rows {
			w := b.Inst.Constant(false)
			if i < len(live) {
				w = store.Bit(live[i]).Wire
			}
			rows[i] = append(rows[i], w)
		}
	}

	var out []netlist.Wire
	var err error
	switch {
	case !needThree:
		// The third bit of the lowest column, if any, is the carry-in.
		out, err = b.Inst.Adder(netlist.KindAdder2, rows[:2], rows[2][0])
	case b.Profile.UseTernaryAdder():
		out, err = b.Inst.Adder(netlist.KindAdder3, rows[:], netlist.NoWire)
	default:
		var partial []netlist.Wire
		partial, err = b.Inst.Adder(netlist.KindAdder2, rows[:2], netlist.NoWire)
		if err == nil {
			out, err = b.Inst.Adder(netlist.KindAdder2, [][]netlist.Wire{partial, rows[2]}, netlist.NoWire)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("final adder of %s: %w", b.Heap, err)
	}
	return append(chunks, Chunk{
		Name: fmt.Sprintf("bitheapFinalAdd_%d_%d", done, store.Width()-1),
		Kind: ChunkAdder,
		LSB:  done,
		Bits: out,
	}), nil
}
