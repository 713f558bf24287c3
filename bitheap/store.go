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

package bitheap

import (
	"fmt"
	"slices"

	"github.com/ajroetker/go-bitheap/netlist"
)

// Store owns the bits of one heap while it is being compressed.
//
// Bits live in an arena and are addressed by BitID. Each column keeps the
// handles of its live bits; the bit amount matrix counts live bits per
// (stage, column) and is updated in lockstep with every state or stage change.
// A Store is owned by a single compression run and is not safe for concurrent
// use.
type Store struct {
	width   int
	bits    []Bit
	columns [][]BitID
	amount  [][]int
	dropped int
}

// NewStore creates an empty store for a heap of the given width.
func NewStore(width int) *Store {
	return &Store{
		width:   width,
		columns: make([][]BitID, width),
		amount:  [][]int{make([]int, width)},
	}
}

// Width returns the number of columns.
func (s *Store) Width() int { return s.width }

// Stages returns the number of stages the amount matrix currently spans.
func (s *Store) Stages() int { return len(s.amount) }

// Dropped returns how many bits were discarded because they landed past the
// most significant column.
func (s *Store) Dropped() int { return s.dropped }

// Len returns the size of the arena, compressed bits included.
func (s *Store) Len() int { return len(s.bits) }

// EnsureStage grows the amount matrix so that stage is addressable.
func (s *Store) EnsureStage(stage int) {
	for len(s.amount) <= stage {
		s.amount = append(s.amount, make([]int, s.width))
	}
}

// AddBit inserts a new bit and returns its handle. Bits whose column lies past
// the most significant column are dropped: AddBit returns NoBit and counts
// them in Dropped.
func (s *Store) AddBit(column, stage int, name string, arrival Arrival, wire netlist.Wire, state BitState) BitID {
	if column < 0 {
		panic(fmt.Sprintf("bitheap: negative column %d for bit %s", column, name))
	}
	if column >= s.width {
		s.dropped++
		return NoBit
	}
	s.EnsureStage(stage)
	id := BitID(len(s.bits))
	s.bits = append(s.bits, Bit{
		ID:      id,
		Name:    name,
		Column:  column,
		Stage:   stage,
		Arrival: arrival,
		State:   state,
		Wire:    wire,
	})
	s.columns[column] = append(s.columns[column], id)
	if state.live() {
		s.amount[stage][column]++
	}
	return id
}

// Bit returns the bit behind a handle. The pointer stays valid until the next
// AddBit call.
func (s *Store) Bit(id BitID) *Bit {
	return &s.bits[id]
}

// Height returns the number of live bits of column in stage.
func (s *Store) Height(stage, column int) int {
	if stage < 0 || stage >= len(s.amount) || column < 0 || column >= s.width {
		return 0
	}
	return s.amount[stage][column]
}

// ColumnHeight returns the number of live bits of column over all stages.
func (s *Store) ColumnHeight(column int) int {
	h := 0
	for stage := range s.amount {
		h += s.Height(stage, column)
	}
	return h
}

// Heights returns a copy of the amount row of a stage.
func (s *Store) Heights(stage int) []int {
	if stage < 0 || stage >= len(s.amount) {
		return make([]int, s.width)
	}
	return slices.Clone(s.amount[stage])
}

// MaxHeight returns the highest column height, all stages merged, over the
// columns at or above from.
func (s *Store) MaxHeight(from int) int {
	m := 0
	for c := max(from, 0); c < s.width; c++ {
		m = max(m, s.ColumnHeight(c))
	}
	return m
}

// LastStage returns the highest stage holding live bits, or -1 for an empty
// heap.
func (s *Store) LastStage() int {
	for stage := len(s.amount) - 1; stage >= 0; stage-- {
		for _, n := range s.amount[stage] {
			if n > 0 {
				return stage
			}
		}
	}
	return -1
}

// Available returns the free bits of column in stage, soonest arrival first.
// Bits with equal arrival keep their insertion order.
func (s *Store) Available(stage, column int) []BitID {
	if column < 0 || column >= s.width {
		return nil
	}
	var ids []BitID
	for _, id := range s.columns[column] {
		b := &s.bits[id]
		if b.Stage == stage && b.State == Free {
			ids = append(ids, id)
		}
	}
	s.sortByArrival(ids)
	return ids
}

// Live returns the live bits of column over all stages, soonest arrival first.
func (s *Store) Live(column int) []BitID {
	if column < 0 || column >= s.width {
		return nil
	}
	var ids []BitID
	for _, id := range s.columns[column] {
		if s.bits[id].State.live() {
			ids = append(ids, id)
		}
	}
	s.sortByArrival(ids)
	return ids
}

func (s *Store) sortByArrival(ids []BitID) {
	slices.SortStableFunc(ids, func(a, b BitID) int {
		return s.bits[a].Arrival.Compare(s.bits[b].Arrival)
	})
}

// Mark changes the lifecycle tag of a bit. Compressed is terminal: marking a
// compressed bit again is a programming error.
func (s *Store) Mark(id BitID, state BitState) {
	b := &s.bits[id]
	if b.State == Compressed {
		panic(fmt.Sprintf("bitheap: bit %s is already compressed", b))
	}
	if b.State.live() && !state.live() {
		s.amount[b.Stage][b.Column]--
	}
	b.State = state
}

// Move reassigns a live bit to another stage.
func (s *Store) Move(id BitID, stage int) {
	b := &s.bits[id]
	if !b.State.live() {
		panic(fmt.Sprintf("bitheap: moving compressed bit %s", b))
	}
	s.EnsureStage(stage)
	s.amount[b.Stage][b.Column]--
	s.amount[stage][b.Column]++
	b.Stage = stage
}

// RemoveCompressedBits drops the handles of compressed bits from the columns.
func (s *Store) RemoveCompressedBits() {
	for c, ids := range s.columns {
		s.columns[c] = slices.DeleteFunc(ids, func(id BitID) bool {
			return s.bits[id].State == Compressed
		})
	}
}

// MarkBitsForCompression releases the bits produced or reserved during the
// last stage so that the next stage can consume them.
func (s *Store) MarkBitsForCompression() {
	for _, ids := range s.columns {
		for _, id := range ids {
			switch s.bits[id].State {
			case JustAdded, MarkedForCompression:
				s.bits[id].State = Free
			}
		}
	}
}

// Check recomputes the amount matrix from the arena and reports the first
// divergence. A non-nil result is a bug in the caller.
func (s *Store) Check() error {
	want := make([][]int, len(s.amount))
	for stage := range want {
		want[stage] = make([]int, s.width)
	}
	for c, ids := range s.columns {
		for _, id := range ids {
			b := &s.bits[id]
			if b.Column != c {
				return fmt.Errorf("bit %s listed in column %d", b, c)
			}
			if b.State.live() {
				if b.Stage >= len(want) {
					return fmt.Errorf("bit %s in stage past the matrix (%d stages)", b, len(want))
				}
				want[b.Stage][c]++
			}
		}
	}
	for i := range s.bits {
		b := &s.bits[i]
		if b.State.live() && !slices.Contains(s.columns[b.Column], b.ID) {
			return fmt.Errorf("live bit %s missing from column %d", b, b.Column)
		}
	}
	for stage := range want {
		for c := range want[stage] {
			if want[stage][c] != s.amount[stage][c] {
				return fmt.Errorf("amount[%d][%d] = %d, counted %d live bits",
					stage, c, s.amount[stage][c], want[stage][c])
			}
		}
	}
	return nil
}
