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

// Package bitheap describes multi-operand additions as heaps of weighted bits
// and holds the per-column, per-stage bit state used while compressing them.
//
// A Heap is the input: single bits at binary weights between LSB and MSB, each
// with an arrival time, plus a constant accumulated from all constant terms.
// A Store is the mutable state of one compression run over a Heap.
package bitheap

import (
	"fmt"
	"math/big"
)

// Term is one weighted bit contributed to the heap.
type Term struct {
	// Signal names the bit, typically "X" or "X[3]".
	Signal string

	// Weight is the binary weight (bit significance) of the bit.
	Weight int

	// Arrival is when the bit is valid.
	Arrival Arrival
}

// Heap is the description of a multi-operand addition: the result is
// Σ bit·2^weight + constant, modulo 2^(MSB+1), truncated below LSB.
type Heap struct {
	Name string
	LSB  int
	MSB  int

	Terms []Term

	constant *big.Int
}

// NewHeap creates an empty heap covering weights [lsb, msb].
func NewHeap(name string, lsb, msb int) (*Heap, error) {
	if msb < lsb {
		return nil, fmt.Errorf("bitheap %s: msb %d below lsb %d", name, msb, lsb)
	}
	return &Heap{
		Name:     name,
		LSB:      lsb,
		MSB:      msb,
		constant: new(big.Int),
	}, nil
}

// Width returns the number of columns of the heap.
func (h *Heap) Width() int {
	return h.MSB - h.LSB + 1
}

// Column returns the column index of a weight.
func (h *Heap) Column(weight int) int {
	return weight - h.LSB
}

// AddBit adds a single bit of the given weight.
func (h *Heap) AddBit(signal string, weight, cycle int, delay float64) error {
	if weight < h.LSB || weight > h.MSB {
		return fmt.Errorf("bitheap %s: bit %s weight %d outside [%d, %d]", h.Name, signal, weight, h.LSB, h.MSB)
	}
	h.Terms = append(h.Terms, Term{
		Signal:  signal,
		Weight:  weight,
		Arrival: Arrival{Cycle: cycle, Delay: delay},
	})
	return nil
}

// AddSignal adds the width bits of an unsigned signal whose bit 0 has the
// given weight. Bits past the MSB are ignored.
func (h *Heap) AddSignal(signal string, width, weight, cycle int, delay float64) error {
	for i := range width {
		w := weight + i
		if w > h.MSB {
			break
		}
		if err := h.AddBit(fmt.Sprintf("%s[%d]", signal, i), w, cycle, delay); err != nil {
			return err
		}
	}
	return nil
}

// AddConstant adds value·2^weight to the constant. Negative values are added
// in two's complement; the constant is kept modulo 2^Width and contributions
// below LSB are truncated.
func (h *Heap) AddConstant(value *big.Int, weight int) {
	v := new(big.Int).Set(value)
	if shift := weight - h.LSB; shift >= 0 {
		v.Lsh(v, uint(shift))
	} else {
		v.Rsh(v, uint(-shift))
	}
	h.constant.Add(h.constant, v)
	h.constant.Mod(h.constant, h.modulus())
}

// AddConstantBit adds 2^weight to the constant.
func (h *Heap) AddConstantBit(weight int) {
	h.AddConstant(big.NewInt(1), weight)
}

// Constant returns the constant, relative to LSB, in [0, 2^Width).
func (h *Heap) Constant() *big.Int {
	return new(big.Int).Set(h.constant)
}

// ConstantColumns returns the columns where the constant has a one.
func (h *Heap) ConstantColumns() []int {
	var cols []int
	for c := range h.Width() {
		if h.constant.Bit(c) == 1 {
			cols = append(cols, c)
		}
	}
	return cols
}

// Heights returns the number of bits per column, constant bits included.
func (h *Heap) Heights() []int {
	heights := make([]int, h.Width())
	for _, t := range h.Terms {
		heights[h.Column(t.Weight)]++
	}
	for _, c := range h.ConstantColumns() {
		heights[c]++
	}
	return heights
}

func (h *Heap) modulus() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(h.Width()))
}
