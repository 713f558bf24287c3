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

// Package compressor describes compressor primitives and the catalog the
// compression engine picks them from.
//
// A compressor (generalized parallel counter) reads a few bits from one or
// more adjacent columns and produces the binary count of their weighted sum on
// fewer output bits. Its efficiency is the number of bits it removes from the
// heap per unit of area.
package compressor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ajroetker/go-bitheap/target"
)

// Kind tags the compressor variants.
type Kind int

const (
	// Generic compressors are built from plain LUTs on any device.
	Generic Kind = iota

	// DeviceGPC compressors use device-specific slice resources (LUTs plus
	// carry chain) and only exist for their family.
	DeviceGPC
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case Generic:
		return "generic"
	case DeviceGPC:
		return "device gpc"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec is an immutable compressor description.
type Spec struct {
	kind       Kind
	family     target.Family
	heights    []int
	outHeights []int
	area       float64
	delay      float64
}

// NewGeneric creates a generic compressor with the given input heights (LSB
// first). Its outputs are the binary count of the inputs.
func NewGeneric(heights []int, area float64) (*Spec, error) {
	s := &Spec{
		kind:    Generic,
		heights: slices.Clone(heights),
		area:    area,
	}
	s.outHeights = countOutputs(s.MaxValue())
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDeviceGPC creates a device-specific GPC of family with the given input
// heights (LSB first) and number of output bits.
func NewDeviceGPC(family target.Family, heights []int, outputs int, area float64) (*Spec, error) {
	s := &Spec{
		kind:       DeviceGPC,
		family:     family,
		heights:    slices.Clone(heights),
		outHeights: make([]int, outputs),
		area:       area,
	}
	for i := range s.outHeights {
		s.outHeights[i] = 1
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func countOutputs(maxValue int) []int {
	n := 1
	for maxValue>>n != 0 {
		n++
	}
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func (s *Spec) validate() error {
	if len(s.heights) == 0 {
		return fmt.Errorf("compressor: no input columns")
	}
	for c, h := range s.heights {
		if h < 0 {
			return fmt.Errorf("compressor %s: negative height %d in column %d", s, h, c)
		}
	}
	if s.heights[0] == 0 {
		return fmt.Errorf("compressor %s: empty least significant column", s)
	}
	if s.area < 0 {
		return fmt.Errorf("compressor %s: negative area %g", s, s.area)
	}
	for c, h := range s.outHeights {
		if h != 1 {
			return fmt.Errorf("compressor %s: output column %d has height %d, want 1", s, c, h)
		}
	}
	if s.MaxValue()>>len(s.outHeights) != 0 {
		return fmt.Errorf("compressor %s: %d outputs cannot hold %d", s, len(s.outHeights), s.MaxValue())
	}
	return nil
}

// Kind returns the compressor variant.
func (s *Spec) Kind() Kind { return s.kind }

// Family returns the device family of a DeviceGPC, "" for generic ones.
func (s *Spec) Family() target.Family { return s.family }

// InputHeights returns a copy of the input heights, LSB first.
func (s *Spec) InputHeights() []int { return slices.Clone(s.heights) }

// OutputHeights returns a copy of the output heights, LSB first.
func (s *Spec) OutputHeights() []int { return slices.Clone(s.outHeights) }

// HeightAt returns the input height of column c, 0 outside the compressor.
func (s *Spec) HeightAt(c int) int {
	if c < 0 || c >= len(s.heights) {
		return 0
	}
	return s.heights[c]
}

// Span returns the number of input columns.
func (s *Spec) Span() int { return len(s.heights) }

// OutputSpan returns the number of output columns.
func (s *Spec) OutputSpan() int { return len(s.outHeights) }

// Area returns the area cost, in LUTs.
func (s *Spec) Area() float64 { return s.area }

// Delay returns the combinational delay in seconds, 0 when the spec was not
// built for a target.
func (s *Spec) Delay() float64 { return s.delay }

// InputBits returns the total number of input bits.
func (s *Spec) InputBits() int { return sum(s.heights) }

// OutputBits returns the total number of output bits.
func (s *Spec) OutputBits() int { return sum(s.outHeights) }

// MaxValue returns the largest weighted sum of the inputs.
func (s *Spec) MaxValue() int {
	v := 0
	for c, h := range s.heights {
		v += h << c
	}
	return v
}

// Efficiency is (InputBits - OutputBits) / Area, or 0 for a zero-area spec.
func (s *Spec) Efficiency() float64 {
	if s.area == 0 {
		return 0
	}
	return float64(s.InputBits()-s.OutputBits()) / s.area
}

// EfficiencyAt is the efficiency of the compressor placed over columns whose
// available heights are given, starting at the compressor's LSB. Columns
// holding fewer bits than the compressor reads only count what they hold, and
// missing or negative heights count as empty.
func (s *Spec) EfficiencyAt(available []int) float64 {
	if s.area == 0 {
		return 0
	}
	in := 0
	for c, h := range s.heights {
		if c >= len(available) || available[c] <= 0 {
			continue
		}
		in += min(h, available[c])
	}
	return float64(in-s.OutputBits()) / s.area
}

// Name is the identifier used for netlist instances, e.g. "Compressor_14_3"
// or "xilinxGPC_1407_5" (input heights MSB first, then the output count).
func (s *Spec) Name() string {
	var sb strings.Builder
	switch s.kind {
	case DeviceGPC:
		sb.WriteString(string(s.family))
		sb.WriteString("GPC_")
	default:
		sb.WriteString("Compressor_")
	}
	sep := ""
	if slices.Max(s.heights) > 9 {
		sep = "x"
	}
	for c := len(s.heights) - 1; c >= 0; c-- {
		sb.WriteString(strconv.Itoa(s.heights[c]))
		if c > 0 {
			sb.WriteString(sep)
		}
	}
	fmt.Fprintf(&sb, "_%d", s.OutputBits())
	return sb.String()
}

// String is the IO notation of the compressor, MSB first: "(1,4;3)".
func (s *Spec) String() string {
	parts := make([]string, len(s.heights))
	for c, h := range s.heights {
		parts[len(s.heights)-1-c] = strconv.Itoa(h)
	}
	return fmt.Sprintf("(%s;%d)", strings.Join(parts, ","), s.OutputBits())
}

func sum(xs []int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}
