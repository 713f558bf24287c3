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
	"cmp"
	"fmt"

	"github.com/ajroetker/go-bitheap/netlist"
)

// BitState is the lifecycle tag of a bit in the heap.
type BitState int

const (
	// Free bits are available as compressor inputs.
	Free BitState = iota

	// MarkedForCompression bits have been selected as inputs of a compressor
	// that is not committed yet.
	MarkedForCompression

	// Compressed bits were consumed by a compressor. They stay in the arena
	// but are no longer counted in any column.
	Compressed

	// JustAdded bits were produced by a compressor during the current stage
	// and become Free when the stage is closed.
	JustAdded
)

// String returns a human-readable name for the BitState.
func (s BitState) String() string {
	switch s {
	case Free:
		return "free"
	case MarkedForCompression:
		return "markedForCompression"
	case Compressed:
		return "compressed"
	case JustAdded:
		return "justAdded"
	default:
		return fmt.Sprintf("BitState(%d)", int(s))
	}
}

// live reports whether a bit in this state is counted in its column.
func (s BitState) live() bool {
	return s != Compressed
}

// BitID is a handle into the bit arena of a Store.
type BitID int32

// NoBit is the zero handle returned when no bit exists.
const NoBit BitID = -1

// Arrival is the time at which a bit becomes valid: a clock cycle plus the
// combinational delay accumulated inside that cycle, in seconds.
type Arrival struct {
	Cycle int
	Delay float64
}

// Time flattens the arrival into seconds for the given clock period.
func (a Arrival) Time(period float64) float64 {
	return float64(a.Cycle)*period + a.Delay
}

// After returns the arrival of a signal computed from a in d seconds.
// With a positive period the delay wraps into the following cycles, otherwise
// it keeps accumulating in the current cycle.
func (a Arrival) After(d, period float64) Arrival {
	r := Arrival{Cycle: a.Cycle, Delay: a.Delay + d}
	if period > 0 {
		for r.Delay >= period {
			r.Delay -= period
			r.Cycle++
		}
	}
	return r
}

// Compare orders arrivals by cycle, then by delay.
func (a Arrival) Compare(b Arrival) int {
	if c := cmp.Compare(a.Cycle, b.Cycle); c != 0 {
		return c
	}
	return cmp.Compare(a.Delay, b.Delay)
}

// Latest returns the later of a and b.
func Latest(a, b Arrival) Arrival {
	if a.Compare(b) >= 0 {
		return a
	}
	return b
}

func (a Arrival) String() string {
	return fmt.Sprintf("c%d+%.3gns", a.Cycle, a.Delay*1e9)
}

// Bit is a single weighted bit of the heap.
type Bit struct {
	// ID is the arena handle of the bit.
	ID BitID

	// Name is the signal the bit was read from, for diagnostics.
	Name string

	// Column is the bit position relative to the heap LSB.
	Column int

	// Stage is the compression stage the bit currently belongs to.
	Stage int

	// Arrival is when the bit becomes valid.
	Arrival Arrival

	// State is the lifecycle tag.
	State BitState

	// Constant is true for the bits of the constant mask.
	Constant bool

	// Wire is the net carrying the bit in the structural netlist.
	Wire netlist.Wire
}

func (b *Bit) String() string {
	return fmt.Sprintf("%s@%d/s%d(%s,%s)", b.Name, b.Column, b.Stage, b.Arrival, b.State)
}
