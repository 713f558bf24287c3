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
	"math"

	"github.com/ajroetker/go-bitheap/bitheap"
	"github.com/ajroetker/go-bitheap/compressor"
	"github.com/ajroetker/go-bitheap/netlist"
)

// compress runs the stage loop until the heap fits the final adder.
func (r *run) compress() error {
	for stage := 0; ; stage++ {
		if stage > r.plan.MaxStage {
			return bitheap.Errorf(r.heap.Name, stage, -1, bitheap.ErrStageOverflow,
				"heap not reduced after %d stages", r.plan.MaxStage)
		}
		r.snapshots = append(r.snapshots, Snapshot{Stage: stage, Heights: r.store.Heights(stage)})
		if r.reduced(stage) {
			r.sol.MarkComplete(stage)
			r.printf("stage %d: reduced, heights %v", stage, r.store.Heights(stage))
			return nil
		}

		pending := r.store.LastStage() > stage
		placed, err := r.compressStage(stage)
		if err != nil {
			return err
		}
		r.closeStage(stage)
		r.concatenateLSBColumns()
		if r.check {
			if err := r.store.Check(); err != nil {
				return fmt.Errorf("compress %s: stage %d: %w", r.heap.Name, stage, err)
			}
		}
		r.printf("stage %d: %d compressors, next heights %v", stage, placed, r.store.Heights(stage+1))

		// Without later arrivals the next stage would start from the same
		// heights.
		if placed == 0 && !pending {
			col := r.firstOverfull(stage + 1)
			return bitheap.Errorf(r.heap.Name, stage, col, bitheap.ErrCompressorExhaustion,
				"no compressor of %d applies to column height %d", r.catalog.Len(), r.store.Height(stage+1, col))
		}
	}
}

// reduced reports whether every live bit is in stage and every column not yet
// emitted fits the final adder. With a two-operand final adder the lowest
// column with more than one bit may hold a third bit, used as carry-in.
func (r *run) reduced(stage int) bool {
	if r.store.LastStage() > stage {
		return false
	}
	for s := range stage {
		for c := r.done; c < r.store.Width(); c++ {
			if r.store.Height(s, c) > 0 {
				return false
			}
		}
	}
	return r.firstOverfull(stage) < 0
}

// firstOverfull returns the first column of stage exceeding the final adder
// height, or -1.
func (r *run) firstOverfull(stage int) int {
	height := r.profile.FinalAdderHeight
	carry := height == 2
	for c := r.done; c < r.store.Width(); c++ {
		h := r.store.Height(stage, c)
		limit := height
		if carry && h > 1 {
			limit = 3
			carry = false
		}
		if h > limit {
			return c
		}
	}
	return -1
}

// compressStage places compressors in stage. The timing window starts at the
// soonest bit of a column that needs compression and is one compression delay
// wide; it widens by another delay while a sweep places nothing and some bits
// of the stage are still outside it.
func (r *run) compressStage(stage int) (int, error) {
	start, last, ok := r.timeRange(stage)
	if !ok {
		return 0, nil
	}
	delay := r.profile.CompressionDelay()
	window := delay
	if delay <= 0 {
		window = math.Inf(1)
	}
	for {
		placed, err := r.sweep(stage, start+window)
		if err != nil || placed > 0 || start+window >= last {
			return placed, err
		}
		window += delay
		r.printf("stage %d: widening window to %.3gns", stage, window*1e9)
	}
}

// timeRange returns the arrival of the soonest bit of stage in a column that
// needs compression, and the arrival of the latest bit of stage.
func (r *run) timeRange(stage int) (start, last float64, ok bool) {
	period := r.profile.ClockPeriod()
	start = math.Inf(1)
	last = math.Inf(-1)
	for c := r.done; c < r.store.Width(); c++ {
		avail := r.store.Available(stage, c)
		if len(avail) == 0 {
			continue
		}
		last = max(last, r.store.Bit(avail[len(avail)-1]).Arrival.Time(period))
		if r.projected(stage, c) > r.profile.FinalAdderHeight {
			start = min(start, r.store.Bit(avail[0]).Arrival.Time(period))
			ok = true
		}
	}
	return start, last, ok
}

// projected is the height column c will have in the next stage if nothing
// else is placed: the free bits of stage plus the bits already in stage+1.
func (r *run) projected(stage, c int) int {
	return len(r.store.Available(stage, c)) + r.store.Height(stage+1, c)
}

// sweep walks the columns from the LSB up and, at each column, places
// compressors until the column no longer exceeds the final adder height or no
// compressor applies. Only bits arriving by deadline are eligible.
func (r *run) sweep(stage int, deadline float64) (int, error) {
	placed := 0
	for c := r.done; c < r.store.Width(); c++ {
		for r.projected(stage, c) > r.profile.FinalAdderHeight {
			spec, bits := r.firstApplicable(stage, c, deadline)
			if spec == nil {
				break
			}
			if err := r.apply(stage, c, spec, bits); err != nil {
				return placed, err
			}
			placed++
		}
	}
	return placed, nil
}

// eligible returns the free bits of (stage, c) arriving by deadline, soonest
// first.
func (r *run) eligible(stage, c int, deadline float64) []bitheap.BitID {
	period := r.profile.ClockPeriod()
	avail := r.store.Available(stage, c)
	n := 0
	for n < len(avail) && r.store.Bit(avail[n]).Arrival.Time(period) <= deadline {
		n++
	}
	return avail[:n]
}

// firstApplicable returns the first compressor in catalog order whose every
// input column has enough eligible bits at column c, with the bits it would
// read. Compressors that would not reduce the bit count are never used.
func (r *run) firstApplicable(stage, c int, deadline float64) (*compressor.Spec, [][]bitheap.BitID) {
	span := min(r.catalog.MaxSpan(), r.store.Width()-c)
	cols := make([][]bitheap.BitID, span)
	heights := make([]int, span)
	for j := range span {
		cols[j] = r.eligible(stage, c+j, deadline)
		heights[j] = len(cols[j])
	}

	for i := range r.catalog.Len() {
		spec := r.catalog.At(i)
		if spec.Span() > span || spec.EfficiencyAt(heights) <= 0 {
			continue
		}
		bits := make([][]bitheap.BitID, spec.Span())
		fits := true
		for j := range spec.Span() {
			h := spec.HeightAt(j)
			if heights[j] < h {
				fits = false
				break
			}
			bits[j] = cols[j][:h]
		}
		if fits {
			return spec, bits
		}
	}
	return nil, nil
}

// apply places one compressor at (stage, c): its inputs are compressed and its
// outputs join stage+1.
func (r *run) apply(stage, c int, spec *compressor.Spec, bits [][]bitheap.BitID) error {
	if stage+1 > r.plan.MaxStage {
		return bitheap.Errorf(r.heap.Name, stage, c, bitheap.ErrStageOverflow,
			"%s would produce into stage %d, max stage is %d", spec, stage+1, r.plan.MaxStage)
	}

	inputs := make([][]netlist.Wire, len(bits))
	var arrival bitheap.Arrival
	for j, col := range bits {
		for _, id := range col {
			r.store.Mark(id, bitheap.MarkedForCompression)
			b := r.store.Bit(id)
			inputs[j] = append(inputs[j], b.Wire)
			arrival = bitheap.Latest(arrival, b.Arrival)
		}
	}
	outputs, err := r.inst.Compressor(spec, inputs)
	if err != nil {
		for _, col := range bits {
			for _, id := range col {
				r.store.Mark(id, bitheap.Free)
			}
		}
		return fmt.Errorf("compress %s: stage %d, column %d: %w", r.heap.Name, stage, c, err)
	}
	for _, col := range bits {
		for _, id := range col {
			r.store.Mark(id, bitheap.Compressed)
		}
	}

	arrival = arrival.After(spec.Delay(), r.profile.CyclePeriod())
	for j, col := range outputs {
		for _, w := range col {
			r.store.AddBit(c+j, stage+1, r.inst.WireName(w), arrival, w, bitheap.JustAdded)
		}
	}
	r.sol.Add(stage, c, spec)
	r.printf("stage %d, column %d: %s, outputs at %s", stage, c, spec, arrival)
	return nil
}

// closeStage removes the compressed bits, releases the outputs of the stage
// and promotes the leftover bits of stage to stage+1.
func (r *run) closeStage(stage int) {
	r.store.RemoveCompressedBits()
	r.store.MarkBitsForCompression()
	for c := range r.store.Width() {
		for _, id := range r.store.Available(stage, c) {
			r.store.Move(id, stage+1)
		}
	}
}

// concatenateLSBColumns emits the columns above the done boundary that are
// final: at most one bit left over all stages, and every column below already
// emitted, so no carry can reach them anymore.
func (r *run) concatenateLSBColumns() {
	if ch, ok := directChunk(r.store, r.inst, r.done); ok {
		r.chunks = append(r.chunks, ch)
		r.done = ch.MSB() + 1
		r.printf("columns [%d, %d] emitted directly", ch.LSB, ch.MSB())
	}
}
