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
	"strings"

	"github.com/samber/lo"

	"github.com/ajroetker/go-bitheap/compressor"
)

// Placement is one ledger entry: Count compressors of the same spec placed
// back to back at (Stage, Column).
type Placement struct {
	Stage  int
	Column int
	Spec   *compressor.Spec
	Count  int
}

// Area is the combined area of the entry.
func (p Placement) Area() float64 {
	return float64(p.Count) * p.Spec.Area()
}

// Use is a (spec, repeat count) pair at one position.
type Use struct {
	Spec  *compressor.Spec
	Count int
}

type position struct {
	stage, column int
}

// Solution is the append-only ledger of the compressors placed by one
// compression run. It does not influence the engine beyond recording when the
// heap reached the final adder height.
type Solution struct {
	placements []Placement
	index      map[position][]int

	complete      bool
	completeStage int
}

// NewSolution creates an empty ledger.
func NewSolution() *Solution {
	return &Solution{index: make(map[position][]int)}
}

// Add records one compressor at (stage, column). Consecutive placements of the
// same spec at the same position share an entry.
func (s *Solution) Add(stage, column int, spec *compressor.Spec) {
	pos := position{stage, column}
	if idx := s.index[pos]; len(idx) > 0 {
		last := &s.placements[idx[len(idx)-1]]
		if last.Spec == spec {
			last.Count++
			return
		}
	}
	s.index[pos] = append(s.index[pos], len(s.placements))
	s.placements = append(s.placements, Placement{Stage: stage, Column: column, Spec: spec, Count: 1})
}

// At returns the compressors placed at (stage, column) in placement order.
func (s *Solution) At(stage, column int) []Use {
	idx := s.index[position{stage, column}]
	uses := make([]Use, len(idx))
	for i, j := range idx {
		uses[i] = Use{Spec: s.placements[j].Spec, Count: s.placements[j].Count}
	}
	return uses
}

// Placements returns a copy of the ledger in placement order.
func (s *Solution) Placements() []Placement {
	return append([]Placement(nil), s.placements...)
}

// Compressors returns the number of compressors placed.
func (s *Solution) Compressors() int {
	return lo.SumBy(s.placements, func(p Placement) int { return p.Count })
}

// NumStages returns the index of the last stage holding a compressor, plus
// one.
func (s *Solution) NumStages() int {
	if len(s.placements) == 0 {
		return 0
	}
	return lo.MaxBy(s.placements, func(a, b Placement) bool { return a.Stage > b.Stage }).Stage + 1
}

// TotalArea is Σ area × count over the ledger.
func (s *Solution) TotalArea() float64 {
	return lo.SumBy(s.placements, Placement.Area)
}

// Usage returns how many times each spec, by name, was placed.
func (s *Solution) Usage() map[string]int {
	usage := make(map[string]int)
	for _, p := range s.placements {
		usage[p.Spec.Name()] += p.Count
	}
	return usage
}

// MarkComplete records that the heap reached the final adder height at stage.
func (s *Solution) MarkComplete(stage int) {
	s.complete = true
	s.completeStage = stage
}

// Complete returns the stage at which the heap was fully reduced.
func (s *Solution) Complete() (stage int, ok bool) {
	return s.completeStage, s.complete
}

// String lists the ledger, one entry per line.
func (s *Solution) String() string {
	var sb strings.Builder
	for _, p := range s.placements {
		fmt.Fprintf(&sb, "stage %d column %d: %d x %s\n", p.Stage, p.Column, p.Count, p.Spec)
	}
	if stage, ok := s.Complete(); ok {
		fmt.Fprintf(&sb, "complete at stage %d\n", stage)
	}
	return sb.String()
}
