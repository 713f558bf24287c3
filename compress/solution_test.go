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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ajroetker/go-bitheap/compressor"
)

func TestSolutionLedger(t *testing.T) {
	fa, err := compressor.NewGeneric([]int{3}, 1)
	if err != nil {
		t.Fatal(err)
	}
	c6, err := compressor.NewGeneric([]int{6}, 3)
	if err != nil {
		t.Fatal(err)
	}

	s := NewSolution()
	s.Add(0, 2, c6)
	s.Add(0, 2, c6)
	s.Add(0, 2, fa)
	s.Add(0, 2, c6)
	s.Add(1, 0, fa)

	uses := s.At(0, 2)
	want := []Use{{Spec: c6, Count: 2}, {Spec: fa, Count: 1}, {Spec: c6, Count: 1}}
	if diff := cmp.Diff(want, uses, cmp.Comparer(func(a, b *compressor.Spec) bool { return a == b })); diff != "" {
		t.Errorf("At(0, 2) mismatch (-want +got):\n%s", diff)
	}
	if got := len(s.At(3, 3)); got != 0 {
		t.Errorf("At(3, 3) has %d entries", got)
	}
	if got := s.Compressors(); got != 5 {
		t.Errorf("Compressors() = %d, want 5", got)
	}
	if got := s.TotalArea(); got != 11 {
		t.Errorf("TotalArea() = %g, want 11", got)
	}
	if got := s.NumStages(); got != 2 {
		t.Errorf("NumStages() = %d, want 2", got)
	}
	if diff := cmp.Diff(map[string]int{"Compressor_6_3": 3, "Compressor_3_2": 2}, s.Usage()); diff != "" {
		t.Errorf("Usage() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Complete(); ok {
		t.Error("Complete() before MarkComplete")
	}
	s.MarkComplete(2)
	if stage, ok := s.Complete(); !ok || stage != 2 {
		t.Errorf("Complete() = %d, %v", stage, ok)
	}
	if !strings.HasPrefix(s.String(), "stage 0 column 2: 2 x (6;3)\n") {
		t.Errorf("String() = %q", s.String())
	}
}

func TestEmptySolution(t *testing.T) {
	s := NewSolution()
	if s.TotalArea() != 0 || s.Compressors() != 0 || s.NumStages() != 0 || len(s.Usage()) != 0 {
		t.Errorf("empty solution: %q", s.String())
	}
}
