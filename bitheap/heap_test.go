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
	"math/big"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeapConstant(t *testing.T) {
	h, err := NewHeap("c", 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	h.AddConstant(big.NewInt(-1), 0)
	if got := h.Constant().Int64(); got != 15 {
		t.Errorf("Constant() after adding -1 = %d, want 15", got)
	}
	h.AddConstantBit(0)
	if got := h.Constant().Int64(); got != 0 {
		t.Errorf("Constant() after wrap = %d, want 0", got)
	}
	if got := h.ConstantColumns(); len(got) != 0 {
		t.Errorf("ConstantColumns() = %v, want none", got)
	}
}

func TestHeapConstantBelowLSB(t *testing.T) {
	h, err := NewHeap("c", 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	// 0b1101 at weight 0: the two lowest bits are truncated, 0b11 remains.
	h.AddConstant(big.NewInt(13), 0)
	if diff := cmp.Diff([]int{0, 1}, h.ConstantColumns()); diff != "" {
		t.Errorf("ConstantColumns() mismatch (-want +got):\n%s", diff)
	}
}

func TestHeapAddBit(t *testing.T) {
	h, err := NewHeap("h", -2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.AddBit("a", -3, 0, 0); err == nil {
		t.Error("AddBit below LSB succeeded")
	}
	if err := h.AddBit("a", 4, 0, 0); err == nil {
		t.Error("AddBit above MSB succeeded")
	}
	if err := h.AddSignal("X", 8, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	h.AddConstantBit(-2)
	if diff := cmp.Diff([]int{1, 0, 1, 1, 1, 1}, h.Heights()); diff != "" {
		t.Errorf("Heights() mismatch (-want +got):\n%s", diff)
	}
	if got, want := h.Terms[3].Signal, "X[3]"; got != want {
		t.Errorf("Terms[3].Signal = %q, want %q", got, want)
	}
	if _, err := NewHeap("bad", 3, 2); err == nil {
		t.Error("NewHeap(msb < lsb) succeeded")
	}
}

func TestParseDescription(t *testing.T) {
	const desc = `{
		"name": "sum",
		"lsb": 0, "msb": 4,
		"constant": "0x3",
		"bits": [
			{"signal": "X", "width": 4},
			{"signal": "Y", "weight": 1, "width": 4, "cycle": 1, "delay": 1e-9},
			{"signal": "c", "weight": 4}
		]
	}`
	h, err := ParseDescription(strings.NewReader(desc))
	if err != nil {
		t.Fatalf("ParseDescription() = %v", err)
	}
	if h.Name != "sum" || h.Width() != 5 {
		t.Errorf("got heap %q of width %d", h.Name, h.Width())
	}
	if diff := cmp.Diff([]int{2, 3, 2, 2, 2}, h.Heights()); diff != "" {
		t.Errorf("Heights() mismatch (-want +got):\n%s", diff)
	}
	y := h.Terms[4]
	if want := (Term{Signal: "Y[0]", Weight: 1, Arrival: Arrival{Cycle: 1, Delay: 1e-9}}); y != want {
		t.Errorf("Terms[4] = %+v, want %+v", y, want)
	}
}

func TestParseDescriptionErrors(t *testing.T) {
	tests := []struct {
		name, desc string
	}{
		{"unknown field", `{"name": "a", "lsb": 0, "msb": 1, "colour": 1}`},
		{"bad constant", `{"name": "a", "lsb": 0, "msb": 1, "constant": "zz"}`},
		{"out of range", `{"name": "a", "lsb": 0, "msb": 1, "bits": [{"signal": "s", "weight": 5}]}`},
		{"msb below lsb", `{"name": "a", "lsb": 2, "msb": 1}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDescription(strings.NewReader(tt.desc)); err == nil {
				t.Errorf("ParseDescription(%q) succeeded", tt.desc)
			}
		})
	}
}
