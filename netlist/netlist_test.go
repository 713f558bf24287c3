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

package netlist

import (
	"bytes"
	"strings"
	"testing"
)

type shape struct {
	name     string
	in, outs []int
}

func (s shape) Name() string         { return s.name }
func (s shape) InputHeights() []int  { return s.in }
func (s shape) OutputHeights() []int { return s.outs }

// fullAdder is the (3;2) counter.
var fullAdder = shape{"Compressor_3_2", []int{3}, []int{1, 1}}

func TestCompressorEvaluate(t *testing.T) {
	for v := range 8 {
		n := New("fa")
		a, b, c := n.Input("a"), n.Input("b"), n.Input("c")
		outs, err := n.Compressor(fullAdder, [][]Wire{{a, b, c}})
		if err != nil {
			t.Fatal(err)
		}
		vals, err := n.Evaluate(map[string]bool{"a": v&1 == 1, "b": v&2 == 2, "c": v&4 == 4})
		if err != nil {
			t.Fatal(err)
		}
		want := v&1 + v>>1&1 + v>>2&1
		got := 0
		for c, col := range outs {
			if vals.Get(col[0]) {
				got += 1 << c
			}
		}
		if got != want {
			t.Errorf("full adder on %03b = %d, want %d", v, got, want)
		}
	}
}

func TestCompressorMissingInputsAreZero(t *testing.T) {
	n := New("pad")
	a := n.Input("a")
	outs, err := n.Compressor(shape{"c14", []int{4, 1}, []int{1, 1, 1}}, [][]Wire{{a}})
	if err != nil {
		t.Fatal(err)
	}
	vals, err := n.Evaluate(map[string]bool{"a": true})
	if err != nil {
		t.Fatal(err)
	}
	if !vals.Get(outs[0][0]) || vals.Get(outs[1][0]) || vals.Get(outs[2][0]) {
		t.Errorf("padded compressor outputs wrong: %v %v %v", vals.Get(outs[0][0]), vals.Get(outs[1][0]), vals.Get(outs[2][0]))
	}
}

func TestCompressorErrors(t *testing.T) {
	n := New("bad")
	a := n.Input("a")
	tests := []struct {
		name   string
		shape  Shape
		inputs [][]Wire
	}{
		{"too many columns", fullAdder, [][]Wire{{a}, {a}}},
		{"too many bits", fullAdder, [][]Wire{{a, a, a, a}}},
		{"unknown wire", fullAdder, [][]Wire{{Wire(42)}}},
		{"tall output", shape{"t", []int{3}, []int{2}}, [][]Wire{{a}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := n.Compressor(tt.shape, tt.inputs); err == nil {
				t.Error("Compressor() succeeded")
			}
		})
	}
}

func TestAdders(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		ops     []uint
		cin     bool
		width   int
		wantSum uint
	}{
		{"adder2", KindAdder2, []uint{5, 6}, false, 4, 11},
		{"adder2 carry-in", KindAdder2, []uint{5, 6}, true, 4, 12},
		{"adder2 wraps", KindAdder2, []uint{15, 3}, false, 4, 2},
		{"adder3", KindAdder3, []uint{7, 7, 7}, false, 5, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.name)
			inputs := map[string]bool{}
			var ops [][]Wire
			for i, v := range tt.ops {
				var op []Wire
				for b := range tt.width {
					name := string(rune('a'+i)) + string(rune('0'+b))
					op = append(op, n.Input(name))
					inputs[name] = v>>b&1 == 1
				}
				ops = append(ops, op)
			}
			cin := NoWire
			if tt.cin {
				cin = n.Constant(true)
			}
			out, err := n.Adder(tt.kind, ops, cin)
			if err != nil {
				t.Fatal(err)
			}
			vals, err := n.Evaluate(inputs)
			if err != nil {
				t.Fatal(err)
			}
			var got uint
			for b, w := range out {
				if vals.Get(w) {
					got |= 1 << b
				}
			}
			if want := tt.wantSum % (1 << tt.width); got != want {
				t.Errorf("sum = %d, want %d", got, want)
			}
		})
	}
}

func TestAdderErrors(t *testing.T) {
	n := New("bad")
	a, b := n.Input("a"), n.Input("b")
	if _, err := n.Adder(KindAdder2, [][]Wire{{a}}, NoWire); err == nil {
		t.Error("Adder with one operand succeeded")
	}
	if _, err := n.Adder(KindAdder2, [][]Wire{{a}, {a, b}}, NoWire); err == nil {
		t.Error("Adder with unequal operands succeeded")
	}
	if _, err := n.Adder(KindCompressor, [][]Wire{{a}, {b}}, NoWire); err == nil {
		t.Error("Adder of kind compressor succeeded")
	}
}

func TestConstantsAndInputs(t *testing.T) {
	n := New("k")
	one, zero := n.Constant(true), n.Constant(false)
	if n.Constant(true) != one || one == zero {
		t.Errorf("constant wires not shared: one=%d zero=%d", one, zero)
	}
	if v, ok := n.IsConstant(one); !ok || !v {
		t.Errorf("IsConstant(one) = %v, %v", v, ok)
	}
	x := n.Input("x")
	if n.Input("x") != x {
		t.Error("Input(x) created a second wire")
	}
	if _, ok := n.IsConstant(x); ok {
		t.Error("IsConstant(x) = true")
	}
	n.Input("a")
	if got := strings.Join(n.Inputs(), ","); got != "x,a" {
		t.Errorf("Inputs() = %q, want creation order", got)
	}
	if _, err := n.Evaluate(map[string]bool{"nope": true}); err == nil {
		t.Error("Evaluate with an unknown input succeeded")
	}
}

func TestWriteTo(t *testing.T) {
	n := New("listing")
	a, b, c := n.Input("a"), n.Input("b"), n.Input("c")
	if _, err := n.Compressor(fullAdder, [][]Wire{{a, b, c}}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := n.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"netlist listing", "Compressor_3_2_uid0", "X0=[a,b,c]", "compressor: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteTo output missing %q:\n%s", want, out)
		}
	}
	st := n.Stats()
	if st.ByShape["Compressor_3_2"] != 1 || st.ByKind[KindCompressor] != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}
