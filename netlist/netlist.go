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

// Package netlist records the structure produced by a bit heap compression:
// primary inputs, constants, compressor instances and final adders, connected
// by single-bit wires.
//
// The netlist is the structural instantiation service of the compressor: the
// engine asks for an instance of a compressor or adder and gets back the wires
// of its outputs. Emitting a hardware description from it is left to callers;
// the package itself can only dump a readable listing and simulate the network
// with Evaluate.
package netlist

import (
	"fmt"
	"slices"
)

// Wire identifies a single-bit net.
type Wire int32

// NoWire is the absent wire, used for an unconnected carry-in.
const NoWire Wire = -1

// Kind categorizes netlist instances.
type Kind int

const (
	// KindInput is a primary input bit of the heap.
	KindInput Kind = iota

	// KindConstant drives a constant zero or one.
	KindConstant

	// KindCompressor is a compressor or generalized parallel counter.
	KindCompressor

	// KindAdder2 is a two-operand carry-propagate adder with carry-in.
	KindAdder2

	// KindAdder3 is a three-operand (ternary) adder.
	KindAdder3
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindConstant:
		return "constant"
	case KindCompressor:
		return "compressor"
	case KindAdder2:
		return "adder2"
	case KindAdder3:
		return "adder3"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape is the column geometry of a compressor: how many bits it reads from
// each input column and produces in each output column, LSB first.
type Shape interface {
	Name() string
	InputHeights() []int
	OutputHeights() []int
}

// Instance is one primitive of the netlist.
type Instance struct {
	// ID is the position of the instance in Netlist.Instances.
	ID int

	// Kind is the primitive category.
	Kind Kind

	// Name is unique within the netlist.
	Name string

	// Shape is set for compressors.
	Shape Shape

	// Inputs holds, for a compressor, the input wires of each column (LSB
	// first); for an adder, one row of wires per operand (LSB first).
	Inputs [][]Wire

	// Carry is the carry-in of an adder, NoWire if unused.
	Carry Wire

	// Outputs holds, for a compressor, the output wires of each column; for an
	// adder, a single row with the sum bits, LSB first.
	Outputs [][]Wire
}

type wireInfo struct {
	name   string
	driver int // instance ID, -1 for inputs and constants
	value  bool
}

// Netlist is a growing list of instances. Instances only read wires created
// before them, so creation order is a valid evaluation order.
type Netlist struct {
	Name      string
	Instances []*Instance

	wires  []wireInfo
	inputs map[string]Wire
	zero   Wire
	one    Wire
	nextID int
}

// New creates an empty netlist.
func New(name string) *Netlist {
	return &Netlist{
		Name:   name,
		inputs: make(map[string]Wire),
		zero:   NoWire,
		one:    NoWire,
	}
}

func (n *Netlist) newWire(name string, driver int) Wire {
	w := Wire(len(n.wires))
	n.wires = append(n.wires, wireInfo{name: name, driver: driver})
	return w
}

// NumWires returns the number of wires created so far.
func (n *Netlist) NumWires() int { return len(n.wires) }

// WireName returns the name of a wire.
func (n *Netlist) WireName(w Wire) string {
	if w == NoWire {
		return "-"
	}
	return n.wires[w].name
}

// Input returns the wire of a primary input, creating it on first use.
func (n *Netlist) Input(name string) Wire {
	if w, ok := n.inputs[name]; ok {
		return w
	}
	w := n.newWire(name, -1)
	n.inputs[name] = w
	return w
}

// Inputs returns the primary input names in creation order.
func (n *Netlist) Inputs() []string {
	names := make([]string, 0, len(n.inputs))
	for name := range n.inputs {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return int(n.inputs[a]) - int(n.inputs[b])
	})
	return names
}

// Constant returns the shared constant wire for v.
func (n *Netlist) Constant(v bool) Wire {
	p := &n.zero
	name := "'0'"
	if v {
		p = &n.one
		name = "'1'"
	}
	if *p == NoWire {
		*p = n.newWire(name, -1)
		n.wires[*p].value = v
	}
	return *p
}

// IsConstant reports whether w is one of the constant wires and its value.
func (n *Netlist) IsConstant(w Wire) (value, ok bool) {
	switch {
	case w == NoWire:
		return false, false
	case w == n.zero:
		return false, true
	case w == n.one:
		return true, true
	}
	return false, false
}

func (n *Netlist) addInstance(kind Kind, prefix string) *Instance {
	inst := &Instance{
		ID:    len(n.Instances),
		Kind:  kind,
		Name:  fmt.Sprintf("%s_uid%d", prefix, n.nextID),
		Carry: NoWire,
	}
	n.nextID++
	n.Instances = append(n.Instances, inst)
	return inst
}

func (n *Netlist) checkWires(ws []Wire) error {
	for _, w := range ws {
		if w < 0 || int(w) >= len(n.wires) {
			return fmt.Errorf("unknown wire %d", w)
		}
	}
	return nil
}

// Compressor instantiates a compressor. inputs[c] are the bits read from input
// column c; a column may hold fewer bits than the shape asks for, the missing
// inputs are tied to zero. It returns the output wires per output column.
func (n *Netlist) Compressor(shape Shape, inputs [][]Wire) ([][]Wire, error) {
	heights := shape.InputHeights()
	if len(inputs) > len(heights) {
		return nil, fmt.Errorf("compressor %s: %d input columns, shape has %d", shape.Name(), len(inputs), len(heights))
	}
	for c, col := range inputs {
		if len(col) > heights[c] {
			return nil, fmt.Errorf("compressor %s: %d bits in column %d, shape has %d", shape.Name(), len(col), c, heights[c])
		}
		if err := n.checkWires(col); err != nil {
			return nil, fmt.Errorf("compressor %s: %w", shape.Name(), err)
		}
	}
	outHeights := shape.OutputHeights()
	for c, h := range outHeights {
		if h > 1 {
			return nil, fmt.Errorf("compressor %s: output column %d has height %d, only single-row outputs are supported", shape.Name(), c, h)
		}
	}

	inst := n.addInstance(KindCompressor, shape.Name())
	inst.Shape = shape
	inst.Inputs = make([][]Wire, len(heights))
	for c := range inputs {
		inst.Inputs[c] = slices.Clone(inputs[c])
	}
	inst.Outputs = make([][]Wire, len(outHeights))
	for c, h := range outHeights {
		for range h {
			inst.Outputs[c] = append(inst.Outputs[c], n.newWire(fmt.Sprintf("%s_Out%d", inst.Name, c), inst.ID))
		}
	}
	return inst.Outputs, nil
}

// Adder instantiates a two- or three-operand adder over equally wide operands.
// The sum has the operand width: the carry-out is dropped.
func (n *Netlist) Adder(kind Kind, operands [][]Wire, cin Wire) ([]Wire, error) {
	want := 0
	switch kind {
	case KindAdder2:
		want = 2
	case KindAdder3:
		want = 3
	default:
		return nil, fmt.Errorf("adder: invalid kind %s", kind)
	}
	if len(operands) != want {
		return nil, fmt.Errorf("%s: %d operands, want %d", kind, len(operands), want)
	}
	width := len(operands[0])
	if width == 0 {
		return nil, fmt.Errorf("%s: empty operands", kind)
	}
	for i, op := range operands {
		if len(op) != width {
			return nil, fmt.Errorf("%s: operand %d has width %d, want %d", kind, i, len(op), width)
		}
		if err := n.checkWires(op); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
	}
	if cin != NoWire {
		if err := n.checkWires([]Wire{cin}); err != nil {
			return nil, fmt.Errorf("%s: carry-in: %w", kind, err)
		}
	}

	inst := n.addInstance(kind, "bitheapFinalAdd")
	inst.Carry = cin
	for _, op := range operands {
		inst.Inputs = append(inst.Inputs, slices.Clone(op))
	}
	out := make([]Wire, width)
	for i := range out {
		out[i] = n.newWire(fmt.Sprintf("%s_Out%d", inst.Name, i), inst.ID)
	}
	inst.Outputs = [][]Wire{out}
	return out, nil
}
