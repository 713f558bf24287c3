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
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Values holds the simulated value of every wire.
type Values []bool

// Get returns the value of w; NoWire reads as zero.
func (v Values) Get(w Wire) bool {
	if w == NoWire {
		return false
	}
	return v[w]
}

// Evaluate simulates the netlist. Primary inputs missing from inputs read as
// zero; unknown input names are an error.
func (n *Netlist) Evaluate(inputs map[string]bool) (Values, error) {
	vals := make(Values, len(n.wires))
	for name, v := range inputs {
		w, ok := n.inputs[name]
		if !ok {
			return nil, fmt.Errorf("netlist %s: unknown input %q", n.Name, name)
		}
		vals[w] = v
	}
	if n.one != NoWire {
		vals[n.one] = true
	}

	for _, inst := range n.Instances {
		switch inst.Kind {
		case KindCompressor:
			sum := 0
			for c, col := range inst.Inputs {
				for _, w := range col {
					if vals[w] {
						sum += 1 << c
					}
				}
			}
			for c, col := range inst.Outputs {
				for _, w := range col {
					vals[w] = (sum>>c)&1 == 1
				}
			}
			if sum>>len(inst.Outputs) != 0 {
				return nil, fmt.Errorf("netlist %s: %s overflows its %d outputs", n.Name, inst.Name, len(inst.Outputs))
			}

		case KindAdder2, KindAdder3:
			carry := 0
			if vals.Get(inst.Carry) {
				carry = 1
			}
			for i, w := range inst.Outputs[0] {
				s := carry
				for _, op := range inst.Inputs {
					if vals[op[i]] {
						s++
					}
				}
				vals[w] = s&1 == 1
				carry = s >> 1
			}

		default:
			return nil, fmt.Errorf("netlist %s: cannot evaluate %s instance %s", n.Name, inst.Kind, inst.Name)
		}
	}
	return vals, nil
}

// Stats summarizes a netlist.
type Stats struct {
	Wires int

	// ByKind counts instances per kind.
	ByKind map[Kind]int

	// ByShape counts compressor instances per shape name.
	ByShape map[string]int
}

// Stats counts the instances of the netlist.
func (n *Netlist) Stats() Stats {
	st := Stats{
		Wires:   len(n.wires),
		ByKind:  make(map[Kind]int),
		ByShape: make(map[string]int),
	}
	for _, inst := range n.Instances {
		st.ByKind[inst.Kind]++
		if inst.Shape != nil {
			st.ByShape[inst.Shape.Name()]++
		}
	}
	return st
}

// WriteTo writes a readable listing of the netlist, one instance per line.
func (n *Netlist) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "netlist %s: %d wires, %d instances\n", n.Name, len(n.wires), len(n.Instances))
	for _, inst := range n.Instances {
		fmt.Fprintf(&sb, "  %-40s %-10s", inst.Name, inst.Kind)
		for c, col := range inst.Inputs {
			fmt.Fprintf(&sb, " X%d=[%s]", c, n.joinWires(col))
		}
		if inst.Carry != NoWire {
			fmt.Fprintf(&sb, " Cin=%s", n.WireName(inst.Carry))
		}
		sb.WriteString(" ->")
		for c, col := range inst.Outputs {
			fmt.Fprintf(&sb, " R%d=[%s]", c, n.joinWires(col))
		}
		sb.WriteByte('\n')
	}
	st := n.Stats()
	for _, k := range slices.Sorted(maps.Keys(st.ByKind)) {
		fmt.Fprintf(&sb, "  %s: %d\n", k, st.ByKind[k])
	}
	m, err := io.WriteString(w, sb.String())
	return int64(m), err
}

func (n *Netlist) joinWires(ws []Wire) string {
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = n.WireName(w)
	}
	return strings.Join(names, ",")
}
