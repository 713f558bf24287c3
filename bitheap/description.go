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
	"encoding/json"
	"fmt"
	"io"
	"math/big"
)

// Description is the JSON form of a Heap:
//
//	{
//	  "name": "mult4",
//	  "lsb": 0, "msb": 7,
//	  "constant": "0x10",
//	  "bits": [
//	    {"signal": "pp0", "weight": 0, "width": 4},
//	    {"signal": "pp1", "weight": 1, "width": 4, "cycle": 0, "delay": 1.2e-9}
//	  ]
//	}
//
// A bit entry with a width greater than one adds an unsigned signal.
type Description struct {
	Name     string            `json:"name"`
	LSB      int               `json:"lsb"`
	MSB      int               `json:"msb"`
	Constant string            `json:"constant,omitempty"`
	Bits     []TermDescription `json:"bits"`
}

// TermDescription is one entry of Description.Bits.
type TermDescription struct {
	Signal string  `json:"signal"`
	Weight int     `json:"weight"`
	Width  int     `json:"width,omitempty"`
	Cycle  int     `json:"cycle,omitempty"`
	Delay  float64 `json:"delay,omitempty"`
}

// ParseDescription decodes a JSON heap description and builds the Heap.
func ParseDescription(r io.Reader) (*Heap, error) {
	var d Description
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode heap description: %w", err)
	}
	return d.Heap()
}

// Heap builds the Heap described by d.
func (d *Description) Heap() (*Heap, error) {
	h, err := NewHeap(d.Name, d.LSB, d.MSB)
	if err != nil {
		return nil, err
	}
	if d.Constant != "" {
		v, ok := new(big.Int).SetString(d.Constant, 0)
		if !ok {
			return nil, fmt.Errorf("bitheap %s: invalid constant %q", d.Name, d.Constant)
		}
		h.AddConstant(v, d.LSB)
	}
	for _, t := range d.Bits {
		if t.Width > 1 {
			err = h.AddSignal(t.Signal, t.Width, t.Weight, t.Cycle, t.Delay)
		} else {
			err = h.AddBit(t.Signal, t.Weight, t.Cycle, t.Delay)
		}
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}
