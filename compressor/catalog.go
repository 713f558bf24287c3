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

package compressor

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/ajroetker/go-bitheap/bitheap"
	"github.com/ajroetker/go-bitheap/target"
)

// basic lists the generic compressors as (input heights LSB first, area).
var basic = []struct {
	heights []int
	area    float64
}{
	{[]int{6}, 3},
	{[]int{4, 1}, 2},
	{[]int{5}, 2},
	{[]int{3, 1}, 2},
	{[]int{4}, 2},
	{[]int{3, 2}, 2},
	{[]int{3}, 1},
}

// gpcs lists the slice GPCs per family, input heights LSB first. Each uses
// one slice (4 LUTs and the carry chain) and produces 5 bits.
var gpcs = map[target.Family][][]int{
	target.FamilyXilinx: {
		{7, 0, 6},
		{5, 1, 6},
		{3, 2, 6},
		{5, 2, 3, 1},
		{5, 1, 4, 1},
		{7, 0, 4, 1},
		{7, 1, 1, 2},
	},
}

const (
	gpcOutputs = 5
	gpcArea    = 4
)

// Catalog is an ordered, read-only list of compressors: descending
// efficiency, ties kept in insertion order.
type Catalog struct {
	specs []*Spec
}

// NewCatalog validates specs, sets their delays from t (when t is not nil) and
// orders them by descending efficiency with a stable sort. It fails with
// bitheap.ErrInvalidCatalog when no spec can reduce a column of height two or
// more.
func NewCatalog(t target.Target, specs ...*Spec) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no compressors", bitheap.ErrInvalidCatalog)
	}
	if !lo.SomeBy(specs, func(s *Spec) bool { return s.Efficiency() > 0 }) {
		return nil, fmt.Errorf("%w: no compressor of %v reduces a multi-bit column",
			bitheap.ErrInvalidCatalog, lo.Map(specs, func(s *Spec, _ int) string { return s.String() }))
	}

	ordered := make([]*Spec, len(specs))
	for i, s := range specs {
		c := *s
		c.heights = slices.Clone(s.heights)
		c.outHeights = slices.Clone(s.outHeights)
		if t != nil {
			c.delay = specDelay(t, &c)
		}
		ordered[i] = &c
	}
	slices.SortStableFunc(ordered, func(a, b *Spec) int {
		return cmp.Compare(b.Efficiency(), a.Efficiency())
	})
	return &Catalog{specs: ordered}, nil
}

func specDelay(t target.Target, s *Spec) float64 {
	switch s.kind {
	case DeviceGPC:
		return t.TableDelay(t.LUTInputs(), 2, true) + t.AdderDelay(s.OutputBits())
	default:
		return t.TableDelay(s.InputBits(), s.OutputBits(), true)
	}
}

// Default builds the catalog for a profile: the generic compressors, plus the
// GPCs of the target family when the profile allows device primitives.
func Default(p *target.Profile) (*Catalog, error) {
	var specs []*Spec
	for _, b := range basic {
		s, err := NewGeneric(b.heights, b.area)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	if p.UseGPCs() {
		for _, h := range gpcs[p.Target.Family()] {
			s, err := NewDeviceGPC(p.Target.Family(), h, gpcOutputs, gpcArea)
			if err != nil {
				return nil, err
			}
			specs = append(specs, s)
		}
	}
	return NewCatalog(p.Target, specs...)
}

// Available returns the compressors usable under a profile, best first.
func Available(p *target.Profile) ([]*Spec, error) {
	c, err := Default(p)
	if err != nil {
		return nil, err
	}
	return c.Compressors(), nil
}

// Compressors returns the specs in catalog order.
func (c *Catalog) Compressors() []*Spec {
	return slices.Clone(c.specs)
}

// Len returns the number of compressors.
func (c *Catalog) Len() int { return len(c.specs) }

// At returns the i-th compressor in catalog order.
func (c *Catalog) At(i int) *Spec { return c.specs[i] }

// MaxSpan returns the widest input span of the catalog.
func (c *Catalog) MaxSpan() int {
	return lo.MaxBy(c.specs, func(a, b *Spec) bool { return a.Span() > b.Span() }).Span()
}

// Families returns the device families of the GPCs in the catalog.
func (c *Catalog) Families() []target.Family {
	gpc := lo.Filter(c.specs, func(s *Spec, _ int) bool { return s.kind == DeviceGPC })
	return lo.Uniq(lo.Map(gpc, func(s *Spec, _ int) target.Family { return s.family }))
}
