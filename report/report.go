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

// Package report renders the outcome of a compression run, either as a text
// summary or as a JSON layout meant for plotting the heap stage by stage.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/go-bitheap/compress"
)

// Placement is one ledger entry of a stage.
type Placement struct {
	Column     int     `json:"column"`
	Compressor string  `json:"compressor"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Area       float64 `json:"area"`
}

// Stage is the heap at the start of a stage and the compressors placed in it.
type Stage struct {
	Stage      int         `json:"stage"`
	Heights    []int       `json:"heights"`
	Placements []Placement `json:"placements,omitempty"`
}

// Chunk is a run of result columns.
type Chunk struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	LSB  int    `json:"lsb"`
	MSB  int    `json:"msb"`
}

// Layout is the plottable summary of a compression run.
type Layout struct {
	Name            string         `json:"name"`
	LSB             int            `json:"lsb"`
	MSB             int            `json:"msb"`
	Stages          []Stage        `json:"stages"`
	Final           []int          `json:"final,omitempty"`
	Chunks          []Chunk        `json:"chunks,omitempty"`
	Compressors     int            `json:"compressors"`
	TotalArea       float64        `json:"totalArea"`
	Usage           map[string]int `json:"usage"`
	CompleteStage   int            `json:"completeStage"`
	Complete        bool           `json:"complete"`
	Dropped         int            `json:"dropped"`
	ConstantNonzero bool           `json:"constantNonzero"`
}

// NewLayout summarizes a result. Stages with placements but no snapshot, as
// left by a failed run, are still listed.
func NewLayout(res *compress.Result) *Layout {
	l := &Layout{
		Name:            res.Heap.Name,
		LSB:             res.Heap.LSB,
		MSB:             res.Heap.MSB,
		Final:           res.Final,
		Compressors:     res.Solution.Compressors(),
		TotalArea:       res.Solution.TotalArea(),
		Usage:           res.Usage,
		Dropped:         res.Dropped,
		ConstantNonzero: res.ConstantNonzero,
	}
	l.CompleteStage, l.Complete = res.Solution.Complete()

	byStage := lo.GroupBy(res.Solution.Placements(), func(p compress.Placement) int { return p.Stage })
	stages := lo.Uniq(append(
		lo.Map(res.Snapshots, func(s compress.Snapshot, _ int) int { return s.Stage }),
		slices.Collect(maps.Keys(byStage))...))
	slices.Sort(stages)
	for _, stage := range stages {
		st := Stage{Stage: stage}
		if snap, ok := lo.Find(res.Snapshots, func(s compress.Snapshot) bool { return s.Stage == stage }); ok {
			st.Heights = snap.Heights
		}
		st.Placements = lo.Map(byStage[stage], func(p compress.Placement, _ int) Placement {
			return Placement{
				Column:     p.Column,
				Compressor: p.Spec.String(),
				Name:       p.Spec.Name(),
				Count:      p.Count,
				Area:       p.Area(),
			}
		})
		l.Stages = append(l.Stages, st)
	}

	l.Chunks = lo.Map(res.Chunks, func(c compress.Chunk, _ int) Chunk {
		return Chunk{Name: c.Name, Kind: c.Kind.String(), LSB: c.LSB, MSB: c.MSB()}
	})
	return l
}

// WriteJSON writes the layout of res as indented JSON.
func WriteJSON(w io.Writer, res *compress.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewLayout(res)); err != nil {
		return fmt.Errorf("report %s: %w", res.Heap.Name, err)
	}
	return nil
}

type options struct {
	lang language.Tag
}

// Option configures the text report.
type Option func(*options)

// WithLanguage formats numbers and headings for tag. The default is English.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) {
		o.lang = tag
	}
}

// WriteText writes a readable summary of res: one block per stage with the
// column heights (MSB on the left, as the heap is usually drawn) and the
// compressors placed, then the usage and area totals.
func WriteText(w io.Writer, res *compress.Result, opts ...Option) error {
	o := options{lang: language.English}
	for _, opt := range opts {
		opt(&o)
	}
	p := message.NewPrinter(o.lang)
	title := cases.Title(o.lang)
	l := NewLayout(res)

	var sb strings.Builder
	p.Fprintf(&sb, "%s %s [%d:%d]\n", title.String("bit heap"), l.Name, l.MSB, l.LSB)
	for _, st := range l.Stages {
		p.Fprintf(&sb, "  %s %d: %s\n", title.String("stage"), st.Stage, drawHeights(st.Heights))
		for _, pl := range st.Placements {
			p.Fprintf(&sb, "    column %d: %d x %s (area %.2f)\n", pl.Column, pl.Count, pl.Compressor, pl.Area)
		}
	}
	if l.Final != nil {
		p.Fprintf(&sb, "  %s: %s\n", title.String("final adder input"), drawHeights(l.Final))
	}
	for _, ch := range l.Chunks {
		p.Fprintf(&sb, "  %s [%d:%d] %s\n", ch.Name, ch.MSB, ch.LSB, ch.Kind)
	}

	p.Fprintf(&sb, "%s:\n", title.String("compressor usage"))
	for _, name := range slices.Sorted(maps.Keys(l.Usage)) {
		p.Fprintf(&sb, "  %-24s %d\n", name, l.Usage[name])
	}
	p.Fprintf(&sb, "%s: %d, %s: %.2f\n",
		title.String("compressors"), l.Compressors, title.String("total area"), l.TotalArea)
	if l.Complete {
		p.Fprintf(&sb, "%s %d\n", title.String("reduced at stage"), l.CompleteStage)
	}
	if l.Dropped > 0 {
		p.Fprintf(&sb, "%d bits dropped past the MSB\n", l.Dropped)
	}
	if !l.ConstantNonzero {
		p.Fprintf(&sb, "all constant bits are zero\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// drawHeights prints column heights MSB first.
func drawHeights(heights []int) string {
	parts := make([]string, len(heights))
	for c, h := range heights {
		parts[len(heights)-1-c] = fmt.Sprint(h)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
