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

// Package schedule assigns the bits of a heap to compression stages.
//
// In target.SingleStage mode every bit goes to stage 0. In target.TimingDriven
// mode a clock cycle is split into StagesPerCycle stages of one compression
// delay each, aligned on the end of the cycle, and a bit goes to the stage its
// arrival falls into.
package schedule

import (
	"fmt"
	"io"

	"github.com/ajroetker/go-bitheap/bitheap"
	"github.com/ajroetker/go-bitheap/target"
)

// Plan is the stage range of one compression run.
type Plan struct {
	// Offset is the absolute stage of the soonest bit. It is subtracted from
	// every bit so that the first stage is 0.
	Offset int

	// LastArrival is the last stage receiving input bits.
	LastArrival int

	// MaxStage is the highest stage compressors may produce bits into: the
	// last arrival plus one stage per live bit, and at least three. Past the
	// last arrival a stage either places a compressor, which removes at least
	// one bit, or ends the run.
	MaxStage int
}

// Scheduler computes bit stages for a profile.
type Scheduler struct {
	profile *target.Profile
	verbose io.Writer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithVerbose prints scheduling decisions to w.
func WithVerbose(w io.Writer) Option {
	return func(s *Scheduler) {
		s.verbose = w
	}
}

// New creates a scheduler.
func New(p *target.Profile, opts ...Option) *Scheduler {
	s := &Scheduler{profile: p}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StageOf returns the absolute stage of a bit arriving at a.
func (s *Scheduler) StageOf(a bitheap.Arrival) int {
	if s.profile.Mode != target.TimingDriven || !s.profile.Pipelined {
		return 0
	}
	delay := s.profile.CompressionDelay()
	if delay <= 0 {
		return 0
	}
	perCycle := s.profile.StagesPerCycle()
	period := s.profile.ClockPeriod()

	// boundaries[i] = slack + i*delay; a bit belongs to the first stage whose
	// boundary its critical path does not exceed.
	slack := period - float64(perCycle)*delay
	stage := a.Cycle * perCycle
	if a.Delay > slack+float64(perCycle-1)*delay {
		return stage + perCycle
	}
	for i := range perCycle {
		if a.Delay > slack+float64(i)*delay {
			stage++
		}
	}
	return stage
}

// Order moves every live bit of store to its stage, shifted so that the
// soonest bit is in stage 0, and returns the resulting plan.
func (s *Scheduler) Order(store *bitheap.Store) Plan {
	ids := s.liveBits(store)
	if len(ids) == 0 {
		return Plan{MaxStage: 1}
	}

	stages := make([]int, len(ids))
	minStage, maxStage := s.StageOf(store.Bit(ids[0]).Arrival), 0
	for i, id := range ids {
		stages[i] = s.StageOf(store.Bit(id).Arrival)
		minStage = min(minStage, stages[i])
		maxStage = max(maxStage, stages[i])
	}
	for i, id := range ids {
		if st := stages[i] - minStage; st != store.Bit(id).Stage {
			store.Move(id, st)
		}
	}

	plan := Plan{
		Offset:      minStage,
		LastArrival: maxStage - minStage,
	}
	plan.MaxStage = plan.LastArrival + max(3, len(ids))
	if s.verbose != nil {
		fmt.Fprintf(s.verbose, "schedule: %s, %d bits, max height %d, stages [%d, %d] offset %d, max stage %d\n",
			s.profile.Mode, len(ids), store.MaxHeight(0), 0, plan.LastArrival, plan.Offset, plan.MaxStage)
	}
	return plan
}

func (s *Scheduler) liveBits(store *bitheap.Store) []bitheap.BitID {
	var ids []bitheap.BitID
	for c := range store.Width() {
		ids = append(ids, store.Live(c)...)
	}
	return ids
}
