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

package schedule

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ajroetker/go-bitheap/bitheap"
	"github.com/ajroetker/go-bitheap/netlist"
	"github.com/ajroetker/go-bitheap/target"
)

func timingProfile(t *testing.T) *target.Profile {
	t.Helper()
	t.Setenv(target.SingleStageEnv, "")
	p, err := target.NewProfile(target.Generic(), target.WithPipelining(true), target.WithMode(target.TimingDriven))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestStageOfTimingDriven(t *testing.T) {
	// Generic at 400MHz: 2.5ns cycles, 1ns stages, so two stages per cycle
	// ending at 1.5ns and 2.5ns.
	s := New(timingProfile(t))
	tests := []struct {
		a    bitheap.Arrival
		want int
	}{
		{bitheap.Arrival{}, 0},
		{bitheap.Arrival{Delay: 0.3e-9}, 0},
		{bitheap.Arrival{Delay: 1.0e-9}, 1},
		{bitheap.Arrival{Delay: 1.4e-9}, 1},
		{bitheap.Arrival{Delay: 2.0e-9}, 2},
		{bitheap.Arrival{Cycle: 1}, 2},
		{bitheap.Arrival{Cycle: 1, Delay: 1.2e-9}, 3},
		{bitheap.Arrival{Cycle: 3, Delay: 0.1e-9}, 6},
	}
	for _, tt := range tests {
		if got := s.StageOf(tt.a); got != tt.want {
			t.Errorf("StageOf(%v) = %d, want %d", tt.a, got, tt.want)
		}
	}
}

func TestStageOfSingleStage(t *testing.T) {
	p, err := target.NewProfile(target.Generic(), target.WithPipelining(true))
	if err != nil {
		t.Fatal(err)
	}
	s := New(p)
	for _, a := range []bitheap.Arrival{{}, {Cycle: 4, Delay: 2e-9}} {
		if got := s.StageOf(a); got != 0 {
			t.Errorf("StageOf(%v) = %d in single-stage mode, want 0", a, got)
		}
	}
}

func TestOrder(t *testing.T) {
	var verbose bytes.Buffer
	s := New(timingProfile(t), WithVerbose(&verbose))
	store := bitheap.NewStore(3)
	arrivals := []struct {
		column int
		a      bitheap.Arrival
	}{
		{0, bitheap.Arrival{Cycle: 1}},
		{0, bitheap.Arrival{Cycle: 1, Delay: 1.2e-9}},
		{1, bitheap.Arrival{Cycle: 1}},
		{1, bitheap.Arrival{Cycle: 2}},
		{2, bitheap.Arrival{Cycle: 1}},
	}
	for _, b := range arrivals {
		store.AddBit(b.column, 0, "x", b.a, netlist.NoWire, bitheap.Free)
	}

	plan := s.Order(store)
	want := Plan{Offset: 2, LastArrival: 2, MaxStage: 7}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("Order() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 1, 1}, store.Heights(0)); diff != "" {
		t.Errorf("Heights(0) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 0, 0}, store.Heights(1)); diff != "" {
		t.Errorf("Heights(1) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 0}, store.Heights(2)); diff != "" {
		t.Errorf("Heights(2) mismatch (-want +got):\n%s", diff)
	}
	if err := store.Check(); err != nil {
		t.Errorf("Check() = %v", err)
	}
	if !strings.Contains(verbose.String(), "timing-driven") {
		t.Errorf("verbose output = %q", verbose.String())
	}
}

func TestOrderEmpty(t *testing.T) {
	plan := New(timingProfile(t)).Order(bitheap.NewStore(4))
	if plan.MaxStage < 1 || plan.LastArrival != 0 {
		t.Errorf("Order(empty) = %+v", plan)
	}
}
