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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-bitheap/batch"
	"github.com/ajroetker/go-bitheap/bitheap"
	"github.com/ajroetker/go-bitheap/compress"
	"github.com/ajroetker/go-bitheap/report"
	"github.com/ajroetker/go-bitheap/target"
)

// Generator compresses a set of heap description files.
type Generator struct {
	Inputs      []string // description files
	Target      string   // device name, see target.AvailableTargets
	Pipeline    bool
	MultiStage  bool
	Final3      bool
	GenericOnly bool
	Format      string // "text" or "json"
	Netlist     bool
	Workers     int
	Verbose     bool

	Stdout io.Writer
	Stderr io.Writer
}

// Run loads the descriptions, compresses them and writes one report per heap.
// Failures of individual heaps are reported together once every heap ran.
func (g *Generator) Run() error {
	if g.Format != "text" && g.Format != "json" {
		return fmt.Errorf("unknown format %q", g.Format)
	}
	if len(g.Inputs) == 0 {
		return errors.New("no input files")
	}

	profile, err := g.profile()
	if err != nil {
		return err
	}
	heaps, err := g.load()
	if err != nil {
		return err
	}

	var opts []compress.Option
	if g.Verbose {
		opts = append(opts, compress.WithVerbose(g.Stderr))
	}
	engine, err := compress.New(profile, opts...)
	if err != nil {
		return err
	}
	if g.Verbose {
		fmt.Fprintf(g.Stderr, "profile: %s\n", profile)
		fmt.Fprintf(g.Stderr, "catalog: %d compressors, device GPC families %v\n",
			engine.Catalog().Len(), engine.Catalog().Families())
	}

	pool := batch.NewPool(g.Workers)
	defer pool.Close()
	outcomes := batch.NewRunner(engine, pool).Run(heaps)

	var errs []error
	for i, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", g.Inputs[i], o.Err))
			continue
		}
		if err := g.write(o.Result); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func (g *Generator) profile() (*target.Profile, error) {
	dev, err := target.ByName(g.Target)
	if err != nil {
		return nil, err
	}
	mode := target.SingleStage
	if g.MultiStage {
		mode = target.TimingDriven
	}
	height := 2
	if g.Final3 {
		height = 3
	}
	return target.NewProfile(dev,
		target.WithPipelining(g.Pipeline),
		target.WithMode(mode),
		target.WithTargetOptimizations(!g.GenericOnly),
		target.WithFinalAdderHeight(height))
}

// load parses the description files concurrently, keeping the input order.
func (g *Generator) load() ([]*bitheap.Heap, error) {
	heaps := make([]*bitheap.Heap, len(g.Inputs))
	var eg errgroup.Group
	if g.Workers > 0 {
		eg.SetLimit(g.Workers)
	}
	for i, path := range g.Inputs {
		eg.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			h, err := bitheap.ParseDescription(f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			heaps[i] = h
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return heaps, nil
}

func (g *Generator) write(res *compress.Result) error {
	var err error
	switch g.Format {
	case "json":
		err = report.WriteJSON(g.Stdout, res)
	default:
		err = report.WriteText(g.Stdout, res)
	}
	if err != nil {
		return err
	}
	if g.Netlist && res.Netlist != nil {
		if _, err := res.Netlist.WriteTo(g.Stdout); err != nil {
			return err
		}
	}
	return nil
}
