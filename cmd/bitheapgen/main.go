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

// Command bitheapgen compresses bit heaps described in JSON files and reports
// the compressor tree built for each of them.
//
// Usage:
//
//	bitheapgen -input mult.json -target xilinx
//	bitheapgen -input a.json,b.json -target intel -pipeline -multistage -format json
//	bitheapgen -input mult.json -netlist -v
//
// A description file looks like:
//
//	{"name": "sum3", "lsb": 0, "msb": 9, "constant": "0x5",
//	 "bits": [{"signal": "X", "width": 8}, {"signal": "Y", "width": 8, "weight": 1}]}
//
// Each file is an independent operator instance: they are compressed in
// parallel and a failing instance does not prevent the others from being
// reported.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ajroetker/go-bitheap/target"
)

var (
	inputFiles = flag.String("input", "", "Comma-separated heap description files (required)")
	targetName = flag.String("target", "generic", "Target device ("+strings.Join(target.AvailableTargets(), ",")+")")
	pipeline   = flag.Bool("pipeline", false, "Pipeline the compressor tree at the target frequency")
	multiStage = flag.Bool("multistage", false, "Schedule bits by arrival time over several stages (needs -pipeline)")
	final3     = flag.Bool("final3", false, "Reduce to three rows for a ternary final adder")
	noTarget   = flag.Bool("generic_only", false, "Do not use device GPCs or native ternary adders")
	format     = flag.String("format", "text", "Report format: text or json")
	netlistOut = flag.Bool("netlist", false, "Print the netlist of every heap")
	workers    = flag.Int("workers", 0, "Number of parallel workers (default: GOMAXPROCS)")
	verbose    = flag.Bool("v", false, "Print compression decisions to stderr")
)

func main() {
	flag.Parse()

	if *inputFiles == "" {
		fmt.Fprintf(os.Stderr, "Error: -input flag is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	gen := &Generator{
		Inputs:      parseList(*inputFiles),
		Target:      *targetName,
		Pipeline:    *pipeline,
		MultiStage:  *multiStage,
		Final3:      *final3,
		GenericOnly: *noTarget,
		Format:      *format,
		Netlist:     *netlistOut,
		Workers:     *workers,
		Verbose:     *verbose,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
	if err := gen.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseList(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
