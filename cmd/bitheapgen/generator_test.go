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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ajroetker/go-bitheap/target"
)

const sum3 = `{
  "name": "sum3", "lsb": 0, "msb": 5,
  "bits": [
    {"signal": "X", "width": 4},
    {"signal": "Y", "width": 4},
    {"signal": "Z", "width": 4}
  ]
}`

const mult4 = `{
  "name": "mult4", "lsb": 0, "msb": 7,
  "bits": [
    {"signal": "p0", "width": 4, "weight": 0},
    {"signal": "p1", "width": 4, "weight": 1},
    {"signal": "p2", "width": 4, "weight": 2},
    {"signal": "p3", "width": 4, "weight": 3}
  ]
}`

func writeFiles(t *testing.T, files map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestGeneratorText(t *testing.T) {
	t.Setenv(target.SingleStageEnv, "")
	var stdout, stderr bytes.Buffer
	gen := &Generator{
		Inputs:  writeFiles(t, map[string]string{"sum3.json": sum3, "mult4.json": mult4}),
		Target:  "xilinx",
		Format:  "text",
		Netlist: true,
		Verbose: true,
		Stdout:  &stdout,
		Stderr:  &stderr,
	}
	if err := gen.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"Bit Heap sum3", "Bit Heap mult4", "netlist mult4", "bitheapFinalAdd"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(stderr.String(), "device GPC families [xilinx]") {
		t.Errorf("verbose output missing catalog summary:\n%s", stderr.String())
	}
}

func TestGeneratorJSON(t *testing.T) {
	t.Setenv(target.SingleStageEnv, "")
	var stdout bytes.Buffer
	gen := &Generator{
		Inputs:     writeFiles(t, map[string]string{"mult4.json": mult4}),
		Target:     "generic",
		Pipeline:   true,
		MultiStage: true,
		Final3:     true,
		Format:     "json",
		Workers:    2,
		Stdout:     &stdout,
		Stderr:     &bytes.Buffer{},
	}
	if err := gen.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	var layout struct {
		Name     string `json:"name"`
		Complete bool   `json:"complete"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &layout); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if layout.Name != "mult4" || !layout.Complete {
		t.Errorf("layout = %+v", layout)
	}
}

func TestGeneratorPartialFailure(t *testing.T) {
	t.Setenv(target.SingleStageEnv, "")
	paths := writeFiles(t, map[string]string{"sum3.json": sum3})
	var stdout bytes.Buffer
	gen := &Generator{
		Inputs: append(paths, filepath.Join(t.TempDir(), "missing.json")),
		Target: "generic",
		Format: "text",
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	}
	if err := gen.Run(); err == nil {
		t.Error("Run() with a missing file succeeded")
	}
}

func TestGeneratorErrors(t *testing.T) {
	paths := writeFiles(t, map[string]string{"sum3.json": sum3, "bad.json": `{"name": 3}`})
	tests := []struct {
		name string
		gen  Generator
	}{
		{"no inputs", Generator{Target: "generic", Format: "text"}},
		{"bad format", Generator{Inputs: paths, Target: "generic", Format: "yaml"}},
		{"bad target", Generator{Inputs: paths, Target: "asic", Format: "text"}},
		{"multistage without pipeline", Generator{Inputs: paths, Target: "generic", Format: "text", MultiStage: true}},
		{"bad description", Generator{Inputs: paths, Target: "generic", Format: "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(target.SingleStageEnv, "")
			gen := tt.gen
			gen.Stdout, gen.Stderr = &bytes.Buffer{}, &bytes.Buffer{}
			if err := gen.Run(); err == nil {
				t.Error("Run() succeeded")
			}
		})
	}
}

func TestParseList(t *testing.T) {
	got := parseList(" a.json, ,b.json,")
	if strings.Join(got, "|") != "a.json|b.json" {
		t.Errorf("parseList() = %q", got)
	}
}
