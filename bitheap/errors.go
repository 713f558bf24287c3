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
	"errors"
	"fmt"
)

// Synthesis failures. All of them are fatal for the operator instance being
// compressed: the heap state is deterministic, so a retry with the same inputs
// reproduces the same failure.
var (
	// ErrInvalidCatalog is returned when no compressor of a catalog can reduce
	// a column of height two or more.
	ErrInvalidCatalog = errors.New("invalid compressor catalog")

	// ErrCompressorExhaustion is returned when a stage makes no progress over a
	// full catalog sweep while columns still exceed the final adder height.
	ErrCompressorExhaustion = errors.New("compressor exhaustion")

	// ErrIncompleteReduction is returned when the final adder is requested on a
	// heap that still has a column higher than three.
	ErrIncompleteReduction = errors.New("incomplete reduction")

	// ErrStageOverflow is returned when a compressor would produce bits into a
	// stage past the scheduled maximum.
	ErrStageOverflow = errors.New("stage overflow")
)

// SynthesisError locates a synthesis failure inside a bit heap.
// Stage and Column are -1 when they do not apply.
type SynthesisError struct {
	Heap   string
	Stage  int
	Column int
	Err    error
}

func (e *SynthesisError) Error() string {
	switch {
	case e.Stage >= 0 && e.Column >= 0:
		return fmt.Sprintf("bitheap %s: stage %d, column %d: %v", e.Heap, e.Stage, e.Column, e.Err)
	case e.Stage >= 0:
		return fmt.Sprintf("bitheap %s: stage %d: %v", e.Heap, e.Stage, e.Err)
	case e.Column >= 0:
		return fmt.Sprintf("bitheap %s: column %d: %v", e.Heap, e.Column, e.Err)
	default:
		return fmt.Sprintf("bitheap %s: %v", e.Heap, e.Err)
	}
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Errorf builds a SynthesisError wrapping err with a formatted detail message.
func Errorf(heap string, stage, column int, err error, format string, args ...any) *SynthesisError {
	return &SynthesisError{
		Heap:   heap,
		Stage:  stage,
		Column: column,
		Err:    fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)),
	}
}
