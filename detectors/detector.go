// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package detectors hosts the analyses run over a decompiled program.
// A detector is a named, categorized capability producing textual
// findings; the registry returns fresh instances so each run starts
// from clean state.
package detectors

import (
	"fmt"
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
)

// Category tags the nature of a detector's findings.
type Category int

const (
	Informational Category = iota
	Security
)

func (c Category) String() string {
	if c == Security {
		return "Security"
	}
	return "Informational"
}

// Detector is one analysis over a decompiled program. Detect may
// mutate internal buffers across one invocation but not across
// invocations; the registry hands out fresh values.
type Detector interface {
	ID() string
	Name() string
	Description() string
	Category() Category
	Detect(d *decompiler.Decompiler) string
}

// All returns the ordered registry of detectors.
func All() []Detector {
	return []Detector{
		&FunctionsDetector{},
		&PrototypesDetector{},
		&StatisticsDetector{},
		&StringsDetector{},
		&L1HandlerDetector{},
		&FeltOverflowDetector{},
		&RoundingErrorDetector{},
		&ControlledLibraryCallDetector{},
		&InputsGeneratorDetector{},
	}
}

// RunAll runs the registry against the decompiler and formats the
// non-empty outputs:
//
//	[Category] Name
//	        - finding
//	        - ...
//
// When names is non-empty, only detectors with a matching id run.
func RunAll(d *decompiler.Decompiler, names []string) string {
	selected := make(map[string]bool, len(names))
	for _, n := range names {
		selected[strings.TrimSpace(n)] = true
	}

	var out strings.Builder
	for _, det := range All() {
		if len(selected) > 0 && !selected[det.ID()] {
			continue
		}
		result := det.Detect(d)
		if strings.TrimSpace(result) == "" {
			continue
		}
		var lines []string
		for _, line := range strings.Split(strings.TrimRight(result, "\n"), "\n") {
			lines = append(lines, "\t- "+line)
		}
		out.WriteString(fmt.Sprintf("[%s] %s\n%s\n\n",
			det.Category(), det.Name(), strings.Join(lines, "\n")))
	}
	return strings.TrimSpace(out.String())
}
