// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import (
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/symexec"
)

// InputsGeneratorDetector runs the symbolic executor over every
// function with felt252 parameters and reports the synthesized inputs.
type InputsGeneratorDetector struct{}

func (*InputsGeneratorDetector) ID() string   { return "inputs" }
func (*InputsGeneratorDetector) Name() string { return "Inputs generator" }
func (*InputsGeneratorDetector) Description() string {
	return "Generate inputs for a sierra function"
}
func (*InputsGeneratorDetector) Category() Category { return Informational }

func (*InputsGeneratorDetector) Detect(d *decompiler.Decompiler) string {
	d.DecompileFunctionsPrototypes()

	var out []string
	for _, fn := range d.Functions {
		if cases := symexec.GenerateTestCases(fn, d.DeclaredLibfuncsNames); cases != "" {
			out = append(out, cases)
		}
	}
	return strings.Join(out, "\n")
}
