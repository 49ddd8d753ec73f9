// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import (
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// RoundingErrorDetector flags functions whose body invokes a safe-math
// wrapper: integer division truncates, so downstream math may round.
type RoundingErrorDetector struct{}

func (*RoundingErrorDetector) ID() string          { return "rounding" }
func (*RoundingErrorDetector) Name() string        { return "Rounding error detector" }
func (*RoundingErrorDetector) Description() string { return "Detect potential rounding errors." }
func (*RoundingErrorDetector) Category() Category  { return Security }

func (*RoundingErrorDetector) Detect(d *decompiler.Decompiler) string {
	d.DecompileFunctionsPrototypes()

	var findings []string
	for _, fn := range d.Functions {
		for _, st := range fn.Statements {
			inv, ok := st.Gen.(*sierra.Invocation)
			if !ok {
				continue
			}
			name := inv.Libfunc.NameWithFallback(d.DeclaredLibfuncsNames)
			if decompiler.IsSafeMath(name) {
				findings = append(findings,
					fn.Name()+" function could be vulnerable to a rounding error")
				break
			}
		}
	}
	return strings.Join(findings, "\n")
}
