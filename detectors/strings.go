// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import (
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// StringsDetector surfaces every constant that decodes to a printable
// string, in encounter order, deduplicated.
type StringsDetector struct{}

func (*StringsDetector) ID() string   { return "strings" }
func (*StringsDetector) Name() string { return "Strings" }
func (*StringsDetector) Description() string {
	return "Detects strings in the decompiled Sierra code."
}
func (*StringsDetector) Category() Category { return Informational }

func (*StringsDetector) Detect(d *decompiler.Decompiler) string {
	d.DecompileFunctionsPrototypes()

	var extracted []string
	seen := make(map[string]bool)
	for _, fn := range d.Functions {
		for _, st := range fn.Statements {
			inv, ok := st.Gen.(*sierra.Invocation)
			if !ok {
				continue
			}
			name := inv.Libfunc.NameWithFallback(d.DeclaredLibfuncsNames)
			value, ok := decompiler.MatchConst(name)
			if !ok {
				continue
			}
			decoded, ok := decompiler.DecodeConst(value)
			if !ok || seen[decoded] {
				continue
			}
			seen[decoded] = true
			extracted = append(extracted, decoded)
		}
	}
	return strings.Join(extracted, "\n")
}
