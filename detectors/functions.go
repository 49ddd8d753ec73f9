// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import (
	"fmt"
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
)

// FunctionsDetector inventories the program's functions with their
// inferred kinds.
type FunctionsDetector struct{}

func (*FunctionsDetector) ID() string   { return "functions" }
func (*FunctionsDetector) Name() string { return "Functions names" }
func (*FunctionsDetector) Description() string {
	return "Returns the user-defined functions names."
}
func (*FunctionsDetector) Category() Category { return Informational }

func (*FunctionsDetector) Detect(d *decompiler.Decompiler) string {
	d.DecompileFunctionsPrototypes()

	var lines []string
	for _, fn := range d.Functions {
		lines = append(lines, fmt.Sprintf("%s : %s", fn.Type, fn.Name()))
	}
	return strings.Join(lines, "\n")
}
