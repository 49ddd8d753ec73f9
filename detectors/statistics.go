// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import (
	"fmt"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
)

// StatisticsDetector counts the program's declarations.
type StatisticsDetector struct{}

func (*StatisticsDetector) ID() string   { return "statistics" }
func (*StatisticsDetector) Name() string { return "Statistics" }
func (*StatisticsDetector) Description() string {
	return "Returns the functions statistics."
}
func (*StatisticsDetector) Category() Category { return Informational }

func (*StatisticsDetector) Detect(d *decompiler.Decompiler) string {
	return fmt.Sprintf("Libfuncs: %d\nTypes: %d\nFunctions: %d",
		len(d.Program.Libfuncs), len(d.Program.Types), len(d.Program.Funcs))
}
