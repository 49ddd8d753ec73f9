// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import "github.com/FuzzingLabs/sierra-analyzer/decompiler"

// PrototypesDetector lists the rendered function prototypes.
type PrototypesDetector struct{}

func (*PrototypesDetector) ID() string          { return "prototypes" }
func (*PrototypesDetector) Name() string        { return "Functions Prototypes" }
func (*PrototypesDetector) Description() string { return "Returns the functions prototypes." }
func (*PrototypesDetector) Category() Category  { return Informational }

func (*PrototypesDetector) Detect(d *decompiler.Decompiler) string {
	return d.DecompileFunctionsPrototypes()
}
