// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import (
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
)

// L1HandlerDetector lists the functions classified as L1 handlers,
// the entry points callable from L1 messages.
type L1HandlerDetector struct{}

func (*L1HandlerDetector) ID() string          { return "l1_handler" }
func (*L1HandlerDetector) Name() string        { return "L1 Handler" }
func (*L1HandlerDetector) Description() string { return "Detects the L1 handler functions." }
func (*L1HandlerDetector) Category() Category  { return Informational }

func (*L1HandlerDetector) Detect(d *decompiler.Decompiler) string {
	d.DecompileFunctionsPrototypes()

	var lines []string
	for _, fn := range d.Functions {
		if fn.Type != decompiler.FunctionTypeL1Handler {
			continue
		}
		if name := fn.Decl.ID.DebugName; name != "" {
			lines = append(lines, name)
		}
	}
	return strings.Join(lines, "\n")
}
