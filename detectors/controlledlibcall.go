// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import (
	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// ControlledLibraryCallDetector will report library calls whose class
// hash is reachable from user input. The call-site discovery and the
// formal/actual parameter pairing are in place; the taint propagation
// itself is not implemented yet, so the detector reports nothing.
type ControlledLibraryCallDetector struct{}

func (*ControlledLibraryCallDetector) ID() string   { return "controlled_library_call" }
func (*ControlledLibraryCallDetector) Name() string { return "Controlled library call" }
func (*ControlledLibraryCallDetector) Description() string {
	return "Detect library calls with a user controlled class hash."
}
func (*ControlledLibraryCallDetector) Category() Category { return Security }

func (*ControlledLibraryCallDetector) Detect(d *decompiler.Decompiler) string {
	d.DecompileFunctionsPrototypes()

	byName := make(map[string]*decompiler.Function, len(d.Functions))
	for _, fn := range d.Functions {
		byName[fn.Name()] = fn
	}

	for _, fn := range d.Functions {
		for _, st := range fn.Statements {
			inv, ok := st.Gen.(*sierra.Invocation)
			if !ok {
				continue
			}
			name := inv.Libfunc.NameWithFallback(d.DeclaredLibfuncsNames)
			callee, ok := decompiler.MatchUserFunction(name)
			if !ok {
				continue
			}
			target := byName[callee]
			if target == nil {
				continue
			}
			// Pair actuals with the callee's formals for the taint
			// walk.
			actuals := sierra.VarNames(inv.Args)
			n := len(actuals)
			if n > len(target.Arguments) {
				n = len(target.Arguments)
			}
			for i := 0; i < n; i++ {
				trackCallArgument(target.Arguments[i], actuals[i])
			}
		}
	}
	return ""
}

// trackCallArgument is the taint hook invoked for each formal/actual
// pair of a user call site.
// TODO: propagate taint from entry-point inputs to library_call_syscall
// class-hash operands.
func trackCallArgument(formal decompiler.Argument, actual string) {
	_ = formal
	_ = actual
}
