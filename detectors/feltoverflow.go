// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detectors

import (
	"fmt"
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// FeltOverflowDetector flags arithmetic and storage writes that could
// wrap around the felt252 prime. Confidence is High when an operand is
// a felt252 parameter of the enclosing function, Low otherwise.
type FeltOverflowDetector struct{}

func (*FeltOverflowDetector) ID() string   { return "felt_overflow" }
func (*FeltOverflowDetector) Name() string { return "Felt Overflow" }
func (*FeltOverflowDetector) Description() string {
	return "Detects the potential felt overflows."
}
func (*FeltOverflowDetector) Category() Category { return Security }

func (*FeltOverflowDetector) Detect(d *decompiler.Decompiler) string {
	d.DecompileFunctionsPrototypes()

	var out strings.Builder
	for _, fn := range d.Functions {
		if fn.Type == decompiler.FunctionTypeCore {
			continue
		}

		feltParams := make(map[string]bool)
		for _, arg := range fn.FeltArguments() {
			feltParams[arg.Name] = true
		}

		for _, st := range fn.Statements {
			inv, ok := st.Gen.(*sierra.Invocation)
			if !ok {
				continue
			}
			name := inv.Libfunc.NameWithFallback(d.DeclaredLibfuncsNames)
			if _, arith := decompiler.MatchArithmetic(name); !arith && !decompiler.IsStorageWrite(name) {
				continue
			}

			var tainted []string
			for _, arg := range inv.Args {
				if feltParams[arg.Name()] {
					tainted = append(tainted, arg.Name())
				}
			}

			if len(tainted) > 0 {
				out.WriteString(fmt.Sprintf(
					"%s: parameters %s could be used to trigger a felt overflow/underflow (Confidence: %s)\n",
					fn.Name(), strings.Join(tainted, ", "), highConfidence()))
			} else {
				out.WriteString(fmt.Sprintf(
					"%s: method %s could be used to trigger a felt overflow/underflow (Confidence: Low)\n",
					fn.Name(), boldName(truncateName(name))))
			}
		}
	}
	return out.String()
}

// truncateName keeps long generic libfunc names readable.
func truncateName(name string) string {
	if len(name) > 80 {
		return name[:38] + "..." + name[len(name)-38:]
	}
	return name
}
