// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decompiler reconstructs a readable, Cairo-like view of a
// Sierra program: declaration listings, function prototypes, and
// if/else-scoped pseudo-code recovered from each function's CFG.
package decompiler

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/FuzzingLabs/sierra-analyzer/cfg"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// Rendering colors. fatih/color honors the process-wide color.NoColor
// toggle, so the colorless output used by tests is byte-stable.
var (
	blue    = color.New(color.FgBlue).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	red     = color.New(color.FgRed).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
)

// Decompiler drives the program-to-pseudo-code pipeline and owns the
// state shared by the detectors: the analyzed functions and the
// declared-name arrays recorded for remote programs.
type Decompiler struct {
	Program   *sierra.Program
	Functions []*Function
	Verbose   bool

	// Names recorded in declaration order during the first rendering
	// pass; they back the id fallback for programs without debug names.
	DeclaredTypesNames    []string
	DeclaredLibfuncsNames []string

	indentation int
	printed     map[int]bool
	current     *Function
}

// New creates a decompiler for the program. Verbose disables the
// pattern-driven suppressions.
func New(program *sierra.Program, verbose bool) *Decompiler {
	return &Decompiler{Program: program, Verbose: verbose}
}

// Decompile renders the whole program: type declarations, libfunc
// declarations, then every function. useColor toggles terminal
// coloring; the toggle is process-wide, so parallel renderings must
// either agree on it or serialize.
func (d *Decompiler) Decompile(useColor bool) string {
	color.NoColor = !useColor

	// Reset per-run state so that repeated calls with identical flags
	// produce identical output.
	d.DeclaredTypesNames = nil
	d.DeclaredLibfuncsNames = nil
	d.printed = make(map[int]bool)

	types := d.decompileTypes()
	libfuncs := d.decompileLibfuncs()

	d.ensureFunctions()
	d.DecompileFunctionsPrototypes()

	functions := d.decompileFunctions()

	return types + "\n\n" + libfuncs + "\n\n" + functions
}

// decompileTypes renders the type-declaration section and records every
// long-id string for the remote-name fallback.
func (d *Decompiler) decompileTypes() string {
	lines := make([]string, len(d.Program.Types))
	for i, decl := range d.Program.Types {
		longID := decl.Long.String()
		d.DeclaredTypesNames = append(d.DeclaredTypesNames, fallbackName(decl.Long))

		line := fmt.Sprintf("type %s = %s", yellow(decl.ID.RefName()), longID)
		if info := decl.Info; info != nil {
			line += fmt.Sprintf(" [storable: %t, drop: %t, dup: %t, zero_sized: %t]",
				info.Storable, info.Droppable, info.Duplicatable, info.ZeroSized)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// decompileLibfuncs renders the libfunc-declaration section, recording
// long ids the same way.
func (d *Decompiler) decompileLibfuncs() string {
	lines := make([]string, len(d.Program.Libfuncs))
	for i, decl := range d.Program.Libfuncs {
		longID := decl.Long.String()
		d.DeclaredLibfuncsNames = append(d.DeclaredLibfuncsNames, fallbackName(decl.Long))
		lines[i] = fmt.Sprintf("libfunc %s = %s", blue(decl.ID.RefName()), longID)
	}
	return strings.Join(lines, "\n")
}

// fallbackName is the form recorded for id resolution: the bare family
// name when there are no generic arguments (the declaration display
// keeps its empty brackets, but felt252<> would read badly at call
// sites), else the full long id.
func fallbackName(long sierra.LongID) string {
	if len(long.Args) == 0 {
		return long.GenericID
	}
	return long.String()
}

// ensureFunctions populates the function list with offsets and
// statement slices, once.
func (d *Decompiler) ensureFunctions() {
	if len(d.Functions) > 0 || len(d.Program.Funcs) == 0 {
		return
	}
	d.setFunctionsOffsets()
	d.addStatementsToFunctions()
}

// setFunctionsOffsets assigns each function its statement span: start
// is the entry point, end is the next function's entry minus one, and
// the last function ends at the final statement.
func (d *Decompiler) setFunctionsOffsets() {
	for i, decl := range d.Program.Funcs {
		fn := NewFunction(decl)
		fn.StartOffset = decl.EntryPoint
		if i < len(d.Program.Funcs)-1 {
			fn.EndOffset = d.Program.Funcs[i+1].EntryPoint - 1
		} else {
			fn.EndOffset = len(d.Program.Statements) - 1
		}
		d.Functions = append(d.Functions, fn)
	}
}

// addStatementsToFunctions hands every function the statements within
// its inclusive span. Offsets are dense, so the span is a direct slice.
func (d *Decompiler) addStatementsToFunctions() {
	for _, fn := range d.Functions {
		if fn.StartOffset < 0 || fn.StartOffset >= len(d.Program.Statements) {
			continue
		}
		end := fn.EndOffset
		if end >= len(d.Program.Statements) {
			end = len(d.Program.Statements) - 1
		}
		fn.Statements = d.Program.Statements[fn.StartOffset : end+1]
	}
}

// DecompileFunctionsPrototypes renders every function prototype,
// recording the argument lists and classifying each function on the
// way. It is idempotent and safe for detectors to call on their own.
func (d *Decompiler) DecompileFunctionsPrototypes() string {
	d.ensureFunctions()
	lines := make([]string, len(d.Functions))
	for i, fn := range d.Functions {
		lines[i] = d.decompileFunctionPrototype(fn)
	}
	return strings.Join(lines, "\n")
}

func (d *Decompiler) decompileFunctionPrototype(fn *Function) string {
	decl := fn.Decl

	fn.Arguments = fn.Arguments[:0]
	params := make([]string, len(decl.Params))
	for i, p := range decl.Params {
		paramName := p.Var.Name()
		paramType := p.Type.NameWithFallback(d.DeclaredTypesNames)
		fn.Arguments = append(fn.Arguments, Argument{Name: paramName, Type: paramType})
		params[i] = fmt.Sprintf("%s: %s", magenta(paramName), yellow(paramType))
	}

	rets := make([]string, len(decl.RetTypes))
	for i, rt := range decl.RetTypes {
		rets[i] = magenta(rt.NameWithFallback(d.DeclaredTypesNames))
	}

	fn.Type = classifyFunction(decl.ID.Name(), d.Program.ABI)
	fn.Prototype = fmt.Sprintf("func %s (%s) -> (%s)",
		bold(decl.ID.Name()), strings.Join(params, ", "), strings.Join(rets, ", "))
	return fn.Prototype
}

// decompileFunctions renders every function body by walking its CFG.
func (d *Decompiler) decompileFunctions() string {
	for _, fn := range d.Functions {
		fn.CreateCFG()
	}

	rendered := make([]string, len(d.Functions))
	for i, fn := range d.Functions {
		d.current = fn

		var body strings.Builder
		for _, block := range fn.CFG.Blocks {
			d.indentation = 1
			body.WriteString(d.basicBlockRecursive(block))
		}

		comment := magenta(fmt.Sprintf("// Function %d", i+1))
		rendered[i] = fmt.Sprintf("%s\n%s {\n%s}", comment, fn.Prototype, body.String())
	}
	return strings.Join(rendered, "\n\n")
}

// basicBlockRecursive renders a block and recurses into its conditional
// edges, reconstructing if/else nesting. Convergent control flow is
// deduped through the printed-block set, which also bounds the walk on
// cyclic graphs.
func (d *Decompiler) basicBlockRecursive(block *cfg.BasicBlock) string {
	var out strings.Builder
	out.WriteString(d.basicBlockToString(block))

	for _, edge := range block.Edges {
		switch edge.Type {
		case cfg.EdgeConditionalTrue:
			d.indentation++
			if next := d.current.CFG.Block(edge.Destination); next != nil && !d.printed[next.StartOffset] {
				out.WriteString(d.basicBlockRecursive(next))
			}

		case cfg.EdgeConditionalFalse:
			if next := d.current.CFG.Block(edge.Destination); next != nil && !d.printed[next.StartOffset] {
				d.indentation--
				out.WriteString(strings.Repeat("\t", d.indentation) + "} else {\n")
				d.indentation++
				out.WriteString(d.basicBlockRecursive(next))
			}
			d.indentation--
			if out.Len() > 0 {
				out.WriteString(strings.Repeat("\t", d.indentation) + "}\n")
			}
		}
	}
	return out.String()
}

// basicBlockToString renders the statements of a single block at the
// current indentation. Blocks already rendered produce nothing.
func (d *Decompiler) basicBlockToString(block *cfg.BasicBlock) string {
	if d.printed[block.StartOffset] {
		return ""
	}
	d.printed[block.StartOffset] = true

	var out strings.Builder
	indent := strings.Repeat("\t", d.indentation)

	for _, st := range block.Statements {
		if st.ConditionalBranch {
			// Two-edge branches open an if scope. A lone statement
			// target (an unconditional jump) contributes only its
			// edge, no text.
			if len(block.Edges) == 2 {
				branch := AsConditionalBranch(st, d.DeclaredLibfuncsNames)
				out.WriteString(fmt.Sprintf("%sif (%s) {\n", indent, d.formatCondition(branch)))
			}
			continue
		}
		if line, ok := formatStatement(st, d.Verbose, d.DeclaredLibfuncsNames, d.DeclaredTypesNames); ok {
			out.WriteString(indent + line + "\n")
		}
	}
	return out.String()
}

// formatCondition renders the branch condition: a zero test reads as
// <arg> == 0, anything else keeps its call shape.
func (d *Decompiler) formatCondition(branch *ConditionalBranch) string {
	if IsZeroTest(branch.Function) && len(branch.Parameters) > 0 {
		return branch.Parameters[len(branch.Parameters)-1] + " == 0"
	}
	name := sierra.ReplaceTypeIDs(branch.Function, d.DeclaredTypesNames)
	return fmt.Sprintf("%s(%s) == 0", name, strings.Join(branch.Parameters, ", "))
}

// FilterFunctions retains only the functions whose prototype contains
// the given substring.
func (d *Decompiler) FilterFunctions(substring string) {
	var kept []*Function
	for _, fn := range d.Functions {
		if strings.Contains(fn.Prototype, substring) {
			kept = append(kept, fn)
		}
	}
	d.Functions = kept
}
