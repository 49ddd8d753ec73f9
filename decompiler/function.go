// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decompiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/cfg"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// FunctionType classifies a function by its role in the contract.
type FunctionType int

const (
	FunctionTypeCore FunctionType = iota
	FunctionTypeExternal
	FunctionTypeView
	FunctionTypePrivate
	FunctionTypeConstructor
	FunctionTypeEvent
	FunctionTypeStorage
	FunctionTypeWrapper
	FunctionTypeAbiCallContract
	FunctionTypeAbiLibraryCall
	FunctionTypeL1Handler
	FunctionTypeLoop
)

var functionTypeNames = [...]string{
	"Core",
	"External",
	"View",
	"Private",
	"Constructor",
	"Event",
	"Storage",
	"Wrapper",
	"AbiCallContract",
	"AbiLibraryCall",
	"L1Handler",
	"Loop",
}

func (t FunctionType) String() string {
	if int(t) < len(functionTypeNames) {
		return functionTypeNames[t]
	}
	return "Unknown"
}

// Argument is a named function parameter with its resolved type name.
type Argument struct {
	Name string
	Type string
}

// Function is a program function under analysis: the declaration plus
// the fields inferred while decompiling.
type Function struct {
	Decl *sierra.FuncDeclaration

	// Statement span, both ends inclusive.
	StartOffset int
	EndOffset   int

	Statements []*sierra.Statement
	CFG        *cfg.Graph
	Prototype  string
	Type       FunctionType
	Arguments  []Argument
}

// NewFunction wraps a declaration; offsets and statements are filled in
// by the decompiler's offset pass.
func NewFunction(decl *sierra.FuncDeclaration) *Function {
	return &Function{Decl: decl, StartOffset: -1, EndOffset: -1}
}

// Name returns the function's display name.
func (f *Function) Name() string { return f.Decl.ID.Name() }

// CreateCFG builds the function's control-flow graph if not built yet.
func (f *Function) CreateCFG() {
	if f.CFG == nil {
		f.CFG = cfg.New(f.Name(), f.Statements, f.StartOffset)
	}
}

// FeltArguments returns the function's felt252 parameters.
func (f *Function) FeltArguments() []Argument {
	var args []Argument
	for _, a := range f.Arguments {
		if a.Type == "felt252" {
			args = append(args, a)
		}
	}
	return args
}

var loopFunctionPattern = regexp.MustCompile(`\[expr[0-9]+\]`)

// classifyFunction infers a FunctionType from the function name and, when
// available, the contract ABI. Name shape decides the compiler-generated
// kinds; the ABI decides the user-facing entry-point kinds.
func classifyFunction(name string, abi *sierra.ABI) FunctionType {
	switch {
	case strings.HasPrefix(name, "core::"):
		return FunctionTypeCore
	case loopFunctionPattern.MatchString(name):
		return FunctionTypeLoop
	case strings.Contains(name, "__l1_handler"):
		return FunctionTypeL1Handler
	case strings.Contains(name, "__wrapper__"):
		return FunctionTypeWrapper
	case strings.Contains(name, "__member_module_") || strings.Contains(name, "ContractMemberState"):
		return FunctionTypeStorage
	case strings.Contains(name, "LibraryDispatcherImpl"):
		return FunctionTypeAbiLibraryCall
	case strings.Contains(name, "DispatcherImpl"):
		return FunctionTypeAbiCallContract
	case strings.Contains(name, "::emit_event") || strings.Contains(name, "EventEmitter"):
		return FunctionTypeEvent
	}
	if kind, ok := abi.Kind(lastPathSegment(name)); ok {
		switch kind {
		case sierra.EntryPointConstructor:
			return FunctionTypeConstructor
		case sierra.EntryPointL1Handler:
			return FunctionTypeL1Handler
		case sierra.EntryPointView:
			return FunctionTypeView
		case sierra.EntryPointExternal:
			return FunctionTypeExternal
		case sierra.EntryPointEvent:
			return FunctionTypeEvent
		case sierra.EntryPointStorage:
			return FunctionTypeStorage
		}
	}
	return FunctionTypePrivate
}

func lastPathSegment(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

// ConditionalBranch is the logical view of a branching invocation used
// by the if-rendering: the resolved libfunc name, the argument names,
// and the two edge offsets.
type ConditionalBranch struct {
	Function    string
	Parameters  []string
	Edge1Offset int
	Edge2Offset int
	Fallthrough bool
}

// AsConditionalBranch views st as a conditional branch, resolving the
// libfunc name through the declared-names fallback. It returns nil for
// non-branching statements.
func AsConditionalBranch(st *sierra.Statement, declaredLibfuncs []string) *ConditionalBranch {
	if !st.ConditionalBranch {
		return nil
	}
	inv, ok := st.Gen.(*sierra.Invocation)
	if !ok {
		return nil
	}
	hasFallthrough, edge1, edge2 := cfg.BranchTargets(st)
	return &ConditionalBranch{
		Function:    inv.Libfunc.NameWithFallback(declaredLibfuncs),
		Parameters:  sierra.VarNames(inv.Args),
		Edge1Offset: edge1,
		Edge2Offset: edge2,
		Fallthrough: hasFallthrough,
	}
}

// formatStatement renders a statement as pseudo-code. The second result
// is false when the statement is suppressed (housekeeping, drops and
// redundant copies in non-verbose mode).
func formatStatement(st *sierra.Statement, verbose bool, declaredLibfuncs, declaredTypes []string) (string, bool) {
	switch gen := st.Gen.(type) {
	case *sierra.Return:
		return red("return") + " (" + strings.Join(sierra.VarNames(gen.Vars), ", ") + ")", true

	case *sierra.Invocation:
		name := gen.Libfunc.NameWithFallback(declaredLibfuncs)
		if !isFunctionAllowed(name, verbose) {
			return "", false
		}

		params := sierra.VarNames(gen.Args)
		results := sierra.VarNames(gen.Results())
		assigned := strings.Join(results, ", ")

		// A store_temp whose destination equals its source is noise;
		// only the verbose output keeps it.
		if storeTempPattern.MatchString(name) && assigned == strings.Join(params, ", ") && !verbose {
			return "", false
		}

		return formatInvocation(name, assigned, params, verbose, declaredTypes), true
	}
	return "", false
}

// formatInvocation rewrites a libfunc invocation into its idiomatic
// form, falling back to dst = name(args) for anything unrecognized.
func formatInvocation(name, assigned string, params []string, verbose bool, declaredTypes []string) string {
	// Resolve [<n>] tokens left in remote libfunc names.
	name = sierra.ReplaceTypeIDs(name, declaredTypes)
	paramsStr := strings.Join(params, ", ")

	// User-defined calls keep their call shape in every mode.
	if m := functionCallPattern.FindStringSubmatch(name); m != nil {
		if assigned != "" {
			return fmt.Sprintf("%s = %s(%s)", assigned, blue(m[1]), paramsStr)
		}
		return fmt.Sprintf("%s(%s)", blue(m[1]), paramsStr)
	}

	if verbose {
		if assigned == "" {
			return fmt.Sprintf("%s(%s)", blue(name), paramsStr)
		}
		return fmt.Sprintf("%s = %s(%s)", assigned, blue(name), paramsStr)
	}

	// v1, v2 = dup<felt252>(v1) reads better as v2 = v1.
	if dupPattern.MatchString(name) {
		if first, second, ok := strings.Cut(assigned, ", "); ok {
			return fmt.Sprintf("%s = %s", second, first)
		}
	}

	for _, re := range variableAssignmentPatterns {
		if re.MatchString(name) && len(params) > 0 {
			return fmt.Sprintf("%s = %s", assigned, params[0])
		}
	}

	if m := newArrayPattern.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s = %s<%s>::%s()", assigned, blue("Array"), m[1], blue("new"))
	}

	if arrayAppendPattern.MatchString(name) && len(params) >= 2 {
		return fmt.Sprintf("%s = %s.%s(%s)", assigned, params[0], blue("append"), params[1])
	}

	if value, ok := MatchConst(name); ok {
		if decoded, ok := DecodeConst(value); ok {
			comment := green(fmt.Sprintf("// %q", decoded))
			return fmt.Sprintf("%s = %s %s", assigned, value, comment)
		}
		return fmt.Sprintf("%s = %s", assigned, value)
	}

	if op, ok := MatchArithmetic(name); ok {
		return fmt.Sprintf("%s = %s", assigned, joinOperands(params, op))
	}

	if assigned != "" {
		return fmt.Sprintf("%s = %s(%s)", assigned, blue(name), paramsStr)
	}
	return fmt.Sprintf("%s(%s)", blue(name), paramsStr)
}
