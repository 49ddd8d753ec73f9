// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symexec synthesizes function inputs by symbolic execution: it
// enumerates acyclic CFG paths, encodes the integer fragment of each
// path as SMT constraints, and extracts satisfying assignments for the
// felt252 parameters.
//
// The encoder models a small fragment on purpose: duplications,
// constant loads, zero tests and add/sub/mul. Everything else is
// unconstrained, so a witness is a candidate input, not a proof.
package symexec

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/aclements/go-z3/z3"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// Engine wraps a solver whose lifetime spans one path: constraints and
// models must not outlive it.
type Engine struct {
	ctx    *z3.Context
	solver *z3.Solver
}

// NewEngine creates a solver bound to the given context.
func NewEngine(ctx *z3.Context) *Engine {
	return &Engine{ctx: ctx, solver: z3.NewSolver(ctx)}
}

// LoadConstraints asserts a batch of constraints.
func (e *Engine) LoadConstraints(constraints []z3.Bool) {
	for _, c := range constraints {
		e.solver.Assert(c)
	}
}

// AddConstraint asserts a single constraint.
func (e *Engine) AddConstraint(c z3.Bool) {
	e.solver.Assert(c)
}

// Check reports satisfiability of the asserted constraints.
func (e *Engine) Check() (bool, error) {
	return e.solver.Check()
}

// Model returns the current model; valid only after a sat Check.
func (e *Engine) Model() *z3.Model {
	return e.solver.Model()
}

// pathEncoding is the constraint view of one straight-line path.
type pathEncoding struct {
	ctx  *z3.Context
	sort z3.Sort
	vars map[string]z3.Int

	constraints []z3.Bool
	// zeroTests indexes into constraints: the v = 0 assertions whose
	// complements produce the extra witnesses.
	zeroTests []int
}

func newPathEncoding(ctx *z3.Context) *pathEncoding {
	return &pathEncoding{
		ctx:  ctx,
		sort: ctx.IntSort(),
		vars: make(map[string]z3.Int),
	}
}

// variable returns the integer variable for a display name, creating
// it on first use. Variables are unbounded integers keyed by name.
func (p *pathEncoding) variable(name string) z3.Int {
	if v, ok := p.vars[name]; ok {
		return v
	}
	v := p.ctx.Const(name, p.sort).(z3.Int)
	p.vars[name] = v
	return v
}

// encodeStatement contributes the statement's constraint, if the
// encoder models its libfunc. Unknown libfuncs contribute nothing.
func (p *pathEncoding) encodeStatement(st *sierra.Statement, declaredLibfuncs []string) {
	inv, ok := st.Gen.(*sierra.Invocation)
	if !ok {
		return
	}
	name := inv.Libfunc.NameWithFallback(declaredLibfuncs)
	args := sierra.VarNames(inv.Args)
	results := sierra.VarNames(inv.Results())

	switch {
	case decompiler.IsZeroTest(name):
		if len(args) >= 1 {
			zero := p.ctx.FromInt(0, p.sort).(z3.Int)
			p.zeroTests = append(p.zeroTests, len(p.constraints))
			p.constraints = append(p.constraints, p.variable(args[0]).Eq(zero))
		}

	case decompiler.IsDup(name):
		if len(results) >= 2 {
			p.constraints = append(p.constraints,
				p.variable(results[1]).Eq(p.variable(results[0])))
		}

	default:
		if value, ok := decompiler.MatchConst(name); ok {
			// Constants beyond 64 bits are skipped, not encoded.
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil || len(results) < 1 {
				return
			}
			lit := p.ctx.FromBigInt(new(big.Int).SetUint64(n), p.sort).(z3.Int)
			p.constraints = append(p.constraints, p.variable(results[0]).Eq(lit))
			return
		}
		op, ok := decompiler.MatchArithmetic(name)
		if !ok || len(args) < 2 || len(results) < 1 {
			return
		}
		a, b := p.variable(args[0]), p.variable(args[1])
		dst := p.variable(results[0])
		switch op {
		case "+":
			p.constraints = append(p.constraints, dst.Eq(a.Add(b)))
		case "-":
			p.constraints = append(p.constraints, dst.Eq(a.Sub(b)))
		case "*":
			p.constraints = append(p.constraints, dst.Eq(a.Mul(b)))
		}
	}
}

// nonZeroTestConstraints returns every constraint that is not a zero
// test.
func (p *pathEncoding) nonZeroTestConstraints() []z3.Bool {
	isZero := make(map[int]bool, len(p.zeroTests))
	for _, i := range p.zeroTests {
		isZero[i] = true
	}
	var out []z3.Bool
	for i, c := range p.constraints {
		if !isZero[i] {
			out = append(out, c)
		}
	}
	return out
}

// GenerateTestCases produces one witness per satisfiable path of the
// function, plus one complement witness per zero test along the path
// (exercising the non-zero branch). Unsatisfiable or unknown paths are
// reported once as "non solvable". The result is empty for functions
// without felt252 parameters.
func GenerateTestCases(fn *decompiler.Function, declaredLibfuncs []string) string {
	feltArgs := fn.FeltArguments()
	if len(feltArgs) == 0 {
		return ""
	}

	fn.CreateCFG()
	paths := fn.CFG.Paths()

	var out []string
	seen := make(map[string]bool)
	emit := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, path := range paths {
		// One context per path; its lifetime covers every constraint
		// and model derived from it.
		ctx := z3.NewContext(z3.NewContextConfig())
		enc := newPathEncoding(ctx)

		// Declare the felt252 parameters up front so unconstrained
		// ones still evaluate in the model.
		for _, arg := range feltArgs {
			enc.variable(arg.Name)
		}
		for _, block := range path {
			for _, st := range block.Statements {
				enc.encodeStatement(st, declaredLibfuncs)
			}
		}

		engine := NewEngine(ctx)
		engine.LoadConstraints(enc.constraints)
		if sat, err := engine.Check(); err != nil || !sat {
			emit("non solvable")
		} else {
			emit(witness(engine.Model(), enc, feltArgs))
		}

		// The complement of each zero test yields an input driving
		// the corresponding non-zero branch.
		for _, idx := range enc.zeroTests {
			sibling := NewEngine(ctx)
			sibling.LoadConstraints(enc.nonZeroTestConstraints())
			sibling.AddConstraint(enc.constraints[idx].Not())
			if sat, err := sibling.Check(); err != nil || !sat {
				emit("non solvable")
				continue
			}
			emit(witness(sibling.Model(), enc, feltArgs))
		}
	}
	return strings.Join(out, "\n")
}

// witness formats the model's assignment of the felt252 parameters.
func witness(model *z3.Model, enc *pathEncoding, feltArgs []decompiler.Argument) string {
	parts := make([]string, len(feltArgs))
	for i, arg := range feltArgs {
		value := model.Eval(enc.variable(arg.Name), true)
		parts[i] = fmt.Sprintf("%s: %v", arg.Name, value)
	}
	return strings.Join(parts, ", ")
}
