// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sierra

import (
	"strconv"
	"strings"
)

// GenStatement is the statement sum type: a Return or an Invocation.
// Every analysis drives itself by type-switching over it.
type GenStatement interface {
	isStatement()
}

// Return carries the variable references handed back to the caller.
type Return struct {
	Vars []VarRef
}

// Invocation applies a libfunc to arguments and continues through one
// or more branches.
type Invocation struct {
	Libfunc  SymbolID
	Args     []VarRef
	Branches []BranchInfo
}

func (*Return) isStatement()     {}
func (*Invocation) isStatement() {}

// BranchInfo is one continuation of an invocation: where control goes
// and which result variables the branch binds.
type BranchInfo struct {
	Target  BranchTarget
	Results []VarRef
}

// BranchTarget is either Fallthrough or an absolute statement index.
type BranchTarget interface {
	isBranchTarget()
}

// Fallthrough continues at the next statement.
type Fallthrough struct{}

// StatementIdx jumps to an absolute statement offset.
type StatementIdx int

func (Fallthrough) isBranchTarget()  {}
func (StatementIdx) isBranchTarget() {}

// Results returns the result variables of the first branch, the ones an
// assignment-style rendering binds.
func (inv *Invocation) Results() []VarRef {
	if len(inv.Branches) == 0 {
		return nil
	}
	return inv.Branches[0].Results
}

// Statement is a program statement annotated with its absolute offset
// and a precomputed conditional-branch flag.
type Statement struct {
	Gen    GenStatement
	Offset int

	// ConditionalBranch is set when any branch targets a statement
	// index, i.e. the statement has branching behavior.
	ConditionalBranch bool
}

// NewStatement wraps gen with its offset and computes the branch flag.
func NewStatement(gen GenStatement, offset int) *Statement {
	s := &Statement{Gen: gen, Offset: offset}
	if inv, ok := gen.(*Invocation); ok {
		for _, b := range inv.Branches {
			if _, ok := b.Target.(StatementIdx); ok {
				s.ConditionalBranch = true
				break
			}
		}
	}
	return s
}

// String reconstructs the raw textual-Sierra form of the statement,
// used for CFG node labels.
func (s *Statement) String() string {
	switch st := s.Gen.(type) {
	case *Return:
		return "return(" + rawVarList(st.Vars) + ")"
	case *Invocation:
		var b strings.Builder
		b.WriteString(st.Libfunc.Name())
		b.WriteString("(" + rawVarList(st.Args) + ")")
		if len(st.Branches) == 1 {
			if _, ok := st.Branches[0].Target.(Fallthrough); ok {
				b.WriteString(" -> (" + rawVarList(st.Branches[0].Results) + ")")
				return b.String()
			}
		}
		b.WriteString(" {")
		for _, br := range st.Branches {
			switch t := br.Target.(type) {
			case Fallthrough:
				b.WriteString(" fallthrough(" + rawVarList(br.Results) + ")")
			case StatementIdx:
				b.WriteString(" " + strconv.Itoa(int(t)) + "(" + rawVarList(br.Results) + ")")
			}
		}
		b.WriteString(" }")
		return b.String()
	}
	return ""
}

func rawVarList(vars []VarRef) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.raw()
	}
	return strings.Join(parts, ", ")
}
