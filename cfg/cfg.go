// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cfg builds the intra-function control-flow graph of a Sierra
// function: maximal basic blocks over the function's statement slice,
// wired by unconditional, conditional and fallthrough edges.
package cfg

import (
	"strconv"

	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// EdgeType discriminates how control reaches an edge's destination.
type EdgeType int

const (
	EdgeUnconditional EdgeType = iota
	EdgeConditionalTrue
	EdgeConditionalFalse
	EdgeFallthrough
)

func (t EdgeType) String() string {
	switch t {
	case EdgeUnconditional:
		return "unconditional"
	case EdgeConditionalTrue:
		return "conditional_true"
	case EdgeConditionalFalse:
		return "conditional_false"
	case EdgeFallthrough:
		return "fallthrough"
	}
	return "unknown"
}

// Edge is a control transfer between two statement offsets. Source and
// Destination are absolute offsets; Destination is always the start
// offset of a block in the same function.
type Edge struct {
	Source      int
	Destination int
	Type        EdgeType
}

// BasicBlock is a maximal run of contiguous statements: only its last
// statement may branch, and only its first statement may be a branch
// target (except at the function entry).
type BasicBlock struct {
	StartOffset int
	// EndOffset is the inclusive offset of the terminating statement,
	// or -1 when the block runs into the next one.
	EndOffset  int
	Statements []*sierra.Statement
	Edges      []*Edge
}

func newBasicBlock(start int) *BasicBlock {
	return &BasicBlock{StartOffset: start, EndOffset: -1}
}

// Name derives the display name of the block from its start offset.
func (b *BasicBlock) Name() string {
	return "bb_" + strconv.Itoa(b.StartOffset)
}

// Equal reports block identity; two blocks are the same iff their start
// offsets are.
func (b *BasicBlock) Equal(other *BasicBlock) bool {
	return other != nil && b.StartOffset == other.StartOffset
}

// Graph is the control-flow graph of one function.
type Graph struct {
	FunctionName string
	StartOffset  int
	Blocks       []*BasicBlock

	statements []*sierra.Statement
	byStart    map[int]*BasicBlock
}

// New builds the CFG of a function from its statement slice. start is
// the function's entry offset (the offset of statements[0]).
func New(functionName string, statements []*sierra.Statement, start int) *Graph {
	g := &Graph{
		FunctionName: functionName,
		StartOffset:  start,
		statements:   statements,
		byStart:      make(map[int]*BasicBlock),
	}
	g.build()
	return g
}

// delimitations computes the offsets that open and close basic blocks:
// every branch target and every branch successor opens a block; every
// return and every branching invocation closes one.
func (g *Graph) delimitations() (starts, ends map[int]bool) {
	starts = make(map[int]bool)
	ends = make(map[int]bool)
	for _, st := range g.statements {
		switch gen := st.Gen.(type) {
		case *sierra.Return:
			ends[st.Offset] = true
		case *sierra.Invocation:
			for _, br := range gen.Branches {
				if idx, ok := br.Target.(sierra.StatementIdx); ok {
					starts[st.Offset+1] = true
					starts[int(idx)] = true
					ends[st.Offset] = true
				}
			}
		}
	}
	return starts, ends
}

func (g *Graph) build() {
	if len(g.statements) == 0 {
		return
	}
	starts, ends := g.delimitations()

	var cur *BasicBlock
	for i, st := range g.statements {
		if cur == nil || starts[st.Offset] {
			if cur != nil {
				g.addBlock(cur)
			}
			cur = newBasicBlock(st.Offset)
		}
		cur.Statements = append(cur.Statements, st)
		if ends[st.Offset] {
			cur.EndOffset = st.Offset
		}

		if st.ConditionalBranch {
			_, edge1, edge2 := BranchTargets(st)
			switch {
			case edge2 >= 0:
				// Two-way branch: the true edge goes to the first
				// target, the false edge to the successor of the
				// second.
				cur.Edges = append(cur.Edges,
					&Edge{Source: st.Offset, Destination: edge1, Type: EdgeConditionalTrue},
					&Edge{Source: st.Offset, Destination: edge2 + 1, Type: EdgeConditionalFalse})
			case edge1 >= 0:
				cur.Edges = append(cur.Edges,
					&Edge{Source: st.Offset, Destination: edge1, Type: EdgeUnconditional})
			}
		} else if i < len(g.statements)-1 {
			if _, isReturn := st.Gen.(*sierra.Return); !isReturn && starts[g.statements[i+1].Offset] {
				cur.Edges = append(cur.Edges,
					&Edge{Source: st.Offset, Destination: st.Offset + 1, Type: EdgeFallthrough})
			}
		}
	}
	g.addBlock(cur)
}

func (g *Graph) addBlock(b *BasicBlock) {
	g.Blocks = append(g.Blocks, b)
	g.byStart[b.StartOffset] = b
}

// Block returns the block starting at the given offset, or nil.
func (g *Graph) Block(start int) *BasicBlock {
	return g.byStart[start]
}

// Entry returns the block holding the function's entry statement.
func (g *Graph) Entry() *BasicBlock {
	return g.byStart[g.StartOffset]
}

// Children returns every block reached by one of b's edges, in edge order.
func (g *Graph) Children(b *BasicBlock) []*BasicBlock {
	var children []*BasicBlock
	for _, e := range b.Edges {
		if c := g.byStart[e.Destination]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// Parents returns every block with an edge into b.
func (g *Graph) Parents(b *BasicBlock) []*BasicBlock {
	var parents []*BasicBlock
	for _, cand := range g.Blocks {
		for _, e := range cand.Edges {
			if e.Destination == b.StartOffset {
				parents = append(parents, cand)
				break
			}
		}
	}
	return parents
}

// BranchTargets reports the branching shape of a statement: whether one
// of its branches falls through, and up to two statement-target offsets
// (-1 when absent). For a fallthrough branch paired with a statement
// target, the second offset is the statement's own offset, so that the
// false edge lands on offset+1.
func BranchTargets(st *sierra.Statement) (hasFallthrough bool, edge1, edge2 int) {
	edge1, edge2 = -1, -1
	inv, ok := st.Gen.(*sierra.Invocation)
	if !ok {
		return false, edge1, edge2
	}
	var targets []int
	for _, br := range inv.Branches {
		switch t := br.Target.(type) {
		case sierra.Fallthrough:
			hasFallthrough = true
		case sierra.StatementIdx:
			targets = append(targets, int(t))
		}
	}
	if len(targets) > 0 {
		edge1 = targets[0]
	}
	if hasFallthrough {
		if edge1 >= 0 {
			edge2 = st.Offset
		}
	} else if len(targets) > 1 {
		edge2 = targets[1]
	}
	return hasFallthrough, edge1, edge2
}
