// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"fmt"
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
)

// CallGraph renders the whole-program call graph as a strict digraph.
// Functions and the user functions they call are styled as user nodes;
// libfunc callees get their own style; housekeeping libfuncs are left
// out. Duplicate nodes and edges are coalesced.
func CallGraph(functions []*decompiler.Function, declaredLibfuncs []string) string {
	var dot strings.Builder
	dot.WriteString("strict digraph G {\n")
	dot.WriteString(fmt.Sprintf(
		"    graph [fontname=\"%s\", fontsize=%d, layout=\"%s\", rankdir=\"%s\", newrank=%t];\n",
		callgraphGraphFontname, callgraphGraphFontsize, callgraphGraphLayout,
		callgraphGraphRankdir, callgraphGraphNewrank))
	dot.WriteString(fmt.Sprintf(
		"    node [style=\"%s\", shape=\"%s\", pencolor=\"%s\", margin=\"%s\", fontname=\"%s\"];\n",
		callgraphNodeStyle, callgraphNodeShape, callgraphNodePencolor,
		callgraphNodeMargin, callgraphNodeFontname))
	dot.WriteString(fmt.Sprintf(
		"    edge [arrowsize=%g, fontname=\"%s\", labeldistance=%d, labelfontcolor=\"%s\", penwidth=%d];\n",
		callgraphEdgeArrowsize, callgraphEdgeFontname, callgraphEdgeLabeldistance,
		callgraphEdgeLabelfontcolor, callgraphEdgePenwidth))

	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)
	node := func(name, fillcolor string) {
		if seenNodes[name] {
			return
		}
		seenNodes[name] = true
		dot.WriteString(fmt.Sprintf("   \"%s\" [fillcolor=\"%s\", style=\"filled\"];\n",
			escape(name), fillcolor))
	}
	edge := func(from, to string) {
		key := from + " -> " + to
		if seenEdges[key] {
			return
		}
		seenEdges[key] = true
		dot.WriteString(fmt.Sprintf("   \"%s\" -> \"%s\";\n", escape(from), escape(to)))
	}

	for _, fn := range functions {
		caller := fn.Name()
		node(caller, callgraphUserFunctionColor)

		for _, st := range fn.Statements {
			inv, ok := st.Gen.(*sierra.Invocation)
			if !ok {
				continue
			}
			callee := inv.Libfunc.NameWithFallback(declaredLibfuncs)

			if id, ok := decompiler.MatchUserFunction(callee); ok {
				node(id, callgraphUserFunctionColor)
				edge(caller, id)
				continue
			}
			if decompiler.IsIrrelevantForCallgraph(callee) {
				continue
			}
			node(callee, callgraphLibfuncColor)
			edge(caller, callee)
		}
	}

	dot.WriteString("}\n")
	return dot.String()
}

// escape quotes the characters DOT treats specially inside a quoted id.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
