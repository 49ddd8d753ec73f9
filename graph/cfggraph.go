// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"fmt"
	"strings"

	"github.com/FuzzingLabs/sierra-analyzer/cfg"
	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
)

// CFGGraph renders the control-flow graphs of the given functions as a
// single digraph with one cluster subgraph per function. Each basic
// block becomes a node labelled with its raw statements; conditional
// edges are colored by branch direction.
func CFGGraph(functions []*decompiler.Function) string {
	var dot strings.Builder
	dot.WriteString("digraph {\n")
	dot.WriteString(fmt.Sprintf(
		"    graph [fontname=\"%s\", fontsize=%d, layout=\"%s\", newrank=%t, overlap=\"%s\"];\n",
		cfgGraphFontname, cfgGraphFontsize, cfgGraphLayout, cfgGraphNewrank, cfgGraphOverlap))
	dot.WriteString(fmt.Sprintf(
		"    node [color=\"%s\", fillcolor=\"%s\", fontname=\"%s\", margin=\"%s\", shape=\"%s\", style=\"%s\"];\n",
		cfgNodeColor, cfgNodeFillcolor, cfgNodeFontname, cfgNodeMargin, cfgNodeShape, cfgNodeStyle))
	dot.WriteString(fmt.Sprintf(
		"    edge [arrowsize=%g, fontname=\"%s\", labeldistance=%d, labelfontcolor=\"%s\", penwidth=%d];\n",
		cfgEdgeArrowsize, cfgEdgeFontname, cfgEdgeLabeldistance, cfgEdgeLabelfontcolor, cfgEdgePenwidth))

	for _, fn := range functions {
		fn.CreateCFG()
		writeFunctionCluster(&dot, fn)
	}

	dot.WriteString("}\n")
	return dot.String()
}

func writeFunctionCluster(dot *strings.Builder, fn *decompiler.Function) {
	name := fn.Name()
	dot.WriteString(fmt.Sprintf("    subgraph \"cluster_%s\" {\n", escape(name)))
	dot.WriteString(fmt.Sprintf("        label=\"%s\";\n", escape(name)))

	for _, block := range fn.CFG.Blocks {
		var label strings.Builder
		for _, st := range block.Statements {
			label.WriteString(escape(st.String()))
			label.WriteString(`\l`)
		}
		dot.WriteString(fmt.Sprintf("        \"%s\" [label=\"%s\"];\n",
			nodeID(name, block), label.String()))
	}
	for _, block := range fn.CFG.Blocks {
		for _, e := range block.Edges {
			dest := fn.CFG.Block(e.Destination)
			if dest == nil {
				continue
			}
			dot.WriteString(fmt.Sprintf("        \"%s\" -> \"%s\" [color=\"%s\"];\n",
				nodeID(name, block), nodeID(name, dest), edgeColor(e.Type)))
		}
	}
	dot.WriteString("    }\n")
}

// nodeID namespaces a block name by its function, keeping node ids
// unique across clusters.
func nodeID(functionName string, block *cfg.BasicBlock) string {
	return escape(functionName) + "@" + block.Name()
}

func edgeColor(t cfg.EdgeType) string {
	switch t {
	case cfg.EdgeConditionalTrue:
		return cfgEdgeColorTrue
	case cfg.EdgeConditionalFalse:
		return cfgEdgeColorFalse
	}
	return cfgEdgeColorPlain
}
