// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graph serializes analysis results into Graphviz DOT text:
// one digraph of per-function subgraphs for control-flow graphs, and a
// strict digraph for the whole-program call graph. Rendering DOT to
// SVG is the caller's concern.
package graph

// Style constants for both graph families. Grouped here so the
// attribute surface stays in one place.
const (
	// Control-flow graphs.
	cfgGraphFontname = "Helvetica,Arial,sans-serif"
	cfgGraphFontsize = 20
	cfgGraphLayout   = "dot"
	cfgGraphNewrank  = true
	cfgGraphOverlap  = "scale"

	cfgNodeColor     = "#9E9E9E"
	cfgNodeFillcolor = "#F5F5F5"
	cfgNodeFontname  = "Helvetica,Arial,sans-serif"
	cfgNodeMargin    = "0.2"
	cfgNodeShape     = "rect"
	cfgNodeStyle     = "filled"

	cfgEdgeArrowsize      = 0.5
	cfgEdgeFontname       = "Helvetica,Arial,sans-serif"
	cfgEdgeLabeldistance  = 2
	cfgEdgeLabelfontcolor = "#00000080"
	cfgEdgePenwidth       = 2

	cfgEdgeColorTrue  = "#8BC34A"
	cfgEdgeColorFalse = "#C62828"
	cfgEdgeColorPlain = "#212121"

	// Call graphs.
	callgraphGraphFontname = "Helvetica,Arial,sans-serif"
	callgraphGraphFontsize = 20
	callgraphGraphLayout   = "dot"
	callgraphGraphRankdir  = "LR"
	callgraphGraphNewrank  = true

	callgraphNodeStyle    = "filled"
	callgraphNodeShape    = "rect"
	callgraphNodePencolor = "#00000044"
	callgraphNodeMargin   = "0.5,0.1"
	callgraphNodeFontname = "Helvetica,Arial,sans-serif"

	callgraphEdgeArrowsize      = 0.5
	callgraphEdgeFontname       = "Helvetica,Arial,sans-serif"
	callgraphEdgeLabeldistance  = 2
	callgraphEdgeLabelfontcolor = "#00000080"
	callgraphEdgePenwidth       = 2

	callgraphUserFunctionColor = "#95D2B3"
	callgraphLibfuncColor      = "#E0E0E0"
)
