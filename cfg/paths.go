// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

// Paths enumerates every acyclic path from the entry block to a
// terminal block (one with no outgoing edges). Back-edges are broken by
// refusing to revisit a block already on the current path, so the walk
// terminates on cyclic graphs. The order is deterministic: depth-first,
// following edges in emission order.
func (g *Graph) Paths() [][]*BasicBlock {
	entry := g.Entry()
	if entry == nil {
		return nil
	}

	var paths [][]*BasicBlock
	onPath := make(map[int]bool)

	var walk func(b *BasicBlock, path []*BasicBlock)
	walk = func(b *BasicBlock, path []*BasicBlock) {
		path = append(path, b)
		onPath[b.StartOffset] = true
		defer delete(onPath, b.StartOffset)

		if len(b.Edges) == 0 {
			paths = append(paths, append([]*BasicBlock(nil), path...))
			return
		}
		for _, e := range b.Edges {
			next := g.Block(e.Destination)
			if next == nil || onPath[next.StartOffset] {
				continue
			}
			walk(next, path)
		}
	}
	walk(entry, nil)
	return paths
}
