// Copyright 2024 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

package calltrace

// Extract runs the two post-replay passes the builder defers until the
// whole trace is final: depth assignment and child-index
// recomputation. Both need the finished tree (flatten-by-return can
// still be rewriting parent/child links mid-replay), so neither is
// safe to run incrementally from Step.
func (t *AnalyzedCallTrace) Extract() {
	t.computeDepths()
	t.recomputeChildIndices()
}

// computeDepths walks the tree from the root, skipping discarded
// (flattened-away) nodes, assigning each surviving node a Depth
// relative to its nearest MessageCall ancestor.
func (t *AnalyzedCallTrace) computeDepths() {
	if len(t.Nodes) == 0 {
		return
	}
	var walk func(id int, d Depth)
	walk = func(id int, d Depth) {
		node := &t.Nodes[id]
		if node.Discard {
			return
		}
		dCopy := d
		node.Depth = &dCopy
		for _, c := range node.Children {
			child := &t.Nodes[c.ID]
			if child.Discard {
				continue
			}
			next := d
			if c.Callsite.Edge.Kind == MessageCall {
				next.Message++
				next.IntraContract = 0
			} else {
				next.IntraContract++
			}
			walk(c.ID, next)
		}
	}
	walk(0, Depth{})
}

// recomputeChildIndices stamps each node with its own position among
// its parent's Children. Flatten-by-return appends flattened children
// out of their original call order, so this can't be maintained
// incrementally during the replay either.
func (t *AnalyzedCallTrace) recomputeChildIndices() {
	for i := range t.Nodes {
		parent := &t.Nodes[i]
		if parent.Discard {
			continue
		}
		for idx, c := range parent.Children {
			t.Nodes[c.ID].ChildIndex = idx
		}
	}
}
