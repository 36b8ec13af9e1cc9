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

package ast

// StatementVisitor exposes one hook per statement-kind group §4.3 cares
// about; everything that isn't singled out falls to VisitOtherStatement.
// Kept separate from the walking logic below (a leaf-visitor / walker
// trait pair) so the dense per-node-kind protocol the schema has doesn't
// collapse into one mega-switch.
type StatementVisitor interface {
	VisitBlock(n *Node)
	VisitIfStatement(n *Node)
	VisitWhileStatement(n *Node)
	VisitDoWhileStatement(n *Node)
	VisitForStatement(n *Node)
	VisitTryStatement(n *Node)
	VisitInlineAssembly(n *Node)
	VisitOtherStatement(n *Node)
}

// Walker orchestrates the recursion for each statement kind, calling
// into a StatementVisitor's hooks and then descending into children per
// §4.3's rules (Block/UncheckedBlock descend without emitting; the
// other compound kinds emit via their hook and then descend into their
// sub-blocks).
type Walker struct {
	Visitor StatementVisitor
}

func NewWalker(v StatementVisitor) *Walker { return &Walker{Visitor: v} }

// WalkStatement dispatches n to the matching hook and descends into its
// sub-statements per §4.3.
func (w *Walker) WalkStatement(n *Node) {
	if n == nil {
		return
	}
	switch n.NodeType {
	case "Block", "UncheckedBlock":
		w.Visitor.VisitBlock(n)
		for _, stmt := range n.FieldArray("statements") {
			w.WalkStatement(stmt)
		}
	case "IfStatement":
		w.Visitor.VisitIfStatement(n)
		if body, ok := n.Field("trueBody"); ok {
			w.WalkStatement(body)
		}
		if els, ok := n.Field("falseBody"); ok {
			w.WalkStatement(els)
		}
	case "WhileStatement":
		w.Visitor.VisitWhileStatement(n)
		if body, ok := n.Field("body"); ok {
			w.WalkStatement(body)
		}
	case "DoWhileStatement":
		w.Visitor.VisitDoWhileStatement(n)
		if body, ok := n.Field("body"); ok {
			w.WalkStatement(body)
		}
	case "ForStatement":
		w.Visitor.VisitForStatement(n)
		if body, ok := n.Field("body"); ok {
			w.WalkStatement(body)
		}
	case "TryStatement":
		w.Visitor.VisitTryStatement(n)
		for _, clause := range n.FieldArray("clauses") {
			if block, ok := clause.Field("block"); ok {
				w.WalkStatement(block)
			}
		}
	case "InlineAssembly":
		w.Visitor.VisitInlineAssembly(n)
	default:
		w.Visitor.VisitOtherStatement(n)
	}
}

// WalkBody walks every top-level statement in a function/modifier body
// block (the entry point callers use instead of WalkStatement directly,
// since a function's own Block must descend without emitting a unit for
// itself).
func (w *Walker) WalkBody(body *Node) {
	if body == nil {
		return
	}
	w.WalkStatement(body)
}
