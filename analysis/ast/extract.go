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

import "sort"

// unitCollector is the StatementVisitor implementation that actually
// emits DebugUnits per §4.3's rules.
type unitCollector struct {
	units   map[int][]DebugUnit
	sources map[int]string
}

func newUnitCollector(sources map[int]string) *unitCollector {
	return &unitCollector{units: make(map[int][]DebugUnit), sources: sources}
}

func (c *unitCollector) insert(kind UnitKind, loc Loc, subs []Loc) {
	c.units[loc.FileIndex] = append(c.units[loc.FileIndex], DebugUnit{Kind: kind, Loc: loc, SubStatements: subs})
}

func (c *unitCollector) VisitBlock(n *Node) {}

func (c *unitCollector) VisitIfStatement(n *Node) {
	if cond, ok := n.Field("condition"); ok {
		c.insert(UnitPrimitive, cond.Src, nil)
	}
}

func (c *unitCollector) VisitWhileStatement(n *Node) {
	if cond, ok := n.Field("condition"); ok {
		c.insert(UnitPrimitive, cond.Src, nil)
	}
}

func (c *unitCollector) VisitDoWhileStatement(n *Node) {
	if cond, ok := n.Field("condition"); ok {
		c.insert(UnitPrimitive, cond.Src, nil)
	}
}

func (c *unitCollector) VisitForStatement(n *Node) {
	var locs []Loc
	if v, ok := n.Field("initializationExpression"); ok {
		locs = append(locs, v.Src)
	}
	if v, ok := n.Field("condition"); ok {
		locs = append(locs, v.Src)
	}
	if v, ok := n.Field("loopExpression"); ok {
		locs = append(locs, v.Src)
	}
	if len(locs) == 0 {
		return
	}
	c.insert(UnitPrimitive, mergeLocs(locs), nil)
}

func (c *unitCollector) VisitTryStatement(n *Node) {
	if call, ok := n.Field("externalCall"); ok {
		c.insert(UnitPrimitive, call.Src, nil)
	}
}

func (c *unitCollector) VisitInlineAssembly(n *Node) {
	var subs []Loc
	if yulAST, ok := n.Field("AST"); ok {
		yulWalkBlock(yulAST, func(l Loc) { subs = append(subs, l) })
	}
	if len(subs) == 0 {
		if src, ok := c.sources[n.Src.FileIndex]; ok {
			subs = fallbackYulLex(src, n.Src)
		}
	}
	c.insert(UnitInlineAssembly, n.Src, subs)
}

func (c *unitCollector) VisitOtherStatement(n *Node) {
	c.insert(UnitPrimitive, n.Src, nil)
}

func mergeLocs(locs []Loc) Loc {
	file := locs[0].FileIndex
	start, end := locs[0].Offset, locs[0].End()
	for _, l := range locs[1:] {
		if l.Offset < start {
			start = l.Offset
		}
		if l.End() > end {
			end = l.End()
		}
	}
	return Loc{Offset: start, Length: end - start, FileIndex: file}
}

// ExtractScopes runs the separate Function/Contract scope pass over a
// source unit: every ContractDefinition becomes a Contract unit, and
// every FunctionDefinition/ModifierDefinition inside it becomes a
// Function unit.
func ExtractScopes(sourceUnit *Node, into map[int][]DebugUnit) {
	for _, top := range sourceUnit.FieldArray("nodes") {
		if top.NodeType != "ContractDefinition" {
			continue
		}
		into[top.Src.FileIndex] = append(into[top.Src.FileIndex], DebugUnit{Kind: UnitContract, Loc: top.Src})
		for _, member := range top.FieldArray("nodes") {
			if member.NodeType == "FunctionDefinition" || member.NodeType == "ModifierDefinition" {
				into[member.Src.FileIndex] = append(into[member.Src.FileIndex], DebugUnit{
					Kind:       UnitFunction,
					Loc:        member.Src,
					IsModifier: member.NodeType == "ModifierDefinition",
				})
			}
		}
	}
}

// Extract prunes sourceUnit, walks every function/modifier body for
// statement-level units, runs the scope pass, sorts each file's units
// by offset, and checks the non-overlap integrity invariant. sources
// supplies each file's raw text for the inline-assembly fallback
// lexer, keyed by file index.
func Extract(sourceUnit *Node, sources map[int]string) (map[int][]DebugUnit, error) {
	Prune(sourceUnit)

	collector := newUnitCollector(sources)
	walker := NewWalker(collector)
	for _, top := range sourceUnit.FieldArray("nodes") {
		if top.NodeType != "ContractDefinition" {
			continue
		}
		for _, member := range top.FieldArray("nodes") {
			if member.NodeType != "FunctionDefinition" && member.NodeType != "ModifierDefinition" {
				continue
			}
			if body, ok := member.Field("body"); ok {
				walker.WalkBody(body)
			}
		}
	}

	// the non-overlap invariant is checked against the statement-level
	// units alone: Function/Contract scope units are supersets of the
	// statements inside them by construction and would always "overlap".
	for fileIndex, units := range collector.units {
		sorted := append([]DebugUnit(nil), units...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Loc.Offset < sorted[j].Loc.Offset })
		collector.units[fileIndex] = sorted
		if err := CheckIntegrity(fileIndex, sorted); err != nil {
			return nil, err
		}
	}

	ExtractScopes(sourceUnit, collector.units)
	for fileIndex, units := range collector.units {
		sorted := append([]DebugUnit(nil), units...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Loc.Offset < sorted[j].Loc.Offset })
		collector.units[fileIndex] = sorted
	}
	return collector.units, nil
}
