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

package sourcemap

import (
	"sort"

	"github.com/edb-core/edb-go/analysis/ast"
	"github.com/edb-core/edb-go/analysis/runtime"
	vm "github.com/edb-core/edb-go/core/vm"
)

// RefinedSourceMap is the §4.4 projector's output for one runtime
// address: a SourceLabel per instruction count, plus the derived
// integrity classification.
type RefinedSourceMap struct {
	Addr      runtime.Address
	Labels    []SourceLabel
	Integrity IntegrityLevel
}

// byFileUnits holds one file's debug units pre-sorted by offset, the
// form Project needs for its largest-offset-unit binary search.
type byFileUnits map[int][]ast.DebugUnit

// Project runs the §4.4 source-label projector: elements is the
// per-contract source map (indexed by ic), ab supplies each element's
// corresponding opcode (to check jump-marker/opcode consistency for the
// Corrupted classification), and units is the debug-unit index from
// analysis/ast.Extract, keyed by file index.
//
// A contract with no source map (elements is empty) produces a
// RefinedSourceMap of all-Other labels at Normal integrity; downstream
// labellers must still succeed, per §8.
func Project(addr runtime.Address, elements []Element, ab *runtime.AnalyzedBytecode, units map[int][]ast.DebugUnit) *RefinedSourceMap {
	sorted := make(byFileUnits, len(units))
	for file, us := range units {
		cp := append([]ast.DebugUnit(nil), us...)
		sort.Slice(cp, func(i, j int) bool { return cp[i].Loc.Offset < cp[j].Loc.Offset })
		sorted[file] = cp
	}

	labels := make([]SourceLabel, len(elements))
	corrupted := false
	for ic, el := range elements {
		labels[ic] = projectOne(sorted, el)

		if el.Jump != Regular {
			pc, ok := ab.ICToPC[uint64(ic)]
			if !ok {
				continue
			}
			op, ok := ab.OpAt(pc)
			if !ok || (op != vm.JUMP && op != vm.JUMPI) {
				corrupted = true
			}
		}
	}

	return &RefinedSourceMap{
		Addr:      addr,
		Labels:    labels,
		Integrity: classifyIntegrity(labels, corrupted),
	}
}

func projectOne(units byFileUnits, el Element) SourceLabel {
	fileUnits := units[el.FileIndex]
	unit := largestOffsetUnitAtOrBefore(fileUnits, el.Offset)
	if unit == nil {
		return SourceLabel{Kind: Other}
	}

	exact := unit.Loc.Offset == el.Offset && unit.Loc.Length == el.Length
	isLeaf := unit.Kind == ast.UnitPrimitive || unit.Kind == ast.UnitInlineAssembly
	if exact && !isLeaf {
		u := *unit
		return SourceLabel{Kind: Tag, Unit: &u}
	}

	contains := unit.Loc.Offset <= el.Offset && unit.Loc.End() >= el.End()
	if !contains {
		return SourceLabel{Kind: Other}
	}

	switch unit.Kind {
	case ast.UnitPrimitive:
		u := *unit
		fn := enclosing(fileUnits, ast.UnitFunction, el.Offset)
		cn := enclosing(fileUnits, ast.UnitContract, el.Offset)
		return SourceLabel{Kind: PrimitiveStmt, Stmt: &u, Func: fn, Cntr: cn}
	case ast.UnitInlineAssembly:
		u := *unit
		fn := enclosing(fileUnits, ast.UnitFunction, el.Offset)
		cn := enclosing(fileUnits, ast.UnitContract, el.Offset)
		stmt := narrowestYulSubStatement(unit, el)
		return SourceLabel{Kind: InlineAssembly, Stmt: stmt, Block: &u, Func: fn, Cntr: cn}
	case ast.UnitFunction, ast.UnitContract:
		u := *unit
		return SourceLabel{Kind: Other, Scope: &u}
	default:
		return SourceLabel{Kind: Other}
	}
}

// largestOffsetUnitAtOrBefore returns the unit with the largest
// Loc.Offset that is still <= offset, among units (sorted ascending by
// offset). Returns nil if none qualifies.
func largestOffsetUnitAtOrBefore(units []ast.DebugUnit, offset int) *ast.DebugUnit {
	idx := sort.Search(len(units), func(i int) bool { return units[i].Loc.Offset > offset })
	if idx == 0 {
		return nil
	}
	return &units[idx-1]
}

// enclosing finds the tightest unit of kind whose span contains offset.
func enclosing(units []ast.DebugUnit, kind ast.UnitKind, offset int) *ast.DebugUnit {
	var best *ast.DebugUnit
	for i := range units {
		u := &units[i]
		if u.Kind != kind {
			continue
		}
		if u.Loc.Offset > offset || u.Loc.End() < offset {
			continue
		}
		if best == nil || u.Loc.Offset > best.Loc.Offset {
			best = u
		}
	}
	return best
}

// narrowestYulSubStatement returns the location of the block's recorded
// sub-statement that contains el most tightly (the one with the largest
// offset), wrapped as a UnitPrimitive DebugUnit, or nil when el falls outside
// every recorded sub-statement (the block-level label applies instead).
func narrowestYulSubStatement(block *ast.DebugUnit, el Element) *ast.DebugUnit {
	var best *ast.Loc
	for i := range block.SubStatements {
		loc := block.SubStatements[i]
		if loc.Offset > el.Offset || loc.End() < el.End() {
			continue
		}
		if best == nil || loc.Offset > best.Offset {
			best = &block.SubStatements[i]
		}
	}
	if best == nil {
		return nil
	}
	return &ast.DebugUnit{Kind: ast.UnitPrimitive, Loc: *best}
}
