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

import (
	"fmt"

	"github.com/edb-core/edb-go/analysis/ast"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/analysis/sourcemap"
)

// Debug gates the extra consistency assertion calibrateBlock runs
// after a two-way split, mirroring the Debug-flag convention the
// push/jump hint maps use for their own write-mode checks.
var Debug = false

// errTooManyReferencedFunctions is returned by Calibrate when a single
// block's calibration points span three or more distinct non-modifier
// functions. §4.6 documents this as diagnosable but unsupported: the
// calibrator only knows how to split a block in two.
type errTooManyReferencedFunctions struct {
	ic uint64
	n  int
}

func (e *errTooManyReferencedFunctions) Error() string {
	return fmt.Sprintf("calltrace: block starting at ic=%d references %d distinct non-modifier functions (>=3 unsupported)", e.ic, e.n)
}

// Calibrate runs the §4.6 calibration pass over every non-discarded
// node in t, looking up each node's label slice (as sourcemap.Project
// produces it for one runtime.Address) in labelsByAddr. A node whose
// address has no entry (an unverified contract with no source map) is
// left uncalibrated. Sets t.Calibrated once every node has been
// visited, even if some were skipped for lack of a source map.
func Calibrate(t *AnalyzedCallTrace, labelsByAddr map[runtime.Address][]sourcemap.SourceLabel) error {
	for i := range t.Nodes {
		node := &t.Nodes[i]
		if node.Discard {
			continue
		}
		labels, ok := labelsByAddr[node.Addr]
		if !ok {
			continue
		}
		if err := CalibrateNode(node, labels); err != nil {
			return err
		}
	}
	t.Calibrated = true
	return nil
}

// CalibrateNode calibrates one FuncNode's blocks against labels (the
// projected SourceLabel slice for that node's own Address), splitting
// any block whose calibration points span exactly two distinct
// non-modifier functions, and erroring on three or more. A block
// referencing zero or one such function is left untouched: a single
// normal function needs no split, and modifier-only blocks are not
// split at all (the modifier's own statements sit alongside the
// function body's in the trace, which is the source of the
// "modifiers vs normal functions" distinction in the first place).
func CalibrateNode(node *FuncNode, labels []sourcemap.SourceLabel) error {
	if node.Discard {
		return nil
	}
	var rebuilt []BlockNode
	for _, block := range node.Trace {
		block.CalibrationPoints = accumulateCalibrationPoints(block, labels)
		_, normals := referencedFunctions(block.CalibrationPoints)

		switch len(normals) {
		case 0, 1:
			rebuilt = append(rebuilt, block)
		case 2:
			split, err := splitAtSecondFunction(block, normals[1])
			if err != nil {
				return err
			}
			rebuilt = append(rebuilt, split...)
		default:
			return &errTooManyReferencedFunctions{ic: block.StartIC, n: len(normals)}
		}
	}
	node.Trace = rebuilt
	return nil
}

// accumulateCalibrationPoints walks block's ic range and records the
// ics where the projected label changes from its immediate
// predecessor and the new label is itself a source statement.
func accumulateCalibrationPoints(block BlockNode, labels []sourcemap.SourceLabel) map[uint64]CalibrationPoint {
	points := make(map[uint64]CalibrationPoint)
	var prev *sourcemap.SourceLabel
	for ic := block.StartIC; ic < block.EndIC(); ic++ {
		if int(ic) >= len(labels) {
			break
		}
		cur := labels[ic]
		if prev == nil || !sameLabel(*prev, cur) {
			if cur.IsSource() {
				points[ic] = CalibrationPoint{IC: ic, Label: cur}
			}
		}
		prevCopy := cur
		prev = &prevCopy
	}
	return points
}

func sameLabel(a, b sourcemap.SourceLabel) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case sourcemap.PrimitiveStmt, sourcemap.InlineAssembly:
		if a.Stmt == nil || b.Stmt == nil {
			return a.Stmt == b.Stmt
		}
		return a.Stmt.Loc == b.Stmt.Loc
	default:
		return true
	}
}

// referencedFunctions splits a block's calibration points into the
// distinct enclosing functions they name, modifiers separated from
// normal functions, in first-encountered order (by ascending ic).
//
// §4.6 also names a third category, pure (compiler-inlined) functions,
// whose statements appear without their own call-trace node at all.
// Telling those apart from an ordinary normal function needs
// information this module doesn't reconstruct from the pruned AST and
// source map alone (solc's own inlining decision), so every
// non-modifier referenced function is counted as normal here; see
// the design notes for this simplification.
func referencedFunctions(points map[uint64]CalibrationPoint) (modifiers, normals []*ast.DebugUnit) {
	seenModifier := make(map[ast.Loc]bool)
	seenNormal := make(map[ast.Loc]bool)

	ics := make([]uint64, 0, len(points))
	for ic := range points {
		ics = append(ics, ic)
	}
	sortUint64s(ics)

	for _, ic := range ics {
		fn := points[ic].Label.Func
		if fn == nil {
			continue
		}
		if fn.IsModifier {
			if !seenModifier[fn.Loc] {
				seenModifier[fn.Loc] = true
				modifiers = append(modifiers, fn)
			}
			continue
		}
		if !seenNormal[fn.Loc] {
			seenNormal[fn.Loc] = true
			normals = append(normals, fn)
		}
	}
	return modifiers, normals
}

func sortUint64s(s []uint64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// splitAtSecondFunction splits block at the first calibration point
// naming second (the block's second distinct referenced function),
// giving the first half a NoCallTo placeholder (the caller is
// expected to resolve it against whatever intra-contract call
// actually follows) and the second half the original block's CallTo.
func splitAtSecondFunction(block BlockNode, second *ast.DebugUnit) ([]BlockNode, error) {
	var splitIC uint64
	found := false
	ics := make([]uint64, 0, len(block.CalibrationPoints))
	for ic := range block.CalibrationPoints {
		ics = append(ics, ic)
	}
	sortUint64s(ics)
	for _, ic := range ics {
		fn := block.CalibrationPoints[ic].Label.Func
		if fn != nil && !fn.IsModifier && fn.Loc == second.Loc {
			splitIC = ic
			found = true
			break
		}
	}
	if !found || splitIC <= block.StartIC {
		return nil, fmt.Errorf("calltrace: could not locate a split point for block at ic=%d", block.StartIC)
	}

	first := BlockNode{
		Addr:      block.Addr,
		StartIC:   block.StartIC,
		InstN:     splitIC - block.StartIC,
		StartStep: block.StartStep,
		CallTo:    NoCallTo,
	}
	second2 := BlockNode{
		Addr:    block.Addr,
		StartIC: splitIC,
		InstN:   block.EndIC() - splitIC,
		CallTo:  block.CallTo,
	}
	first.CalibrationPoints, second2.CalibrationPoints = splitPoints(block.CalibrationPoints, splitIC)

	if Debug {
		_, firstNormals := referencedFunctions(first.CalibrationPoints)
		_, secondNormals := referencedFunctions(second2.CalibrationPoints)
		if len(firstNormals) > 1 || len(secondNormals) > 1 {
			return nil, fmt.Errorf("calltrace: split at ic=%d did not separate the two referenced functions", splitIC)
		}
	}
	return []BlockNode{first, second2}, nil
}

func splitPoints(points map[uint64]CalibrationPoint, at uint64) (before, after map[uint64]CalibrationPoint) {
	before = make(map[uint64]CalibrationPoint)
	after = make(map[uint64]CalibrationPoint)
	for ic, p := range points {
		if ic < at {
			before[ic] = p
		} else {
			after[ic] = p
		}
	}
	return before, after
}
