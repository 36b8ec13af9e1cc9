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
	"testing"

	"github.com/edb-core/edb-go/analysis/ast"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/analysis/sourcemap"
	"github.com/edb-core/edb-go/common"
)

var (
	fnOne = &ast.DebugUnit{Kind: ast.UnitFunction, Loc: ast.Loc{Offset: 0, Length: 10}}
	fnTwo = &ast.DebugUnit{Kind: ast.UnitFunction, Loc: ast.Loc{Offset: 100, Length: 10}}
	modA  = &ast.DebugUnit{Kind: ast.UnitFunction, Loc: ast.Loc{Offset: 200, Length: 10}, IsModifier: true}
)

func primLabel(fn *ast.DebugUnit, offset int) sourcemap.SourceLabel {
	stmt := &ast.DebugUnit{Kind: ast.UnitPrimitive, Loc: ast.Loc{Offset: offset, Length: 1}}
	return sourcemap.SourceLabel{Kind: sourcemap.PrimitiveStmt, Stmt: stmt, Func: fn}
}

func TestAccumulateCalibrationPointsSkipsRepeatsAndNonSource(t *testing.T) {
	labels := []sourcemap.SourceLabel{
		primLabel(fnOne, 1), // ic0: new -> point
		primLabel(fnOne, 1), // ic1: same stmt -> no new point
		{Kind: sourcemap.Other},          // ic2: not source -> no point
		primLabel(fnOne, 2),              // ic3: new stmt, same func -> point
	}
	block := BlockNode{StartIC: 0, InstN: 4}
	points := accumulateCalibrationPoints(block, labels)
	if len(points) != 2 {
		t.Fatalf("expected 2 calibration points, got %d: %+v", len(points), points)
	}
	if _, ok := points[0]; !ok {
		t.Fatalf("expected a calibration point at ic=0")
	}
	if _, ok := points[3]; !ok {
		t.Fatalf("expected a calibration point at ic=3")
	}
}

func TestReferencedFunctionsSeparatesModifiersFromNormals(t *testing.T) {
	points := map[uint64]CalibrationPoint{
		0: {IC: 0, Label: primLabel(modA, 1)},
		1: {IC: 1, Label: primLabel(fnOne, 2)},
		2: {IC: 2, Label: primLabel(fnOne, 3)}, // repeat of fnOne, must not double-count
		3: {IC: 3, Label: primLabel(fnTwo, 4)},
	}
	modifiers, normals := referencedFunctions(points)
	if len(modifiers) != 1 || modifiers[0] != modA {
		t.Fatalf("expected exactly modA as the only modifier, got %+v", modifiers)
	}
	if len(normals) != 2 || normals[0] != fnOne || normals[1] != fnTwo {
		t.Fatalf("expected [fnOne, fnTwo] in encounter order, got %+v", normals)
	}
}

func TestCalibrateNodeLeavesSingleFunctionBlockAlone(t *testing.T) {
	labels := []sourcemap.SourceLabel{primLabel(fnOne, 1), primLabel(fnOne, 2)}
	node := &FuncNode{Trace: []BlockNode{{StartIC: 0, InstN: 2}}}
	if err := CalibrateNode(node, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(node.Trace) != 1 {
		t.Fatalf("expected the single-function block to survive untouched, got %d blocks", len(node.Trace))
	}
}

func TestCalibrateNodeSplitsTwoFunctionBlock(t *testing.T) {
	labels := []sourcemap.SourceLabel{
		primLabel(fnOne, 1),
		primLabel(fnOne, 2),
		primLabel(fnTwo, 3),
		primLabel(fnTwo, 4),
	}
	node := &FuncNode{Trace: []BlockNode{{StartIC: 0, InstN: 4, CallTo: 7}}}
	if err := CalibrateNode(node, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(node.Trace) != 2 {
		t.Fatalf("expected the block to split in two, got %d blocks", len(node.Trace))
	}
	first, second := node.Trace[0], node.Trace[1]
	if first.StartIC != 0 || first.EndIC() != 2 {
		t.Fatalf("expected the first half to cover ic[0,2), got start=%d end=%d", first.StartIC, first.EndIC())
	}
	if first.CallTo != NoCallTo {
		t.Fatalf("expected the first half's CallTo to be the unresolved placeholder, got %d", first.CallTo)
	}
	if second.StartIC != 2 || second.EndIC() != 4 {
		t.Fatalf("expected the second half to cover ic[2,4), got start=%d end=%d", second.StartIC, second.EndIC())
	}
	if second.CallTo != 7 {
		t.Fatalf("expected the second half to keep the original block's CallTo=7, got %d", second.CallTo)
	}
}

func TestCalibrateNodeRejectsThreeFunctionBlock(t *testing.T) {
	fnThree := &ast.DebugUnit{Kind: ast.UnitFunction, Loc: ast.Loc{Offset: 300, Length: 5}}
	labels := []sourcemap.SourceLabel{
		primLabel(fnOne, 1),
		primLabel(fnTwo, 2),
		primLabel(fnThree, 3),
	}
	node := &FuncNode{Trace: []BlockNode{{StartIC: 0, InstN: 3}}}
	err := CalibrateNode(node, labels)
	if err == nil {
		t.Fatalf("expected an error for a block referencing 3 distinct functions")
	}
}

func TestCalibrateNodeSkipsDiscardedNode(t *testing.T) {
	node := &FuncNode{Discard: true, Trace: []BlockNode{{StartIC: 0, InstN: 1}}}
	if err := CalibrateNode(node, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(node.Trace) != 1 {
		t.Fatalf("expected a discarded node's trace to be left untouched")
	}
}

func TestCalibrateSkipsNodesWithNoLabelsAndSetsCalibratedFlag(t *testing.T) {
	addr := runtime.New(common.Address{1}, false)
	tr := &AnalyzedCallTrace{
		Nodes: []FuncNode{
			{Loc: 0, Addr: addr, Trace: []BlockNode{{StartIC: 0, InstN: 2}}},
		},
	}
	labels := map[runtime.Address][]sourcemap.SourceLabel{
		addr: {primLabel(fnOne, 1), primLabel(fnOne, 2)},
	}
	if err := Calibrate(tr, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tr.Calibrated {
		t.Fatalf("expected Calibrate to set the Calibrated flag")
	}
}
