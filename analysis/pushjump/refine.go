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

package pushjump

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/edb-core/edb-go/analysis/ast"
	"github.com/edb-core/edb-go/analysis/hint"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/analysis/sourcemap"
)

// RefineWithSourceMap runs the optional §4.2 source-map refinement pass:
// a JUMP sitting squarely inside one PrimitiveStmt (its own ic and both
// neighbors project to the same statement) whose every observed target
// lands in a different function gets lifted to Call. A no-op when rsm is
// Corrupted, per spec.
func RefineWithSourceMap(ab *runtime.AnalyzedBytecode, h *hint.PJHint, rsm *sourcemap.RefinedSourceMap) {
	if rsm == nil || rsm.Integrity == sourcemap.Corrupted {
		return
	}
	labels := rsm.Labels

	for jumpPC := range h.JumpTargets {
		ic, ok := ab.PCToIC[jumpPC]
		if !ok || ic == 0 || int(ic)+1 >= len(labels) {
			continue
		}
		cur := labels[ic]
		if cur.Kind != sourcemap.PrimitiveStmt || cur.Func == nil {
			continue
		}
		if !sameStmtLabel(labels[ic-1], cur) || !sameStmtLabel(cur, labels[ic+1]) {
			continue
		}

		targets := h.TargetsOf(jumpPC)
		if targets.Cardinality() == 0 {
			continue
		}
		if allTargetsInDifferentFunction(ab, labels, targets, cur.Func.Loc) {
			h.JumpHints.OrderedInsert(jumpPC, hint.JumpCall)
		}
	}
}

func sameStmtLabel(a, b sourcemap.SourceLabel) bool {
	if a.Kind != sourcemap.PrimitiveStmt || b.Kind != sourcemap.PrimitiveStmt {
		return false
	}
	if a.Stmt == nil || b.Stmt == nil {
		return false
	}
	return a.Stmt.Loc == b.Stmt.Loc
}

func allTargetsInDifferentFunction(ab *runtime.AnalyzedBytecode, labels []sourcemap.SourceLabel, targets mapset.Set, ownFunc ast.Loc) bool {
	for _, t := range targets.ToSlice() {
		targetPC := t.(uint64)
		targetIC, ok := ab.PCToIC[targetPC]
		if !ok || int(targetIC) >= len(labels) {
			return false
		}
		tl := labels[targetIC]
		if !tl.IsSource() || tl.Func == nil {
			return false
		}
		if tl.Func.Loc == ownFunc {
			return false
		}
	}
	return true
}
