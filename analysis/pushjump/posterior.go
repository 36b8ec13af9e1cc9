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
	"github.com/edb-core/edb-go/analysis/hint"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/core/vm"
)

// RefinePosterior runs the per-contract posterior heuristic pass over
// h, using ab to decode the instruction immediately preceding a jump
// (strict-call/strict-return validation) and the instruction
// immediately following it (known-return-address candidates). Mutates
// h in place; safe to call once per contract after the dynamic pass
// has finished recording it.
func RefinePosterior(ab *runtime.AnalyzedBytecode, h *hint.PJHint) {
	// Rule: any jump with more than one distinct observed target is a
	// Return (an indirect return address, never a direct call target).
	for jumpPC, targets := range h.JumpTargets {
		if targets.Cardinality() > 1 {
			h.JumpHints.OrderedInsert(jumpPC, hint.JumpReturn)
		}
	}

	knownCallee := make(map[uint64]bool)
	knownReturn := make(map[uint64]bool)
	seedKnownAddrs(h, knownCallee, knownReturn)

	for {
		changed := false
		for jumpPC := range h.JumpTargets {
			changed = propagateOneJump(ab, h, jumpPC, knownCallee, knownReturn) || changed
		}
		if !changed {
			break
		}
	}
}

func seedKnownAddrs(h *hint.PJHint, knownCallee, knownReturn map[uint64]bool) {
	for jumpPC, jh := range h.JumpHints {
		switch jh {
		case hint.JumpCall:
			for _, t := range h.TargetsOf(jumpPC).ToSlice() {
				knownCallee[t.(uint64)] = true
			}
		case hint.JumpReturn:
			for _, t := range h.TargetsOf(jumpPC).ToSlice() {
				knownReturn[t.(uint64)] = true
			}
		}
	}
}

// propagateOneJump applies one worklist iteration's rules for a single
// jump pc, returning whether anything changed (knownCallee/knownReturn
// grew, or jumpPC's hint was lifted).
func propagateOneJump(ab *runtime.AnalyzedBytecode, h *hint.PJHint, jumpPC uint64, knownCallee, knownReturn map[uint64]bool) bool {
	changed := false
	current := h.JumpHints[jumpPC]

	switch current {
	case hint.JumpCall:
		for _, t := range h.TargetsOf(jumpPC).ToSlice() {
			target := t.(uint64)
			if !knownCallee[target] {
				knownCallee[target] = true
				changed = true
			}
		}
		if retPC, ok := ab.NextInsnPCFromPC(jumpPC); ok && ab.IsJumpdest(retPC) {
			if !knownReturn[retPC] {
				knownReturn[retPC] = true
				changed = true
			}
		}
		for _, p := range h.PushesOf(jumpPC).ToSlice() {
			pushPC := p.(uint64)
			h.PushHints.OrderedInsert(pushPC, hint.PushCalleeAddr)
		}
	case hint.JumpReturn:
		for _, t := range h.TargetsOf(jumpPC).ToSlice() {
			target := t.(uint64)
			if !knownReturn[target] {
				knownReturn[target] = true
				changed = true
			}
		}
		for _, p := range h.PushesOf(jumpPC).ToSlice() {
			pushPC := p.(uint64)
			h.PushHints.OrderedInsert(pushPC, hint.PushReturnAddr)
		}
	}

	strictCall := isStrictCall(ab, h, jumpPC)
	strictReturn := isStrictReturn(ab, jumpPC)

	// Rule C1
	if current != hint.JumpCall && strictCall && targetsContain(h, jumpPC, knownCallee) {
		h.JumpHints.OrderedInsert(jumpPC, hint.JumpCall)
		changed = true
	}
	// Rule R1
	if current != hint.JumpReturn && strictReturn && targetsContain(h, jumpPC, knownReturn) {
		h.JumpHints.OrderedInsert(jumpPC, hint.JumpReturn)
		changed = true
	}
	// Rule R2: the pc immediately preceding a known return address, if
	// strict-call and still Unknown, is lifted to Call. jumpPC plays
	// the role of "the instruction whose successor is a known return
	// address" here.
	if nextPC, ok := ab.NextInsnPCFromPC(jumpPC); ok && knownReturn[nextPC] {
		if h.JumpHints[jumpPC] == hint.JumpUnknown && isStrictCall(ab, h, jumpPC) {
			h.JumpHints.OrderedInsert(jumpPC, hint.JumpCall)
			changed = true
		}
	}

	return changed
}

func targetsContain(h *hint.PJHint, jumpPC uint64, known map[uint64]bool) bool {
	for _, t := range h.TargetsOf(jumpPC).ToSlice() {
		if known[t.(uint64)] {
			return true
		}
	}
	return false
}

// isStrictCall holds when jumpPC is immediately preceded by exactly one
// push whose value equals jumpPC's (single) observed target.
func isStrictCall(ab *runtime.AnalyzedBytecode, h *hint.PJHint, jumpPC uint64) bool {
	prevPC, ok := ab.PrevInsnPCFromPC(jumpPC)
	if !ok {
		return false
	}
	op, ok := ab.OpAt(prevPC)
	if !ok || !op.IsPush() {
		return false
	}
	value, ok := ab.PushedValue(prevPC)
	if !ok {
		return false
	}
	targets := h.TargetsOf(jumpPC)
	if targets.Cardinality() != 1 {
		return false
	}
	return targets.Contains(value)
}

// isStrictReturn holds when jumpPC is immediately preceded by a
// DUPk/SWAPk/POP.
func isStrictReturn(ab *runtime.AnalyzedBytecode, jumpPC uint64) bool {
	prevPC, ok := ab.PrevInsnPCFromPC(jumpPC)
	if !ok {
		return false
	}
	op, ok := ab.OpAt(prevPC)
	if !ok {
		return false
	}
	return op.IsDup() || op.IsSwap() || op == vm.POP
}
