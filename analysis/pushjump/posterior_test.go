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
	"testing"

	"github.com/edb-core/edb-go/analysis/hint"
	"github.com/edb-core/edb-go/analysis/runtime"
)

func TestRefinePosteriorMultiTargetJumpBecomesReturn(t *testing.T) {
	ab, err := runtime.Analyze([]byte{0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := hint.NewPJHint(runtime.Address{})
	h.TargetsOf(10).Add(uint64(1))
	h.TargetsOf(10).Add(uint64(2))

	RefinePosterior(ab, h)

	if got := h.JumpHints[10]; got != hint.JumpReturn {
		t.Fatalf("expected a multi-target jump to be hinted Return, got %v", got)
	}
}

func TestRefinePosteriorRuleC1LiftsStrictCallToCall(t *testing.T) {
	// PUSH1 <target=5>, JUMP, JUMPDEST, STOP.
	ab, err := runtime.Analyze([]byte{0x60, 0x05, 0x56, 0x5B, 0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := hint.NewPJHint(runtime.Address{})
	h.TargetsOf(2).Add(uint64(5))

	// seed a Call jump elsewhere whose target (5) becomes a known callee.
	h.JumpHints.OrderedInsert(20, hint.JumpCall)
	h.TargetsOf(20).Add(uint64(5))

	RefinePosterior(ab, h)

	if got := h.JumpHints[2]; got != hint.JumpCall {
		t.Fatalf("expected Rule C1 to lift the strict-call jump at pc=2 to Call, got %v", got)
	}
}

func TestRefinePosteriorRuleR1LiftsStrictReturnToReturn(t *testing.T) {
	// DUP1, JUMP.
	ab, err := runtime.Analyze([]byte{0x80, 0x56})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := hint.NewPJHint(runtime.Address{})
	h.TargetsOf(1).Add(uint64(9))

	h.JumpHints.OrderedInsert(30, hint.JumpReturn)
	h.TargetsOf(30).Add(uint64(9))

	RefinePosterior(ab, h)

	if got := h.JumpHints[1]; got != hint.JumpReturn {
		t.Fatalf("expected Rule R1 to lift the strict-return jump at pc=1 to Return, got %v", got)
	}
}

func TestIsStrictCallRequiresSingleMatchingTarget(t *testing.T) {
	ab, err := runtime.Analyze([]byte{0x60, 0x05, 0x56, 0x5B, 0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := hint.NewPJHint(runtime.Address{})
	h.TargetsOf(2).Add(uint64(5))
	if !isStrictCall(ab, h, 2) {
		t.Fatalf("expected isStrictCall to hold for a single push whose value matches the only target")
	}

	h.TargetsOf(2).Add(uint64(99))
	if isStrictCall(ab, h, 2) {
		t.Fatalf("expected isStrictCall to fail once the target set has more than one member")
	}
}

func TestIsStrictReturnRecognizesDupSwapPop(t *testing.T) {
	// DUP1, JUMP.
	ab, err := runtime.Analyze([]byte{0x80, 0x56})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isStrictReturn(ab, 1) {
		t.Fatalf("expected isStrictReturn to hold when the jump is preceded by a DUP")
	}
}

func TestIsStrictReturnFailsForOrdinaryPredecessor(t *testing.T) {
	// ADD, JUMP.
	ab, err := runtime.Analyze([]byte{0x01, 0x56})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isStrictReturn(ab, 1) {
		t.Fatalf("expected isStrictReturn to fail when preceded by a non DUP/SWAP/POP opcode")
	}
}
