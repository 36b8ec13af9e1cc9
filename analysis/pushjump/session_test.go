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
	"github.com/edb-core/edb-go/common"
	"github.com/edb-core/edb-go/core/vm"
	"github.com/edb-core/edb-go/host"
)

// callReturnCode is a minimal solc-shaped internal call: push the return
// address (pc=5, immediately after the call JUMP at pc=4), push the
// callee address (pc=7), JUMP to the callee, run one JUMPDEST, then JUMP
// back using the previously-pushed return address.
//
//	pc0-1: PUSH1 5   (return address)
//	pc2-3: PUSH1 7   (callee address)
//	pc4:   JUMP      (call)
//	pc5:   JUMPDEST  (return landing pad)
//	pc6:   STOP      (filler, unreached by this synthetic trace)
//	pc7:   JUMPDEST  (callee entry)
//	pc8:   JUMP      (return)
var callReturnCode = []byte{0x60, 0x05, 0x60, 0x07, 0x56, 0x5B, 0x00, 0x5B, 0x56}

func TestSessionClassifiesCallReturnPattern(t *testing.T) {
	s := NewSession(func(addr common.Address) []byte { return nil })
	addr := runtime.New(common.Address{1}, false)
	if err := s.enter(addr, callReturnCode); err != nil {
		t.Fatalf("unexpected enter error: %v", err)
	}

	steps := []host.StepContext{
		{PC: 0, Op: vm.PUSH1, Stack: nil},
		{PC: 2, Op: vm.PUSH1, Stack: []uint64{5}},
		{PC: 4, Op: vm.JUMP, Stack: []uint64{5, 7}},
		{PC: 7, Op: vm.JUMPDEST, Stack: []uint64{5}},
		{PC: 8, Op: vm.JUMP, Stack: []uint64{5}},
	}
	for _, step := range steps {
		s.Step(step)
	}

	h := s.Hints()[addr]
	if h == nil {
		t.Fatalf("expected a PJHint to be recorded for %v", addr)
	}
	if got := h.JumpHints[8]; got != hint.JumpReturn {
		t.Fatalf("expected the return jump (pc=8) to be hinted Return, got %v", got)
	}
	if got := h.JumpHints[4]; got != hint.JumpCall {
		t.Fatalf("expected the call jump (pc=4) to be hinted Call, got %v", got)
	}
	if got := h.PushHints[0]; got != hint.PushReturnAddr {
		t.Fatalf("expected the return-address push (pc=0) to be hinted ReturnAddr, got %v", got)
	}
	if got := h.PushHints[2]; got != hint.PushCalleeAddr {
		t.Fatalf("expected the callee-address push (pc=2) to be hinted CalleeAddr, got %v", got)
	}
}

func TestSessionJumpiAlwaysHintsBlock(t *testing.T) {
	// PUSH1 <cond>, PUSH1 <dest>, JUMPI, JUMPDEST, STOP: dest is pushed
	// last so it sits on top of the stack when JUMPI runs.
	code := []byte{0x60, 0x00, 0x60, 0x05, 0x57, 0x5B, 0x00}
	s := NewSession(func(addr common.Address) []byte { return nil })
	addr := runtime.New(common.Address{2}, false)
	if err := s.enter(addr, code); err != nil {
		t.Fatalf("unexpected enter error: %v", err)
	}

	s.Step(host.StepContext{PC: 0, Op: vm.PUSH1})
	s.Step(host.StepContext{PC: 2, Op: vm.PUSH1, Stack: []uint64{0}})
	s.Step(host.StepContext{PC: 4, Op: vm.JUMPI, Stack: []uint64{0, 5}})

	h := s.Hints()[addr]
	if got := h.JumpHints[4]; got != hint.JumpBlock {
		t.Fatalf("expected JUMPI to always be hinted Block, got %v", got)
	}
	if got := h.PushHints[2]; got != hint.PushBlockAddr {
		t.Fatalf("expected the dest push to be hinted BlockAddr, got %v", got)
	}
	if got := h.PushHints[0]; got != hint.PushNumericVal {
		t.Fatalf("expected the condition push to be hinted NumericVal, got %v", got)
	}
}

func TestSessionPopWeaklyHintsUnknownOnlyWhenUntagged(t *testing.T) {
	// PUSH1 <jumpdest=4>, POP, STOP, JUMPDEST: the pushed value never
	// reaches a jump.
	code := []byte{0x60, 0x04, 0x50, 0x00, 0x5B}
	s := NewSession(func(addr common.Address) []byte { return nil })
	addr := runtime.New(common.Address{3}, false)
	if err := s.enter(addr, code); err != nil {
		t.Fatalf("unexpected enter error: %v", err)
	}

	s.Step(host.StepContext{PC: 0, Op: vm.PUSH1})
	s.Step(host.StepContext{PC: 2, Op: vm.POP, Stack: []uint64{4}})

	h := s.Hints()[addr]
	if got := h.PushHints[0]; got != hint.PushUnknown {
		t.Fatalf("expected the popped push to be weakly hinted Unknown, got %v", got)
	}
}

func TestSessionCallPushesAndPopsFrame(t *testing.T) {
	code := []byte{0x00}
	s := NewSession(func(addr common.Address) []byte { return code })
	s.Call(host.CallKindCall, common.Address{}, common.Address{9}, nil)
	if len(s.stack) != 1 {
		t.Fatalf("expected Call to push a frame, got depth %d", len(s.stack))
	}
	s.CallEnd(host.InstructionResult{})
	if len(s.stack) != 0 {
		t.Fatalf("expected CallEnd to pop the frame, got depth %d", len(s.stack))
	}
}
