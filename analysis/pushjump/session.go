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
	"fmt"

	"github.com/edb-core/edb-go/analysis/hint"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/common"
	"github.com/edb-core/edb-go/core/vm"
	"github.com/edb-core/edb-go/host"
)

// CodeProvider resolves the deployed bytecode for a message-call
// target; a real host fetches this from its state database, mirroring
// how core-coin-go-core's CVM interpreter calls StateDB.GetCode before
// entering a call frame.
type CodeProvider func(addr common.Address) []byte

// Session drives the dynamic pass: a host.Inspector implementation that
// maintains one shadow-stack frame per active call/create and
// accumulates a hint.PJHint per distinct runtime.Address across the
// whole replay.
type Session struct {
	codeOf  CodeProvider
	visited *runtime.VisitedAddressSet
	hints   map[runtime.Address]*hint.PJHint
	stack   []*frame
}

func NewSession(codeOf CodeProvider) *Session {
	return &Session{
		codeOf:  codeOf,
		visited: runtime.NewVisitedAddressSet(),
		hints:   make(map[runtime.Address]*hint.PJHint),
	}
}

// Hints returns the accumulated PJHint for every runtime address
// touched so far, keyed the same way the classifier keys frames.
func (s *Session) Hints() map[runtime.Address]*hint.PJHint { return s.hints }

func (s *Session) hintFor(addr runtime.Address) *hint.PJHint {
	h, ok := s.hints[addr]
	if !ok {
		h = hint.NewPJHint(addr)
		s.hints[addr] = h
	}
	return h
}

func (s *Session) enter(addr runtime.Address, code []byte) error {
	if _, err := s.visited.Visit(addr, code); err != nil {
		return fmt.Errorf("pushjump: analyzing %s: %w", addr, err)
	}
	s.hintFor(addr)
	s.stack = append(s.stack, newFrame(addr))
	return nil
}

func (s *Session) exit() {
	if len(s.stack) == 0 {
		return
	}
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *Session) top() *frame {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Call implements host.Inspector.
func (s *Session) Call(kind host.CallKind, from, to common.Address, input []byte) {
	code := s.codeOf(to)
	if err := s.enter(runtime.New(to, false), code); err != nil {
		panic(err)
	}
}

// CallEnd implements host.Inspector.
func (s *Session) CallEnd(result host.InstructionResult) { s.exit() }

// Create implements host.Inspector.
func (s *Session) Create(from, addr common.Address, code []byte) {
	if err := s.enter(runtime.New(addr, true), code); err != nil {
		panic(err)
	}
}

// CreateEnd implements host.Inspector.
func (s *Session) CreateEnd(addr common.Address, result host.InstructionResult) { s.exit() }

// Step implements host.Inspector: applies one opcode's per-opcode rule
// against the current frame's shadow stack, per §4.2.
func (s *Session) Step(ctx host.StepContext) {
	f := s.top()
	if f == nil {
		return
	}
	ab, ok := s.visited.Get(f.addr)
	if !ok {
		return
	}
	h := s.hintFor(f.addr)

	switch {
	case ctx.Op.IsPush():
		s.stepPush(f, h, ab, ctx.PC, ctx.Op)
	case ctx.Op.IsDup():
		f.dup(ctx.Op.DupPos())
	case ctx.Op.IsSwap():
		f.swap(ctx.Op.SwapPos())
	case ctx.Op == vm.POP:
		s.stepPop(f, h)
	case ctx.Op == vm.JUMP:
		s.stepJump(f, h, ctx)
	case ctx.Op == vm.JUMPI:
		s.stepJumpi(f, h, ctx.PC)
	default:
		s.stepDefault(f, h, ctx.Op)
	}

	f.step++
}

func (s *Session) stepPush(f *frame, h *hint.PJHint, ab *runtime.AnalyzedBytecode, pc uint64, op vm.OpCode) {
	value, ok := ab.PushedValue(pc)
	if !ok {
		// truncated immediate at the tail of the code; Analyze already
		// rejects this case, so Step should never observe it.
		return
	}
	h.PushedValues[pc] = value

	if value >= uint64(len(ab.Code)) || !ab.IsJumpdest(value) {
		h.PushHints.OrderedInsert(pc, hint.PushNumericVal)
		f.pushItem(nil)
		return
	}
	f.pushItem(&PushedItem{Value: value, PushPC: pc})
}

func (s *Session) stepPop(f *frame, h *hint.PJHint) {
	item := f.pop()
	if item != nil && item.NextJump == nil {
		h.PushHints.OrInsert(item.PushPC, hint.PushUnknown)
	}
}

func (s *Session) stepJump(f *frame, h *hint.PJHint, ctx host.StepContext) {
	pc := ctx.PC
	if len(ctx.Stack) > 0 {
		h.TargetsOf(pc).Add(ctx.Stack[len(ctx.Stack)-1])
	}

	taggedPushPCs := f.sweepUntagged(pc, f.step)
	untaggedN := len(taggedPushPCs)
	for _, pushPC := range taggedPushPCs {
		h.TagsOf(pc).Add(pushPC)
	}

	item := f.pop()
	if item == nil {
		return
	}
	h.PushesOf(pc).Add(item.PushPC)

	pjmp := item.NextJump
	if pjmp == nil {
		return
	}

	switch {
	case pjmp.Step != f.step && pjmp.PC+1 == item.Value:
		h.JumpHints.OrderedInsert(pc, hint.JumpReturn)
		h.PushHints.OrderedInsert(item.PushPC, hint.PushReturnAddr)
		h.JumpHints.OrderedInsert(pjmp.PC, hint.JumpCall)
		for _, p := range h.PushesOf(pjmp.PC).ToSlice() {
			h.PushHints.OrderedInsert(p.(uint64), hint.PushCalleeAddr)
		}
	case untaggedN == 0:
		h.JumpHints.OrderedInsert(pc, hint.JumpReturn)
		h.PushHints.OrderedInsert(item.PushPC, hint.PushReturnAddr)
	}
}

func (s *Session) stepJumpi(f *frame, h *hint.PJHint, pc uint64) {
	h.JumpHints.OrderedInsert(pc, hint.JumpBlock)

	items := f.popN(2) // [dest, cond], dest was on top
	dest, cond := items[0], items[1]
	if dest != nil {
		h.PushHints.OrderedInsert(dest.PushPC, hint.PushBlockAddr)
	}
	if cond != nil {
		h.PushHints.OrderedInsert(cond.PushPC, hint.PushNumericVal)
	}
}

func (s *Session) stepDefault(f *frame, h *hint.PJHint, op vm.OpCode) {
	n := op.Inputs()
	for _, item := range f.popN(n) {
		if item != nil {
			h.PushHints.OrderedInsert(item.PushPC, hint.PushNumericVal)
		}
	}
	f.pushNone(op.Outputs())
}
