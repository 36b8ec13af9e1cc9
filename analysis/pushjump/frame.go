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

// Package pushjump implements the §4.2 push/jump classifier: the
// dynamic shadow-stack simulation that runs in lockstep with a
// host.Inspector, the posterior heuristic pass, and the optional
// source-map refinement pass.
package pushjump

import "github.com/edb-core/edb-go/analysis/runtime"

// NextJump records which JUMP first tagged a still-live PushedItem, and
// at what step: the (pjmp_pc, pjmp_step) pair §4.2 reads back when the
// item is finally popped by some later JUMP.
type NextJump struct {
	PC   uint64
	Step uint64
}

// PushedItem shadows one value pushed onto the real VM stack that is
// still a live candidate for a code address: its immediate value, the
// pc of the PUSH that produced it, and the first JUMP that tagged it
// (nil until tagged).
type PushedItem struct {
	Value    uint64
	PushPC   uint64
	NextJump *NextJump
}

// frame is the per-active-message-call shadow stack. Bottom is index 0,
// top is the last element; positions are stable under PUSH/POP
// (truncate/append at the end only), so DUP/SWAP/untagged bookkeeping
// can address slots by plain int index.
type frame struct {
	addr     runtime.Address
	shadow   []*PushedItem
	step     uint64
	untagged map[int]struct{}
}

func newFrame(addr runtime.Address) *frame {
	return &frame{addr: addr, untagged: make(map[int]struct{})}
}

// pushItem appends item (nil for a proven-numeric push) to the top of
// the shadow stack, marking the new slot untagged iff item is live.
func (f *frame) pushItem(item *PushedItem) {
	f.shadow = append(f.shadow, item)
	if item != nil {
		f.untagged[len(f.shadow)-1] = struct{}{}
	}
}

// pushNone appends n fresh "proven numeric" slots, as any ordinary
// opcode's outputs are.
func (f *frame) pushNone(n int) {
	for i := 0; i < n; i++ {
		f.shadow = append(f.shadow, nil)
	}
}

// dup duplicates the slot `pos` items from the top (1-based, matching
// DUPk's k) onto a new top slot, carrying over untagged membership.
func (f *frame) dup(pos int) {
	srcIdx := len(f.shadow) - pos
	item := f.shadow[srcIdx]
	f.shadow = append(f.shadow, item)
	newIdx := len(f.shadow) - 1
	if _, ok := f.untagged[srcIdx]; ok {
		f.untagged[newIdx] = struct{}{}
	}
}

// swap exchanges the top slot with the slot `pos` items below it
// (1-based, matching SWAPk's k), carrying untagged membership along
// with the values.
func (f *frame) swap(pos int) {
	top := len(f.shadow) - 1
	other := top - pos
	f.shadow[top], f.shadow[other] = f.shadow[other], f.shadow[top]

	_, topWasUntagged := f.untagged[top]
	_, otherWasUntagged := f.untagged[other]
	delete(f.untagged, top)
	delete(f.untagged, other)
	if otherWasUntagged {
		f.untagged[top] = struct{}{}
	}
	if topWasUntagged {
		f.untagged[other] = struct{}{}
	}
}

// pop removes and returns the top slot.
func (f *frame) pop() *PushedItem {
	idx := len(f.shadow) - 1
	item := f.shadow[idx]
	f.shadow = f.shadow[:idx]
	delete(f.untagged, idx)
	return item
}

// popN pops n slots from the top, returned nearest-top-first.
func (f *frame) popN(n int) []*PushedItem {
	out := make([]*PushedItem, n)
	for i := 0; i < n; i++ {
		out[i] = f.pop()
	}
	return out
}

// sweepUntagged tags every currently-untagged slot with (pc, step) and
// clears the untagged set, returning the push pcs it tagged; its
// length is the `untagged_n` the JUMP rule in §4.2 branches on.
func (f *frame) sweepUntagged(pc uint64, step uint64) []uint64 {
	tagged := make([]uint64, 0, len(f.untagged))
	for idx := range f.untagged {
		item := f.shadow[idx]
		item.NextJump = &NextJump{PC: pc, Step: step}
		tagged = append(tagged, item.PushPC)
	}
	f.untagged = make(map[int]struct{})
	return tagged
}
