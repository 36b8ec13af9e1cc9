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

package hint

import "fmt"

// Debug gates the monotonicity/equality assertions below. Off by
// default: a violation is a programmer error in the classifier's rule
// ordering, not something a caller should crash on in production;
// analysis code that wants the assertion enabled sets this during
// tests or a debug CLI run (mirrors core-coin-go-core's vm.Config.Debug
// idiom).
var Debug = false

// JumpHintMap is a pc -> JumpHint map whose only legal writes go through
// the three named operations below; a bare `m[pc] = v` would bypass the
// lattice-monotonicity invariant the classifier depends on.
type JumpHintMap map[uint64]JumpHint

func NewJumpHintMap() JumpHintMap { return make(JumpHintMap) }

// OrderedInsert asserts the new value is >= whatever was there (a no-op
// on equal) and panics otherwise; a violation is a programmer error in
// the classifier's rule ordering, not a user-facing failure.
func (m JumpHintMap) OrderedInsert(pc uint64, v JumpHint) {
	if Debug {
		if old, ok := m[pc]; ok && !old.leq(v) {
			panic(fmt.Sprintf("hint: non-monotone JumpHint write at pc=%d: %s -> %s", pc, old, v))
		}
	}
	m[pc] = v
}

// EqualInsert asserts the new value equals whatever was there, panicking
// on any overwrite that disagrees.
func (m JumpHintMap) EqualInsert(pc uint64, v JumpHint) {
	if Debug {
		if old, ok := m[pc]; ok && old != v {
			panic(fmt.Sprintf("hint: conflicting JumpHint write at pc=%d: %s != %s", pc, old, v))
		}
	}
	m[pc] = v
}

// OrInsert writes v only if pc is absent; a no-op otherwise.
func (m JumpHintMap) OrInsert(pc uint64, v JumpHint) {
	if _, ok := m[pc]; ok {
		return
	}
	m[pc] = v
}

// PushHintMap is the PushHint analogue of JumpHintMap.
type PushHintMap map[uint64]PushHint

func NewPushHintMap() PushHintMap { return make(PushHintMap) }

func (m PushHintMap) OrderedInsert(pc uint64, v PushHint) {
	if Debug {
		if old, ok := m[pc]; ok && !old.leq(v) {
			panic(fmt.Sprintf("hint: non-monotone PushHint write at pc=%d: %s -> %s", pc, old, v))
		}
	}
	m[pc] = v
}

func (m PushHintMap) EqualInsert(pc uint64, v PushHint) {
	if Debug {
		if old, ok := m[pc]; ok && old != v {
			panic(fmt.Sprintf("hint: conflicting PushHint write at pc=%d: %s != %s", pc, old, v))
		}
	}
	m[pc] = v
}

func (m PushHintMap) OrInsert(pc uint64, v PushHint) {
	if _, ok := m[pc]; ok {
		return
	}
	m[pc] = v
}
