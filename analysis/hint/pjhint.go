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

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/edb-core/edb-go/analysis/runtime"
)

// PJHint collects everything the push/jump classifier learns about one
// contract's analyzed bytecode: the value every PUSH put on the stack,
// the possible targets and tagging/consumption relationships for every
// JUMP, and the final hint maps both passes write into.
type PJHint struct {
	Addr runtime.Address

	// PushedValues maps a PUSH's pc to the immediate value it pushed.
	PushedValues map[uint64]uint64

	// JumpTargets maps a jump's pc to the set of observed destination
	// pcs (uint64 elements).
	JumpTargets map[uint64]mapset.Set

	// JumpTags maps a jump's pc to the set of push pcs tagged by that
	// jump (see the two-pass classifier's pjmp bookkeeping).
	JumpTags map[uint64]mapset.Set

	// JumpPushes maps a jump's pc to the set of push pcs actually
	// consumed as its argument(s).
	JumpPushes map[uint64]mapset.Set

	PushHints PushHintMap
	JumpHints JumpHintMap
}

func NewPJHint(addr runtime.Address) *PJHint {
	return &PJHint{
		Addr:         addr,
		PushedValues: make(map[uint64]uint64),
		JumpTargets:  make(map[uint64]mapset.Set),
		JumpTags:     make(map[uint64]mapset.Set),
		JumpPushes:   make(map[uint64]mapset.Set),
		PushHints:    NewPushHintMap(),
		JumpHints:    NewJumpHintMap(),
	}
}

// TargetsOf returns the (lazily created) target set for jumpPC.
func (p *PJHint) TargetsOf(jumpPC uint64) mapset.Set {
	return getOrCreate(p.JumpTargets, jumpPC)
}

// TagsOf returns the (lazily created) tag set for jumpPC.
func (p *PJHint) TagsOf(jumpPC uint64) mapset.Set {
	return getOrCreate(p.JumpTags, jumpPC)
}

// PushesOf returns the (lazily created) consumed-push set for jumpPC.
func (p *PJHint) PushesOf(jumpPC uint64) mapset.Set {
	return getOrCreate(p.JumpPushes, jumpPC)
}

func getOrCreate(m map[uint64]mapset.Set, key uint64) mapset.Set {
	s, ok := m[key]
	if !ok {
		s = mapset.NewThreadUnsafeSet()
		m[key] = s
	}
	return s
}
