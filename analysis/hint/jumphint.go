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

// Package hint holds the two closed, flat lattices the push/jump
// classifier writes into (JumpHint, PushHint), the named monotone map
// operations that enforce their ordering, and the per-contract PJHint
// aggregate.
package hint

// JumpHint classifies what a JUMP/JUMPI instruction does. The lattice is
// flat: Unknown is bottom, Block/Call/Return are pairwise incomparable,
// and a write may only move a pc's hint up from Unknown to one of the
// three, never sideways or down.
type JumpHint int

const (
	JumpUnknown JumpHint = iota
	JumpBlock
	JumpCall
	JumpReturn
)

func (h JumpHint) String() string {
	switch h {
	case JumpUnknown:
		return "Unknown"
	case JumpBlock:
		return "Block"
	case JumpCall:
		return "Call"
	case JumpReturn:
		return "Return"
	default:
		return "invalid JumpHint"
	}
}

// leq reports whether h <= other in the lattice: true for h == other,
// or h == JumpUnknown and other is anything.
func (h JumpHint) leq(other JumpHint) bool {
	if h == other {
		return true
	}
	return h == JumpUnknown
}
