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

// PushHint classifies what a pushed stack value represents. Same flat
// lattice shape as JumpHint: Unknown is bottom, the four named variants
// are pairwise incomparable.
type PushHint int

const (
	PushUnknown PushHint = iota
	PushCalleeAddr
	PushReturnAddr
	PushBlockAddr
	PushNumericVal
)

func (h PushHint) String() string {
	switch h {
	case PushUnknown:
		return "Unknown"
	case PushCalleeAddr:
		return "CalleeAddr"
	case PushReturnAddr:
		return "ReturnAddr"
	case PushBlockAddr:
		return "BlockAddr"
	case PushNumericVal:
		return "NumericVal"
	default:
		return "invalid PushHint"
	}
}

func (h PushHint) leq(other PushHint) bool {
	if h == other {
		return true
	}
	return h == PushUnknown
}
