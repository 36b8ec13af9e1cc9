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

package ast

import "fmt"

// UnitKind discriminates the four DebugUnit variants.
type UnitKind int

const (
	UnitPrimitive UnitKind = iota
	UnitFunction
	UnitContract
	UnitInlineAssembly
)

func (k UnitKind) String() string {
	switch k {
	case UnitPrimitive:
		return "Primitive"
	case UnitFunction:
		return "Function"
	case UnitContract:
		return "Contract"
	case UnitInlineAssembly:
		return "InlineAssembly"
	default:
		return "invalid UnitKind"
	}
}

// DebugUnit is a leaf statement, a function/modifier scope, a contract
// scope, or an inline-assembly block together with its Yul
// sub-statement locations. Every variant carries a unit location and
// (for InlineAssembly) the locations of its own nested sub-statements,
// so the source-label projector can narrow into the block instead of
// treating it as one opaque span.
type DebugUnit struct {
	Kind          UnitKind
	Loc           Loc
	SubStatements []Loc

	// IsModifier is only meaningful for a UnitFunction unit: it
	// distinguishes a ModifierDefinition's scope from an ordinary
	// FunctionDefinition's, which the call-trace calibrator (§4.6)
	// needs to tell a modifier invocation apart from a normal call.
	IsModifier bool
}

func (u DebugUnit) String() string {
	return fmt.Sprintf("%s@%s", u.Kind, u.Loc)
}

// ErrOverlap is returned by the integrity check when two units in the
// same file overlap, a fatal extractor error per §4.3.
type ErrOverlap struct {
	FileIndex int
	Prev, Next DebugUnit
}

func (e *ErrOverlap) Error() string {
	return fmt.Sprintf("ast: overlapping debug units in file %d: %s and %s", e.FileIndex, e.Prev, e.Next)
}

// CheckIntegrity verifies that units (already sorted by offset) never
// overlap: next.start >= prev.start + prev.length.
func CheckIntegrity(fileIndex int, units []DebugUnit) error {
	for i := 1; i < len(units); i++ {
		prev, next := units[i-1], units[i]
		if next.Loc.Offset < prev.Loc.Offset+prev.Loc.Length {
			return &ErrOverlap{FileIndex: fileIndex, Prev: prev, Next: next}
		}
	}
	return nil
}
