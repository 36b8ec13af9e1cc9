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

package sourcemap

import "github.com/edb-core/edb-go/analysis/ast"

// LabelKind discriminates the four SourceLabel variants.
type LabelKind int

const (
	PrimitiveStmt LabelKind = iota
	InlineAssembly
	Tag
	Other
)

func (k LabelKind) String() string {
	switch k {
	case PrimitiveStmt:
		return "PrimitiveStmt"
	case InlineAssembly:
		return "InlineAssembly"
	case Tag:
		return "Tag"
	case Other:
		return "Other"
	default:
		return "invalid LabelKind"
	}
}

// SourceLabel is the per-ic projection result. Only the fields relevant
// to Kind are populated; the rest are left nil/zero:
//
//   - PrimitiveStmt: Stmt, Func, Cntr.
//   - InlineAssembly: Block always set; Stmt set only when the element
//     narrows to a Yul sub-statement inside the block; Func, Cntr.
//   - Tag: Unit.
//   - Other: Scope (nil when there is no enclosing unit at all), Loc.
type SourceLabel struct {
	Kind LabelKind

	Stmt *ast.DebugUnit
	Func *ast.DebugUnit
	Cntr *ast.DebugUnit
	Block *ast.DebugUnit

	Unit *ast.DebugUnit

	Scope *ast.DebugUnit
	Loc   *ast.Loc
}

// IsSource reports whether the label carries source-level statement
// information: true for PrimitiveStmt and InlineAssembly, as §3
// defines is_source().
func (l SourceLabel) IsSource() bool {
	return l.Kind == PrimitiveStmt || l.Kind == InlineAssembly
}
