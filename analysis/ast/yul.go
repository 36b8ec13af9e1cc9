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

import "github.com/dlclark/regexp2"

// yulStatementLine matches one Yul statement-shaped line inside a raw
// assembly block: a run of non-brace, non-blank text, optionally
// followed by trailing whitespace/comment noise. Older solc's inline
// assembly AST is either absent or unreliable, so this walks the raw
// text line-by-line rather than attempting a real Yul parse.
var yulStatementLine = regexp2.MustCompile(`[^\s{}][^{}\r\n]*`, regexp2.None)

// yulWalkBlock recurses into every Yul AST node reachable from block,
// collecting the source location of each statement the spec names:
// assignment, variable declaration, break/continue/leave, a function
// call used as a statement, an expression-statement, and the condition
// of each if/for/switch.
func yulWalkBlock(block *Node, collect func(Loc)) {
	if block == nil {
		return
	}
	for _, stmt := range block.FieldArray("statements") {
		yulWalkStatement(stmt, collect)
	}
}

func yulWalkStatement(stmt *Node, collect func(Loc)) {
	switch stmt.NodeType {
	case "YulAssignment", "YulVariableDeclaration", "YulBreak", "YulContinue",
		"YulLeave", "YulExpressionStatement", "YulFunctionCall":
		collect(stmt.Src)
	case "YulIf":
		if cond, ok := stmt.Field("condition"); ok {
			collect(cond.Src)
		}
		if body, ok := stmt.Field("body"); ok {
			yulWalkBlock(body, collect)
		}
	case "YulForLoop":
		if cond, ok := stmt.Field("condition"); ok {
			collect(cond.Src)
		}
		if pre, ok := stmt.Field("pre"); ok {
			yulWalkBlock(pre, collect)
		}
		if body, ok := stmt.Field("body"); ok {
			yulWalkBlock(body, collect)
		}
		if post, ok := stmt.Field("post"); ok {
			yulWalkBlock(post, collect)
		}
	case "YulSwitch":
		if expr, ok := stmt.Field("expression"); ok {
			collect(expr.Src)
		}
		for _, c := range stmt.FieldArray("cases") {
			if body, ok := c.Field("body"); ok {
				yulWalkBlock(body, collect)
			}
		}
	case "YulBlock":
		yulWalkBlock(stmt, collect)
	case "YulFunctionDefinition":
		if body, ok := stmt.Field("body"); ok {
			yulWalkBlock(body, collect)
		}
	default:
		collect(stmt.Src)
	}
}

// fallbackYulLex is the last resort for an InlineAssembly block whose
// Yul AST came back empty (the synthesized-empty case from Prune, or a
// genuinely ancient solc whose AST was never trustworthy to begin
// with): scan the raw source text with yulStatementLine instead of
// parsing it, emitting one location per run of text between braces and
// line breaks, after trimBraces. No tokens are lexed and nothing is
// re-parsed, so a trailing identifier fragment is emitted like any
// other statement text. loc is the InlineAssembly node's own
// location; the returned locations are absolute offsets into the same
// file.
func fallbackYulLex(source string, loc Loc) []Loc {
	if loc.Offset < 0 || loc.Offset+loc.Length > len(source) {
		return nil
	}
	asm := source[loc.Offset : loc.Offset+loc.Length]

	var out []Loc
	m, _ := yulStatementLine.FindStringMatch(asm)
	for m != nil {
		text := m.String()
		// a bare `{` or `}` slipped through as "not all brace": trim it.
		trimmed := trimBraces(text)
		if trimmed.length > 0 {
			out = append(out, Loc{
				Offset:    loc.Offset + m.Index + trimmed.start,
				Length:    trimmed.length,
				FileIndex: loc.FileIndex,
			})
		}
		m, _ = yulStatementLine.FindNextMatch(m)
	}
	return out
}

type trimmedSpan struct {
	start, length int
}

// trimBraces strips leading/trailing `{`, `}`, spaces and tabs a
// line-oriented scan picks up around the actual statement text, and
// drops the span entirely when what remains is exactly the `assembly`
// keyword. A span that merely starts or ends with `assembly` is kept
// as is.
func trimBraces(s string) trimmedSpan {
	start, end := 0, len(s)
	for start < end && (s[start] == '{' || s[start] == '}' || s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == '{' || s[end-1] == '}' || s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	if start >= end {
		return trimmedSpan{}
	}
	if s[start:end] == "assembly" {
		return trimmedSpan{}
	}
	return trimmedSpan{start: start, length: end - start}
}
