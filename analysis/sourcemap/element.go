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

// Package sourcemap implements §4.4's source-label projector: parsing
// solc's `s:l:f:j` source map format, the largest-offset-unit lookup
// against the debug-unit index from analysis/ast, and the
// Normal/OverOptimized/Corrupted integrity classification.
package sourcemap

import (
	"strconv"
	"strings"
)

// JumpMarker is the `j` field of a source-map tuple.
type JumpMarker int

const (
	Regular JumpMarker = iota
	In
	Out
	Return
)

func parseJumpMarker(s string) JumpMarker {
	switch s {
	case "i":
		return In
	case "o":
		return Out
	case "-":
		return Return
	default:
		return Regular
	}
}

func (j JumpMarker) String() string {
	switch j {
	case In:
		return "i"
	case Out:
		return "o"
	case Return:
		return "-"
	default:
		return ""
	}
}

// Element is one decoded `s:l:f:j` tuple, indexed implicitly by its
// position (the instruction count) in the sequence returned by
// ParseElements.
type Element struct {
	Offset    int
	Length    int
	FileIndex int
	Jump      JumpMarker
}

// ParseElements decodes solc's semicolon-separated source map string.
// Each `:`-separated field that is empty (or the tuple itself is empty)
// inherits from the immediately preceding tuple, per the standard solc
// source-map compaction scheme.
func ParseElements(raw string) []Element {
	if raw == "" {
		return nil
	}
	tuples := strings.Split(raw, ";")
	out := make([]Element, 0, len(tuples))

	var prev Element
	for _, tuple := range tuples {
		cur := prev
		if tuple != "" {
			fields := strings.Split(tuple, ":")
			if len(fields) > 0 && fields[0] != "" {
				if v, err := strconv.Atoi(fields[0]); err == nil {
					cur.Offset = v
				}
			}
			if len(fields) > 1 && fields[1] != "" {
				if v, err := strconv.Atoi(fields[1]); err == nil {
					cur.Length = v
				}
			}
			if len(fields) > 2 && fields[2] != "" {
				if v, err := strconv.Atoi(fields[2]); err == nil {
					cur.FileIndex = v
				}
			}
			if len(fields) > 3 && fields[3] != "" {
				cur.Jump = parseJumpMarker(fields[3])
			}
		}
		out = append(out, cur)
		prev = cur
	}
	return out
}

func (e Element) End() int { return e.Offset + e.Length }
