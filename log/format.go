// Copyright 2016 by the Authors
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

package log

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Format renders a Record to a line of text.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(r *Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

var lvlColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// TerminalFormat returns a Format that colorizes the level badge when
// useColor is true, and otherwise renders plain logfmt-ish text.
func TerminalFormat(useColor bool) Format {
	return formatFunc(func(r *Record) []byte {
		lvl := r.Lvl.String()
		if useColor {
			if c, ok := lvlColor[r.Lvl]; ok {
				lvl = c.Sprint(lvl)
			}
		}
		ts := r.Time.Format("01-02|15:04:05.000")
		line := fmt.Sprintf("%s[%s] %s%s\n", lvl, ts, r.Msg, formatCtx(r.Ctx))
		return []byte(line)
	})
}

// isTerminal reports whether w is connected to an interactive terminal,
// used to decide whether to colorize output by default.
func isTerminal(w io.Writer) bool {
	type fdGetter interface{ Fd() uintptr }
	f, ok := w.(fdGetter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
