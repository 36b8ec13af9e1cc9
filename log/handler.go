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
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
)

type streamHandler struct {
	mu  sync.Mutex
	w   io.Writer
	fmt Format
}

// StreamHandler writes every Record, formatted by fmt, to w.
func StreamHandler(w io.Writer, fmt Format) Handler {
	return &streamHandler{w: w, fmt: fmt}
}

func (h *streamHandler) Log(r *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(h.fmt.Format(r))
	return err
}

// colorableStdHandler wraps StreamHandler with go-colorable's writer so
// ANSI color codes render correctly on Windows consoles too.
func colorableStdHandler(w io.Writer) Handler {
	return StreamHandler(colorable.NewColorable(toFile(w)), TerminalFormat(true))
}

func toFile(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return os.Stderr
}

// LvlFilterHandler wraps h, dropping any Record more verbose than max.
func LvlFilterHandler(max Lvl, h Handler) Handler {
	return &lvlFilter{max: max, h: h}
}

type lvlFilter struct {
	max Lvl
	h   Handler
}

func (f *lvlFilter) Log(r *Record) error {
	if r.Lvl > f.max {
		return nil
	}
	return f.h.Log(r)
}

// MultiHandler fans a Record out to every handler in hs.
func MultiHandler(hs ...Handler) Handler { return multiHandler(hs) }

type multiHandler []Handler

func (hs multiHandler) Log(r *Record) error {
	var firstErr error
	for _, h := range hs {
		if err := h.Log(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
