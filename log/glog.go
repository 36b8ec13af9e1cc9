// Copyright 2017 by the Authors
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

import "sync"

// GlogHandler wraps another Handler behind a runtime-adjustable
// verbosity threshold, named after (and shaped like) go-core's own
// glog.go. cmd/edb does not use it: its -verbosity flag builds a
// fixed LvlFilterHandler instead.
type GlogHandler struct {
	mu   sync.RWMutex
	h    Handler
	lvl  Lvl
}

func NewGlogHandler(h Handler) *GlogHandler {
	return &GlogHandler{h: h, lvl: LvlInfo}
}

func (g *GlogHandler) Verbosity(lvl Lvl) {
	g.mu.Lock()
	g.lvl = lvl
	g.mu.Unlock()
}

func (g *GlogHandler) Log(r *Record) error {
	g.mu.RLock()
	lvl := g.lvl
	g.mu.RUnlock()
	if r.Lvl > lvl {
		return nil
	}
	return g.h.Log(r)
}
