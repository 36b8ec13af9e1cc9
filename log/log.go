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

// Package log is a minimal structured logger in the style of go-core's
// own log15-derived "log" package: leveled, context-key/value pairs,
// a root logger plus per-component New(ctx...) children, and a
// terminal handler that colorizes output when writing to a tty.
//
// The analysis core uses this package exclusively for recoverable
// warnings (integrity downgrades, skipped propagation, aborted
// flattens), never for control flow.
package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Lvl is a log severity level, ordered least-to-most verbose in
// ascending numeric value so that a handler's threshold check is a
// simple "lvl <= threshold".
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlTrace:
		return "trce"
	case LvlDebug:
		return "dbug"
	case LvlInfo:
		return "info"
	case LvlWarn:
		return "warn"
	case LvlError:
		return "eror"
	case LvlCrit:
		return "crit"
	default:
		return "unkn"
	}
}

// Record is a single emitted log line.
type Record struct {
	Time  time.Time
	Lvl   Lvl
	Msg   string
	Ctx   []interface{}
	Call  stack.Call
}

// Handler processes a Record, e.g. by formatting and writing it out.
type Handler interface {
	Log(r *Record) error
}

// Logger emits Records, merging its own bound context with each call's.
type Logger interface {
	New(ctx ...interface{}) Logger
	SetHandler(h Handler)

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}

	mu sync.RWMutex
	h  Handler
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
	l.mu.RLock()
	child.h = l.h
	l.mu.RUnlock()
	return child
}

func (l *logger) SetHandler(h Handler) {
	l.mu.Lock()
	l.h = h
	l.mu.Unlock()
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	l.mu.RLock()
	h := l.h
	l.mu.RUnlock()
	if h == nil {
		return
	}
	r := &Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  append(append([]interface{}{}, l.ctx...), ctx...),
		Call: stack.Caller(2),
	}
	_ = h.Log(r)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

var root = &logger{h: defaultHandler()}

func defaultHandler() Handler {
	if isTerminal(os.Stderr) {
		return colorableStdHandler(os.Stderr)
	}
	return StreamHandler(os.Stderr, TerminalFormat(false))
}

// Root returns the root logger, the parent of every New(...) child that
// was not created from a more specific Logger.
func Root() Logger { return root }

func New(ctx ...interface{}) Logger { return root.New(ctx...) }

func Trace(msg string, ctx ...interface{}) { root.write(LvlTrace, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { root.write(LvlDebug, msg, ctx) }
func Info(msg string, ctx ...interface{})  { root.write(LvlInfo, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.write(LvlWarn, msg, ctx) }
func Error(msg string, ctx ...interface{}) { root.write(LvlError, msg, ctx) }
func Crit(msg string, ctx ...interface{})  { root.write(LvlCrit, msg, ctx) }

// formatCtx renders the trailing key=value pairs the way log15 does:
// space-separated, values quoted if they contain whitespace.
func formatCtx(ctx []interface{}) string {
	out := ""
	for i := 0; i+1 < len(ctx); i += 2 {
		k := fmt.Sprint(ctx[i])
		v := fmt.Sprintf("%v", ctx[i+1])
		out += " " + k + "=" + quoteIfNeeded(v)
	}
	return out
}

func quoteIfNeeded(v string) string {
	for _, r := range v {
		if r == ' ' || r == '\t' || r == '"' {
			return fmt.Sprintf("%q", v)
		}
	}
	if v == "" {
		return `""`
	}
	return v
}
