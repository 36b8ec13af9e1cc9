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

// Package tracers is a registry of the analysis core's host.Inspector
// implementations, looked up by name the same way go-core's own tracer
// package looks up its built-in JavaScript tracers: a snake_cased name
// on the command line resolves to a camelCased registry key.
package tracers

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/edb-core/edb-go/analysis/calltrace"
	"github.com/edb-core/edb-go/analysis/hint"
	"github.com/edb-core/edb-go/analysis/pushjump"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/host"
)

// Context bundles everything any registered tracer might need to build
// itself; a given Factory reads only the fields its tracer actually
// uses. call_trace reads Root, Visited and Hints; push_jump reads only
// CodeOf.
type Context struct {
	Root    runtime.Address
	Visited *runtime.VisitedAddressSet
	Hints   map[runtime.Address]*hint.PJHint
	CodeOf  pushjump.CodeProvider
}

// Factory builds a fresh host.Inspector for one replay.
type Factory func(ctx Context) host.Inspector

// all contains every tracer this module ships by name.
var all = make(map[string]Factory)

// camel converts a snake_cased input string into a camelCased output,
// matching the tracer names a caller types on a command line
// ("call_trace" -> "callTrace").
func camel(str string) string {
	pieces := strings.Split(str, "_")
	for i := 1; i < len(pieces); i++ {
		pieces[i] = string(unicode.ToUpper(rune(pieces[i][0]))) + pieces[i][1:]
	}
	return strings.Join(pieces, "")
}

func register(name string, f Factory) {
	all[camel(name)] = f
}

func init() {
	register("call_trace", func(ctx Context) host.Inspector {
		return calltrace.NewBuilder(ctx.Root, ctx.Visited, ctx.Hints)
	})
	register("push_jump", func(ctx Context) host.Inspector {
		return pushjump.NewSession(ctx.CodeOf)
	})
}

// New builds the named tracer, reporting an error if no tracer is
// registered under that name.
func New(name string, ctx Context) (host.Inspector, error) {
	f, ok := all[camel(name)]
	if !ok {
		return nil, fmt.Errorf("tracers: no tracer named %q", name)
	}
	return f(ctx), nil
}

// Names reports every registered tracer's canonical (camelCased) name.
func Names() []string {
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	return names
}
