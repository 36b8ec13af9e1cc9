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

package tracers

import (
	"testing"

	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/common"
)

func TestCamelConvertsSnakeCase(t *testing.T) {
	if got := camel("call_trace"); got != "callTrace" {
		t.Fatalf("expected %q, got %q", "callTrace", got)
	}
	if got := camel("push_jump"); got != "pushJump" {
		t.Fatalf("expected %q, got %q", "pushJump", got)
	}
}

func TestNewResolvesRegisteredTracerByEitherCasing(t *testing.T) {
	ctx := Context{
		Root:    runtime.New(common.Address{1}, false),
		Visited: runtime.NewVisitedAddressSet(),
	}
	if _, err := New("call_trace", ctx); err != nil {
		t.Fatalf("unexpected error resolving call_trace: %v", err)
	}
	if _, err := New("callTrace", ctx); err != nil {
		t.Fatalf("unexpected error resolving callTrace: %v", err)
	}
}

func TestNewRejectsUnknownTracer(t *testing.T) {
	if _, err := New("does_not_exist", Context{}); err == nil {
		t.Fatalf("expected an error for an unregistered tracer name")
	}
}

func TestNamesIncludesBuiltins(t *testing.T) {
	names := Names()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	if !seen["callTrace"] || !seen["pushJump"] {
		t.Fatalf("expected callTrace and pushJump in %v", names)
	}
}
