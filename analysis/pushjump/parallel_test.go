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

package pushjump

import (
	"testing"

	"github.com/edb-core/edb-go/analysis/hint"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/common"
)

func TestRunPosteriorAndRefinementCoversEveryVisitedAddress(t *testing.T) {
	visited := runtime.NewVisitedAddressSet()
	addrs := []runtime.Address{
		runtime.New(common.Address{1}, false),
		runtime.New(common.Address{2}, false),
	}
	hints := make(map[runtime.Address]*hint.PJHint)
	for _, a := range addrs {
		// PUSH1 <target=5>, JUMP, JUMPDEST, STOP: gives RefinePosterior
		// something to do (a strict-call candidate) on every address.
		if _, err := visited.Visit(a, []byte{0x60, 0x05, 0x56, 0x5B, 0x00}); err != nil {
			t.Fatalf("unexpected visit error: %v", err)
		}
		h := hint.NewPJHint(a)
		h.TargetsOf(2).Add(uint64(5))
		h.JumpHints.OrderedInsert(20, hint.JumpCall)
		h.TargetsOf(20).Add(uint64(5))
		hints[a] = h
	}

	if err := RunPosteriorAndRefinement(visited, hints, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, a := range addrs {
		if got := hints[a].JumpHints[2]; got != hint.JumpCall {
			t.Fatalf("address %v: expected the strict-call jump to be lifted to Call, got %v", a, got)
		}
	}
}
