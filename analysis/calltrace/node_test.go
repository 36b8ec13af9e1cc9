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

package calltrace

import "testing"

func TestBlockNodeEndIC(t *testing.T) {
	b := BlockNode{StartIC: 10, InstN: 5}
	if got := b.EndIC(); got != 15 {
		t.Fatalf("expected EndIC()=15, got %d", got)
	}
}

func TestFuncNodeLastBlock(t *testing.T) {
	n := &FuncNode{}
	if n.LastBlock() != nil {
		t.Fatalf("expected nil LastBlock on an empty node")
	}
	n.Trace = append(n.Trace, BlockNode{StartIC: 0, InstN: 3}, BlockNode{StartIC: 3, InstN: 2})
	last := n.LastBlock()
	if last == nil || last.StartIC != 3 {
		t.Fatalf("expected the last appended block (StartIC=3), got %+v", last)
	}
}

func TestAnalyzedCallTraceRoot(t *testing.T) {
	var empty AnalyzedCallTrace
	if empty.Root() != nil {
		t.Fatalf("expected nil Root() on an empty trace")
	}
	tr := &AnalyzedCallTrace{Nodes: []FuncNode{{Loc: 0}, {Loc: 1}}}
	if got := tr.Root(); got == nil || got.Loc != 0 {
		t.Fatalf("expected Root() to be node 0, got %+v", got)
	}
}

func TestEdgeKindString(t *testing.T) {
	if IntraContract.String() != "intra-contract" {
		t.Fatalf("unexpected IntraContract.String(): %q", IntraContract.String())
	}
	if MessageCall.String() != "message-call" {
		t.Fatalf("unexpected MessageCall.String(): %q", MessageCall.String())
	}
}

func TestNoCallToIsMaxUint64Sentinel(t *testing.T) {
	if NoCallTo != ^uint64(0) {
		t.Fatalf("expected NoCallTo to be the all-ones uint64 sentinel, got %d", NoCallTo)
	}
}
