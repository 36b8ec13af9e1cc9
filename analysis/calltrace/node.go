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

// Package calltrace builds the §4.5/§4.6 call trace: a second replay
// pass, driven by the same host.Inspector contract analysis/pushjump
// uses, that turns a flat instruction stream into a tree of FuncNodes
// connected by message-call and intra-contract jump edges, then
// calibrates each block's source-level granularity against a
// sourcemap.RefinedSourceMap.
package calltrace

import (
	"math"

	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/analysis/sourcemap"
	"github.com/edb-core/edb-go/host"
)

// NoCallTo marks a BlockNode that does not end by handing control to a
// child node, either because it is a terminal block (the function
// itself returns or halts there) or because it is the first half of a
// calibrator split, which carries NoCallTo as a placeholder. Grounded on §4.6's own
// choice of math.MaxUint64 as the sentinel, to keep CallTo a plain
// uint64 rather than a pointer.
const NoCallTo = uint64(math.MaxUint64)

// EdgeKind distinguishes a cross-contract message-call transition from
// an intra-contract jump-to-function-and-back transition.
type EdgeKind int

const (
	IntraContract EdgeKind = iota
	MessageCall
)

func (k EdgeKind) String() string {
	if k == MessageCall {
		return "message-call"
	}
	return "intra-contract"
}

// Edge records how control passed from a parent FuncNode into a child:
// an IntraContract edge is a plain JUMP recognized as a call by the
// push/jump classifier; a MessageCall edge is a CALL/CALLCODE/
// DELEGATECALL/STATICCALL/CREATE/CREATE2 boundary, which also carries
// the host.CallKind the boundary crossed with.
type Edge struct {
	Kind     EdgeKind
	CallKind host.CallKind
}

// Callsite pairs the instruction count a transition occurred at with
// the Edge it crossed.
type Callsite struct {
	IC   uint64
	Edge Edge
}

// CalibrationPoint is one instruction within a block whose projected
// SourceLabel changed from its predecessor and is itself a source
// statement (SourceLabel.IsSource()): the raw material the calibrator
// in calibrate.go groups into per-block referenced-function counts.
type CalibrationPoint struct {
	IC    uint64
	Label sourcemap.SourceLabel
}

// BlockNode is one straight-line run of instructions inside a single
// FuncNode: the builder starts a new block only at JUMP/JUMPI and
// call/create boundaries, so a JUMPDEST reached by falling through can
// sit inside a block, and it
// ends either by falling into a child node (CallTo != NoCallTo) or by
// halting/returning/continuing at the node's own next block.
type BlockNode struct {
	Addr      runtime.Address
	StartIC   uint64
	InstN     uint64
	StartStep uint64
	CallTo    uint64

	// CalibrationPoints is filled in by the calibrator, keyed by ic.
	CalibrationPoints map[uint64]CalibrationPoint
}

// EndIC returns the instruction count one past the block's last
// instruction.
func (b BlockNode) EndIC() uint64 { return b.StartIC + b.InstN }

// Depth tracks how deep a FuncNode sits along two independent axes:
// Message counts MessageCall edges from the root and resets the
// IntraContract counter to zero at every crossing, so a node's
// "function call depth within its own contract" is always relative to
// its nearest message-call ancestor.
type Depth struct {
	Message       uint64
	IntraContract uint64
}

// ParentRef/ChildRef name the Callsite a parent/child link was made at,
// alongside the linked node's index in AnalyzedCallTrace.Nodes.
type ParentRef struct {
	ID       int
	Callsite Callsite
}

type ChildRef struct {
	ID       int
	Callsite Callsite
}

// FuncNode is one call-trace node: either the whole replay's root
// message call, a nested message call, or an intra-contract function
// activation recognized by the push/jump classifier.
type FuncNode struct {
	Loc        int
	Parent     *ParentRef
	Children   []ChildRef
	ChildIndex int
	Trace      []BlockNode
	Ret        *host.InstructionResult
	Addr       runtime.Address
	Depth      *Depth

	// Discard marks a node flattened into its parent by the
	// flatten-by-return tail-call handling in builder.go: its Trace and
	// Children have already been moved onto the parent and must not be
	// visited again.
	Discard bool
}

// LastBlock returns the node's most recently appended block, or nil if
// it has none yet.
func (n *FuncNode) LastBlock() *BlockNode {
	if len(n.Trace) == 0 {
		return nil
	}
	return &n.Trace[len(n.Trace)-1]
}

// AnalyzedCallTrace is the §4.5/§4.6 output: a flat arena of FuncNodes
// addressed by integer index (node 0 is always the replay's root),
// linked both ways so a consumer can walk down via Children or up via
// Parent without chasing pointers through the whole tree.
type AnalyzedCallTrace struct {
	Nodes      []FuncNode
	Calibrated bool
}

// Root returns the whole trace's entry node, or nil for an empty trace.
func (t *AnalyzedCallTrace) Root() *FuncNode {
	if len(t.Nodes) == 0 {
		return nil
	}
	return &t.Nodes[0]
}
