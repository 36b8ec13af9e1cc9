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

import (
	"github.com/edb-core/edb-go/analysis/hint"
	"github.com/edb-core/edb-go/analysis/runtime"
	"github.com/edb-core/edb-go/common"
	"github.com/edb-core/edb-go/core/vm"
	"github.com/edb-core/edb-go/host"
)

// validationCallDepth bounds how far down the real stack Builder looks
// for a pushed return address before believing a JumpCall-hinted JUMP
// actually is one, §4.5's VALIDATION_CALL_DEPTH.
const validationCallDepth = 25

// Builder is the second-pass host.Inspector: it consumes the push/jump
// classifier's hints (already computed by analysis/pushjump) and turns
// the replay's instruction stream into an AnalyzedCallTrace. One
// Builder handles exactly one top-level message call/create; the
// caller constructs a fresh Builder per transaction.
type Builder struct {
	visited *runtime.VisitedAddressSet
	hints   map[runtime.Address]*hint.PJHint
	trace   *AnalyzedCallTrace

	curNode           int
	curIC             uint64
	curBlockStart     uint64
	curBlockStartStep uint64
	curStep           uint64
}

// NewBuilder starts a trace rooted at rootAddr, whose code has already
// been visited (and classified) in visited/hints.
func NewBuilder(rootAddr runtime.Address, visited *runtime.VisitedAddressSet, hints map[runtime.Address]*hint.PJHint) *Builder {
	return &Builder{
		visited: visited,
		hints:   hints,
		trace: &AnalyzedCallTrace{
			Nodes: []FuncNode{{Loc: 0, Addr: rootAddr}},
		},
	}
}

// Trace returns the call trace built so far. Safe to call only after
// the replay that drives this Builder has finished.
func (b *Builder) Trace() *AnalyzedCallTrace { return b.trace }

func (b *Builder) node(id int) *FuncNode { return &b.trace.Nodes[id] }
func (b *Builder) cur() *FuncNode        { return b.node(b.curNode) }

// closeBlock builds the BlockNode ending at the instruction currently
// being stepped (inclusive: the instruction that triggers a block
// boundary, a JUMP/JUMPI or a call/create, belongs to the block it
// ends), tagging it with callTo.
func (b *Builder) closeBlock(callTo uint64) BlockNode {
	return BlockNode{
		Addr:      b.cur().Addr,
		StartIC:   b.curBlockStart,
		InstN:     b.curIC - b.curBlockStart + 1,
		StartStep: b.curBlockStartStep,
		CallTo:    callTo,
	}
}

func (b *Builder) startBlockAt(ic uint64) {
	b.curBlockStart = ic
	b.curIC = ic
	b.curBlockStartStep = b.curStep
}

// enter appends the block that led up to this transition onto the
// current node, links a fresh child node at addr, and moves the cursor
// into it starting at startIC: 0 for a message-call/create (a fresh
// code object's own ic space), or the jump's destination ic for an
// intra-contract call (same code, same ic space).
func (b *Builder) enter(addr runtime.Address, edge Edge, startIC uint64) {
	parentID := b.curNode
	newID := len(b.trace.Nodes)
	callsite := Callsite{IC: b.curIC, Edge: edge}

	parent := b.node(parentID)
	parent.Trace = append(parent.Trace, b.closeBlock(uint64(newID)))
	parent.Children = append(parent.Children, ChildRef{ID: newID, Callsite: callsite})

	b.trace.Nodes = append(b.trace.Nodes, FuncNode{
		Loc:    newID,
		Parent: &ParentRef{ID: parentID, Callsite: callsite},
		Addr:   addr,
	})
	b.curNode = newID
	b.startBlockAt(startIC)
}

// exitMessage closes out the current node on a message-call/create
// boundary and walks up to the nearest ancestor reached by a
// MessageCall edge, resuming execution at that ancestor's parent,
// right after the block that launched the call.
func (b *Builder) exitMessage(result host.InstructionResult) {
	b.cur().Trace = append(b.cur().Trace, b.closeBlock(NoCallTo))
	b.cur().Ret = &result

	node := b.curNode
	for {
		p := b.node(node).Parent
		if p == nil || p.Callsite.Edge.Kind == MessageCall {
			break
		}
		node = p.ID
	}
	p := b.node(node).Parent
	if p == nil {
		// exiting the replay's own root call: nothing left to resume.
		return
	}
	b.curNode = p.ID
	last := b.cur().LastBlock()
	if last == nil {
		b.startBlockAt(0)
		return
	}
	b.startBlockAt(last.EndIC())
}

// validateReturn climbs from the current node through IntraContract
// parent edges only, looking for the first ancestor whose own last
// recorded block ends exactly at destIC, the return address a
// previous call pushed. Stops (reporting no match) at the first
// MessageCall edge or the root, since a return can never cross a
// message-call boundary.
func (b *Builder) validateReturn(destIC uint64) (ancestorID int, ok bool) {
	node := b.curNode
	for {
		p := b.node(node).Parent
		if p == nil || p.Callsite.Edge.Kind != IntraContract {
			return 0, false
		}
		if last := b.node(p.ID).LastBlock(); last != nil && last.EndIC() == destIC {
			return p.ID, true
		}
		node = p.ID
	}
}

// flattenIntoParent merges nodeID's trace and children onto its
// parent, rewiring every child's ParentRef to point at the parent
// directly (preserving the original callsite), and marks nodeID
// discarded. Used by handleReturn's tail-call flattening: a return
// that actually targets a grandparent (or further) ancestor means the
// nodes in between never themselves returned (solc reused their final
// JUMP as a tail call), so they are folded away rather than left
// dangling with no return edge of their own.
func (b *Builder) flattenIntoParent(nodeID int) {
	node := b.node(nodeID)
	parentID := node.Parent.ID
	parent := b.node(parentID)

	parent.Trace = append(parent.Trace, node.Trace...)
	for _, c := range node.Children {
		// a child already discarded in this same flatten chain (the
		// node being merged down one level at a time) would otherwise
		// leave a dangling ChildRef on parent.
		if b.node(c.ID).Discard {
			continue
		}
		b.node(c.ID).Parent = &ParentRef{ID: parentID, Callsite: c.Callsite}
		parent.Children = append(parent.Children, c)
	}
	node.Trace = nil
	node.Children = nil
	node.Parent = nil
	node.Discard = true
	b.curNode = parentID
}

// handleReturn finishes the JUMP that validateReturn already confirmed
// targets destIC. When ancestorID is the current node's own immediate
// parent this is an ordinary return (no flattening, the current node
// keeps its identity). Otherwise one or more intermediate nodes never
// issued their own return (solc reused their last JUMP as a tail call)
// and are flattened into their parents until the cursor reaches
// ancestorID.
func (b *Builder) handleReturn(ancestorID int, destIC uint64) {
	b.cur().Trace = append(b.cur().Trace, b.closeBlock(NoCallTo))
	if immediateParent := b.cur().Parent.ID; ancestorID == immediateParent {
		b.curNode = ancestorID
	} else {
		for b.curNode != ancestorID {
			b.flattenIntoParent(b.curNode)
		}
	}
	b.startBlockAt(destIC)
}

func validateCall(stack []uint64, expectedRet uint64) bool {
	n := len(stack)
	depth := n
	if depth > validationCallDepth {
		depth = validationCallDepth
	}
	for i := 0; i < depth; i++ {
		if stack[n-1-i] == expectedRet {
			return true
		}
	}
	return false
}

// Step implements host.Inspector: the only opcodes that move the
// cursor are JUMP and JUMPI; everything else just keeps accumulating
// into the current block.
func (b *Builder) Step(ctx host.StepContext) {
	addr := b.cur().Addr
	ab, ok := b.visited.Get(addr)
	if !ok {
		return
	}
	ic, ok := ab.PCToIC[ctx.PC]
	if !ok {
		return
	}
	b.curIC = ic

	switch ctx.Op {
	case vm.JUMP:
		b.stepJump(addr, ab, ctx)
	case vm.JUMPI:
		b.stepJumpi(ab, ctx)
	}
	b.curStep++
}

func (b *Builder) stepJump(addr runtime.Address, ab *runtime.AnalyzedBytecode, ctx host.StepContext) {
	if len(ctx.Stack) == 0 {
		return
	}
	destPC := ctx.Stack[len(ctx.Stack)-1]
	destIC, ok := ab.PCToIC[destPC]
	if !ok {
		return
	}

	h := b.hints[addr]
	jumpHint := hint.JumpUnknown
	if h != nil {
		jumpHint = h.JumpHints[ctx.PC]
	}

	if jumpHint == hint.JumpCall && validateCall(ctx.Stack, ctx.PC+1) {
		b.enter(addr, Edge{Kind: IntraContract}, destIC)
		return
	}
	if ancestorID, ok := b.validateReturn(destIC); ok {
		b.handleReturn(ancestorID, destIC)
		return
	}
	b.cur().Trace = append(b.cur().Trace, b.closeBlock(NoCallTo))
	b.startBlockAt(destIC)
}

func (b *Builder) stepJumpi(ab *runtime.AnalyzedBytecode, ctx host.StepContext) {
	if len(ctx.Stack) < 2 {
		return
	}
	destPC := ctx.Stack[len(ctx.Stack)-1]
	cond := ctx.Stack[len(ctx.Stack)-2]

	b.cur().Trace = append(b.cur().Trace, b.closeBlock(NoCallTo))
	if cond != 0 {
		if destIC, ok := ab.PCToIC[destPC]; ok {
			b.startBlockAt(destIC)
			return
		}
	}
	b.startBlockAt(b.curIC + 1)
}

// Call implements host.Inspector.
func (b *Builder) Call(kind host.CallKind, from, to common.Address, input []byte) {
	b.enter(runtime.New(to, false), Edge{Kind: MessageCall, CallKind: kind}, 0)
}

// CallEnd implements host.Inspector.
func (b *Builder) CallEnd(result host.InstructionResult) { b.exitMessage(result) }

// Create implements host.Inspector.
func (b *Builder) Create(from, addr common.Address, code []byte) {
	b.enter(runtime.New(addr, true), Edge{Kind: MessageCall, CallKind: host.CallKindCall}, 0)
}

// CreateEnd implements host.Inspector.
func (b *Builder) CreateEnd(addr common.Address, result host.InstructionResult) {
	b.exitMessage(result)
}

// Finish closes out whatever block is still open on the current node
// when the replay ends. A trailing STOP/RETURN/REVERT/SELFDESTRUCT
// never triggers a JUMP/JUMPI-driven block boundary, so the builder
// would otherwise lose the node's last block entirely. Call this
// exactly once, after the driving replay has delivered its last Step.
func (b *Builder) Finish() {
	if b.curIC < b.curBlockStart {
		return
	}
	b.cur().Trace = append(b.cur().Trace, b.closeBlock(NoCallTo))
}
