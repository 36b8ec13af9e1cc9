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

// Package host names the five-callback contract a VM driver invokes
// while replaying a transaction. No driver lives in this module (the VM
// itself is an external collaborator, spec'd but not built), but the
// analysis passes in analysis/pushjump and analysis/calltrace are both
// written as Inspector implementations, adapted from the shape of
// core-coin-go-core's core/vm.Tracer (CaptureStart/CaptureState/
// CaptureFault/CaptureEnd).
package host

import (
	"github.com/edb-core/edb-go/common"
	"github.com/edb-core/edb-go/core/vm"
)

// CallKind distinguishes the cross-contract entry points a Call
// callback may report.
type CallKind int

const (
	CallKindCall CallKind = iota
	CallKindCallCode
	CallKindDelegateCall
	CallKindStaticCall
)

func (k CallKind) String() string {
	switch k {
	case CallKindCall:
		return "call"
	case CallKindCallCode:
		return "callcode"
	case CallKindDelegateCall:
		return "delegatecall"
	case CallKindStaticCall:
		return "staticcall"
	default:
		return "unknown call kind"
	}
}

// StepContext is everything a Step callback needs to drive the
// shadow-stack simulation: the executing contract's address, the pc
// about to run, the opcode at that pc, and a read view of the real
// stack the host VM is maintaining (top of stack last).
type StepContext struct {
	Addr  common.Address
	PC    uint64
	Op    vm.OpCode
	Stack []uint64
}

// InstructionResult is the outcome carried by a CallEnd/CreateEnd
// callback: whether execution reverted, and the returned/deployed
// bytes.
type InstructionResult struct {
	Reverted bool
	Output   []byte
}

// Inspector is the five-callback contract: Step fires once per
// executed instruction; Call/CallEnd bracket a message call;
// Create/CreateEnd bracket a contract deployment. Implementations must
// not block or retain host-owned slices past the callback's return.
type Inspector interface {
	Step(ctx StepContext)
	Call(kind CallKind, from, to common.Address, input []byte)
	CallEnd(result InstructionResult)
	// Create's addr is the deployed-to address, computed by the host
	// from the deployer's nonce (or salt, for CREATE2) before the init
	// code runs; core-coin-go-core's own CaptureStart(from, to, create, ...)
	// always carries `to` for the same reason.
	Create(from, addr common.Address, code []byte)
	CreateEnd(addr common.Address, result InstructionResult)
}
