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

package runtime

import (
	"fmt"

	vm "github.com/edb-core/edb-go/core/vm"
)

// AnalyzedBytecode is the §4.1 bytecode analyzer's output: immutable,
// reversible maps between byte-offset program counters and instruction
// counts, built once per observed Address by a single linear scan.
type AnalyzedBytecode struct {
	Code     []byte
	PCToIC   map[uint64]uint64
	ICToPC   map[uint64]uint64
	numInsns uint64
}

// errTruncatedPush is the fatal analysis error §7 names: a PUSH
// instruction whose immediate bytes run past the end of the code.
type errTruncatedPush struct {
	pc   uint64
	op   vm.OpCode
	size int
	len  int
}

func (e *errTruncatedPush) Error() string {
	return fmt.Sprintf("truncated %s immediate at pc=%d: need %d bytes, only %d remain", e.op, e.pc, e.size, e.len-int(e.pc)-1)
}

// Analyze performs the §4.1 linear scan: every byte that starts an
// instruction gets a pc<->ic entry; PUSH1..PUSH32's immediate bytes are
// skipped, never recorded as instruction starts.
func Analyze(code []byte) (*AnalyzedBytecode, error) {
	ab := &AnalyzedBytecode{
		Code:   code,
		PCToIC: make(map[uint64]uint64, len(code)),
		ICToPC: make(map[uint64]uint64, len(code)),
	}

	var pc, cumulativePush uint64
	var ic uint64
	for pc < uint64(len(code)) {
		ic = pc - cumulativePush
		ab.PCToIC[pc] = ic
		ab.ICToPC[ic] = pc

		op := vm.OpCode(code[pc])
		if op.IsPush() {
			size := op.PushSize()
			// solc never actually truncates a PUSH at the end of valid
			// deployed code, but a corrupted/partial bytecode blob (e.g.
			// a replay that only captured part of a CREATE's init code)
			// can; reject it with errTruncatedPush rather than reading
			// out of bounds.
			if size > 0 && int(pc)+1+size > len(code) {
				return nil, &errTruncatedPush{pc: pc, op: op, size: size, len: len(code)}
			}
			pc += uint64(size)
			cumulativePush += uint64(size)
		}
		pc++
	}
	ab.numInsns = ic + 1
	if len(code) == 0 {
		ab.numInsns = 0
	}
	return ab, nil
}

// NumInstructions returns the total instruction count (the ic one past
// the last valid instruction).
func (ab *AnalyzedBytecode) NumInstructions() uint64 { return ab.numInsns }

// IsJumpdest reports whether pc both lies within the code and names a
// valid JUMPDEST landing pad (an instruction start, not a PUSH
// immediate byte, whose opcode is JUMPDEST).
func (ab *AnalyzedBytecode) IsJumpdest(pc uint64) bool {
	if pc >= uint64(len(ab.Code)) {
		return false
	}
	if _, isInsn := ab.PCToIC[pc]; !isInsn {
		return false
	}
	return vm.OpCode(ab.Code[pc]) == vm.JUMPDEST
}

// PushedValue decodes the immediate value a PUSH instruction at pc
// carries, big-endian, zero-extended to 64 bits (a code address or a
// small numeric literal both fit; a genuinely larger literal is not a
// candidate jump target regardless, so truncation is harmless here).
// Only valid when pc names a PUSH instruction; ok is false otherwise.
func (ab *AnalyzedBytecode) PushedValue(pc uint64) (value uint64, ok bool) {
	op, exists := ab.OpAt(pc)
	if !exists || !op.IsPush() {
		return 0, false
	}
	size := op.PushSize()
	if size == 0 {
		return 0, true
	}
	start := pc + 1
	end := start + uint64(size)
	if end > uint64(len(ab.Code)) {
		return 0, false
	}
	for _, b := range ab.Code[start:end] {
		value = value<<8 | uint64(b)
	}
	return value, true
}

// OpAt returns the opcode at pc, or (0, false) if pc is out of range.
func (ab *AnalyzedBytecode) OpAt(pc uint64) (vm.OpCode, bool) {
	if pc >= uint64(len(ab.Code)) {
		return 0, false
	}
	return vm.OpCode(ab.Code[pc]), true
}

// NextInsnPC returns the pc of the instruction immediately following
// the one at ic, or (0, false) if ic was the last instruction.
func (ab *AnalyzedBytecode) NextInsnPC(ic uint64) (uint64, bool) {
	pc, ok := ab.ICToPC[ic+1]
	return pc, ok
}

// PrevInsnPC returns the pc of the instruction immediately preceding
// the one at ic, or (0, false) if ic == 0.
func (ab *AnalyzedBytecode) PrevInsnPC(ic uint64) (uint64, bool) {
	if ic == 0 {
		return 0, false
	}
	pc, ok := ab.ICToPC[ic-1]
	return pc, ok
}

// NextInsnPCFromPC and PrevInsnPCFromPC are NextInsnPC/PrevInsnPC
// addressed by pc instead of ic, for callers (like the posterior
// classifier pass) that only ever deal in pcs.
func (ab *AnalyzedBytecode) NextInsnPCFromPC(pc uint64) (uint64, bool) {
	ic, ok := ab.PCToIC[pc]
	if !ok {
		return 0, false
	}
	return ab.NextInsnPC(ic)
}

func (ab *AnalyzedBytecode) PrevInsnPCFromPC(pc uint64) (uint64, bool) {
	ic, ok := ab.PCToIC[pc]
	if !ok {
		return 0, false
	}
	return ab.PrevInsnPC(ic)
}
