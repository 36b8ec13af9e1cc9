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

import "testing"

// code from spec.md §8 scenario 1:
// PUSH1 08 JUMP JUMPDEST STOP JUMPDEST x4
var scenario1 = []byte{0x60, 0x08, 0x56, 0x5B, 0x00, 0x5B, 0x5B, 0x5B, 0x5B}

func TestAnalyzeRoundTrip(t *testing.T) {
	ab, err := Analyze(scenario1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for pc := range ab.PCToIC {
		if _, isInsn := ab.PCToIC[pc]; !isInsn {
			continue
		}
		ic := ab.PCToIC[pc]
		if got := ab.ICToPC[ic]; got != pc {
			t.Fatalf("round-trip broke: pc=%d -> ic=%d -> pc=%d", pc, ic, got)
		}
	}
	if len(ab.PCToIC) != len(ab.ICToPC) {
		t.Fatalf("pc map and ic map sizes differ: %d vs %d", len(ab.PCToIC), len(ab.ICToPC))
	}
	// PUSH1 08 occupies pc 0-1 as one instruction (ic 0); JUMP is pc 2
	// (ic 1); JUMPDEST pc 3 (ic 2); STOP pc 4 (ic 3); four more
	// JUMPDESTs at pc 5..8 (ic 4..7).
	if ab.NumInstructions() != 8 {
		t.Fatalf("expected 8 instructions, got %d", ab.NumInstructions())
	}
	if pc, ok := ab.NextInsnPC(0); !ok || pc != 2 {
		t.Fatalf("expected next instruction after ic=0 to be pc=2, got pc=%d ok=%v", pc, ok)
	}
	if pc, ok := ab.PrevInsnPC(1); !ok || pc != 0 {
		t.Fatalf("expected prev instruction before ic=1 to be pc=0, got pc=%d ok=%v", pc, ok)
	}
	if _, ok := ab.PrevInsnPC(0); ok {
		t.Fatalf("ic=0 has no predecessor")
	}
}

func TestAnalyzeSkipsPushImmediates(t *testing.T) {
	ab, err := Analyze(scenario1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, isInsn := ab.PCToIC[1]; isInsn {
		t.Fatalf("pc=1 is a PUSH1 immediate byte, must not be recorded as an instruction start")
	}
}

func TestAnalyzeTruncatedPush(t *testing.T) {
	code := []byte{0x61, 0x01} // PUSH2 with only one immediate byte
	if _, err := Analyze(code); err == nil {
		t.Fatalf("expected a truncated-push error")
	}
}

func TestIsJumpdest(t *testing.T) {
	ab, err := Analyze(scenario1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ab.IsJumpdest(3) {
		t.Fatalf("pc=3 should be a JUMPDEST")
	}
	if ab.IsJumpdest(1) {
		t.Fatalf("pc=1 is a PUSH1 immediate, must not count as JUMPDEST even though its byte value is 0x08")
	}
	if ab.IsJumpdest(100) {
		t.Fatalf("out-of-range pc should not be a JUMPDEST")
	}
}

func TestAnalyzeEmptyCode(t *testing.T) {
	ab, err := Analyze(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab.NumInstructions() != 0 {
		t.Fatalf("expected 0 instructions for empty code, got %d", ab.NumInstructions())
	}
}
