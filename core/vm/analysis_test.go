// Copyright 2014 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The first instruction of every analysis must be a block-begin, even for
// empty code (spec.md §4.3 rule 1).
func TestAnalyzeFirstInstructionIsBlockBegin(t *testing.T) {
	table := lookupInstructionSet(Cancun)
	for _, code := range [][]byte{{}, {0x00}, {0x60, 0x01, 0x00}} {
		a := analyze(code, table)
		assert.NotEmpty(t, a.instructions)
		assert.Equal(t, JUMPDEST, a.instructions[0].opcode)
	}
}

// A PUSH immediate that runs off the end of code is zero-padded rather than
// reading adjacent bytes or erroring (spec.md §4.3 rule 5).
func TestAnalyzeTruncatedPushIsZeroPadded(t *testing.T) {
	table := lookupInstructionSet(Cancun)
	// PUSH2 with only one immediate byte available.
	code := []byte{0x61, 0xAB}
	a := analyze(code, table)
	var found bool
	for _, ins := range a.instructions {
		if ins.opcode == PUSH2 {
			assert.Equal(t, uint64(0xAB00), ins.smallPush)
			found = true
		}
	}
	assert.True(t, found)
}

// Every JUMPDEST in the source has a jumpdest-table entry pointing at a
// block-begin instruction, and offsets embedded inside a PUSH immediate are
// not mistaken for real JUMPDESTs (spec.md §8 invariant 3).
func TestAnalyzeJumpdestTable(t *testing.T) {
	table := lookupInstructionSet(Cancun)
	// PUSH1 0x5B (a JUMPDEST byte value, embedded in a PUSH immediate);
	// JUMPDEST (a real one at offset 2); STOP.
	code := []byte{0x60, 0x5B, 0x5B, 0x00}
	a := analyze(code, table)

	idx, ok := a.ValidJumpDest(2)
	assert.True(t, ok)
	assert.Equal(t, JUMPDEST, a.instructions[idx].opcode)

	_, ok = a.ValidJumpDest(1)
	assert.False(t, ok, "a JUMPDEST byte embedded in a PUSH immediate must not be a valid jump target")
}

// Re-analyzing identical code yields a structurally equal instruction
// stream and jumpdest table (spec.md §8 round-trip property).
func TestAnalyzeIsDeterministic(t *testing.T) {
	table := lookupInstructionSet(Cancun)
	code := []byte{0x60, 0x03, 0x60, 0x02, 0x01, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xF3}

	a1 := analyze(code, table)
	a2 := analyze(code, table)

	assert.Equal(t, len(a1.instructions), len(a2.instructions))
	assert.Equal(t, len(a1.jumpdests), len(a2.jumpdests))
	for i := range a1.instructions {
		assert.Equal(t, a1.instructions[i].opcode, a2.instructions[i].opcode)
		assert.Equal(t, a1.instructions[i].smallPush, a2.instructions[i].smallPush)
	}
}
