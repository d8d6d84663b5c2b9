// Copyright 2021 The go-probeum Authors
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

import "github.com/holiman/uint256"

// opFn is the handler a pre-decoded instruction dispatches to. It consumes
// the current execution state and the instruction itself, and returns the
// index of the next instruction to execute in the analysis's instruction
// stream, or a negative index when the frame has terminated. An instruction
// pointer is modeled as a slice index rather than a native pointer — the
// equivalent realization spec.md §9 calls out explicitly.
type opFn func(state *ExecutionState, ins *instruction) (next int, err error)

// blockInfo is the packed triple every BEGINBLOCK instruction carries:
// the basic block's aggregated gas cost and stack requirements, computed
// once by the analyzer (spec.md §4.3) and checked once per block entry
// (spec.md §4.5) instead of once per instruction.
type blockInfo struct {
	gasCost         uint64
	stackRequired   int
	stackMaxGrowth  int
}

// instruction is a single pre-decoded element of an Analysis's instruction
// stream: a handler paired with its argument. Only one of the argument
// fields is meaningful for any given instruction, selected by opcode:
// PUSH1..PUSH8 use smallPush, PUSH9..PUSH32 use pushValue (a pointer into
// the analysis's constant pool), and BEGINBLOCK/JUMPDEST use block.
// JUMP/JUMPI carry no argument at all — they resolve their target from the
// popped stack operand against the analysis's jumpdest table at runtime.
type instruction struct {
	opcode    OpCode
	fn        opFn
	smallPush uint64
	pushValue *uint256.Int
	block     blockInfo
}
