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
	"github.com/holiman/uint256"

	"github.com/probeum/go-probeum/common"
)

// Message is the immutable description of a single call frame's inputs,
// spec.md §3: who is calling, who is being called, with what value, input
// data and code, at what depth, and whether the frame is static.
type Message struct {
	Caller   common.Address
	Address  common.Address // the account whose code/storage this frame executes against
	CodeAddr common.Address // the account the executing code was loaded from (differs from Address under DELEGATECALL/CALLCODE)
	Value    *uint256.Int
	Input    []byte
	Code     []byte
	Gas      uint64
	Depth    int
	Static   bool
	IsCreate bool
	Salt     *uint256.Int // CREATE2 only
}

// Status is the terminal disposition of a finished ExecutionState, exposed
// so an embedder (core.EVM's frame manager) can classify a CallResult
// without reaching into package-internal state.
type Status int

const (
	StatusRunning Status = iota
	StatusStopped
	StatusReturned
	StatusReverted
	StatusFailed
)

func (s Status) Succeeded() bool { return s == StatusStopped || s == StatusReturned }

// ExecutionState is the mutable state threaded through a single frame's
// dispatch loop (spec.md §3): remaining gas, operand stack, byte-addressable
// memory, the most recent sub-call's return data, the frame's own pending
// output, the analyzed instruction stream being executed, and the running
// tally of gas already billed for the currently open basic block.
type ExecutionState struct {
	msg      *Message
	host     Host
	revision Revision

	gasLeft uint64
	stack   *Stack
	memory  *Memory

	returnData []byte // callee's return/revert data, visible to RETURNDATASIZE/RETURNDATACOPY
	output     []byte // this frame's own RETURN/REVERT payload
	status     Status

	analysis *Analysis
	table    *JumpTable
	pc       int

	// currentBlockGas and consumedInBlock let GAS report a per-instruction-
	// accurate remaining-gas figure even though a whole block's constant
	// cost is billed in one lump at BEGINBLOCK: currentBlockGas is that
	// lump, consumedInBlock is how much of it has logically been spent by
	// instructions executed so far this block (dynamic gas is deducted from
	// gasLeft directly and is not counted here), and
	// gasLeft + (currentBlockGas - consumedInBlock) recovers the "as if
	// billed one instruction at a time" remaining gas (spec.md §8 Open
	// Questions).
	currentBlockGas uint64
	consumedInBlock uint64

	refund uint64
}

func newExecutionState(msg *Message, host Host, rev Revision, analysis *Analysis, table *JumpTable) *ExecutionState {
	return &ExecutionState{
		msg:      msg,
		host:     host,
		revision: rev,
		gasLeft:  msg.Gas,
		stack:    newstack(),
		memory:   NewMemory(),
		analysis: analysis,
		table:    table,
	}
}

// gasNow returns the gas remaining as if every instruction's constant cost
// were billed one at a time rather than in a per-block lump sum.
func (s *ExecutionState) gasNow() uint64 {
	return s.gasLeft + s.currentBlockGas - s.consumedInBlock
}

func (s *ExecutionState) release() {
	returnStack(s.stack)
	s.stack = nil
}
