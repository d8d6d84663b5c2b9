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

// ExecutionResult is what Run hands back to its caller: the frame's
// terminal status, what gas it has left to return, any refund it
// accumulated, and its RETURN/REVERT payload.
type ExecutionResult struct {
	Status  Status
	GasLeft uint64
	Refund  uint64
	Output  []byte
}

// Succeeded reports whether the frame ended in STOP or RETURN, as opposed
// to REVERT or a FailureKind termination.
func (r *ExecutionResult) Succeeded() bool { return r.Status.Succeeded() }

// Run drives a single call frame's pre-decoded instruction stream to
// completion: the evmone-style dispatch loop of spec.md §4.4. Every
// instruction except JUMP/JUMPI advances the pc by exactly one; the loop
// itself never inspects opcodes, only instruction-stream indices, so the
// entire cost of understanding "what opcode is this" was already paid by
// the one-time analysis pass.
func Run(msg *Message, host Host, rev Revision) (*ExecutionResult, error) {
	table := lookupInstructionSet(rev)
	analysis := analyzeCached(msg.Code, rev, table)

	state := newExecutionState(msg, host, rev, analysis, table)
	defer state.release()

	for {
		ins := &state.analysis.instructions[state.pc]

		if err := chargeDynamicGas(state, ins); err != nil {
			return nil, err
		}

		next, err := ins.fn(state, ins)
		if err != nil {
			return nil, err
		}
		if next < 0 {
			break
		}
		state.pc = next
	}

	return &ExecutionResult{
		Status:  state.status,
		GasLeft: state.gasLeft,
		Refund:  state.refund,
		Output:  state.output,
	}, nil
}

// chargeDynamicGas resizes memory and bills both the memory-expansion cost
// and any opcode-specific dynamic cost for the instruction about to run.
// Constant costs were already billed in bulk by the block's BEGINBLOCK
// (spec.md §4.5); this is the per-instruction remainder spec.md §4.2
// describes for memory, storage and call pricing.
func chargeDynamicGas(state *ExecutionState, ins *instruction) error {
	op := &state.table[ins.opcode]

	// Constant gas was already billed in bulk at block entry; track how
	// much of that lump this instruction accounts for so GAS can report
	// an as-if-billed-one-at-a-time figure (see ExecutionState.gasNow).
	// The block-begin instruction itself is excluded: its own jumpdestGas
	// share was folded into currentBlockGas by the analyzer, not into a
	// per-instruction constantGas charge here.
	if ins.opcode != JUMPDEST {
		state.consumedInBlock += op.constantGas
	}

	if op.memorySize != nil {
		size, overflow := op.memorySize(state.stack)
		if overflow {
			return newFailure(OutOfMemory)
		}
		if words := toWordSize(size); words*32 > uint64(state.memory.Len()) {
			cost, overflow := memoryGasCost(words * 32)
			if overflow {
				return newFailure(OutOfMemory)
			}
			prevCost, _ := memoryGasCost(uint64(state.memory.Len()))
			delta := cost - prevCost
			if state.gasLeft < delta {
				return newFailure(OutOfGas)
			}
			state.gasLeft -= delta
			state.memory.Resize(words * 32)
		}
	}

	// SSTORE's pricing hook performs the storage write, so a static frame
	// is rejected before that hook runs.
	if ins.opcode == SSTORE && state.msg.Static {
		return newFailure(StaticModeViolation)
	}

	if op.dynamicGas != nil {
		cost, err := op.dynamicGas(state, ins)
		if err != nil {
			return err
		}
		if state.gasLeft < cost {
			return newFailure(OutOfGas)
		}
		state.gasLeft -= cost
	}

	return nil
}
