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
	"sort"

	"github.com/holiman/uint256"

	"github.com/probeum/go-probeum/common"
	"github.com/probeum/go-probeum/crypto"
)

func opPop(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.pop()
	return state.pc + 1, nil
}

func opMload(state *ExecutionState, ins *instruction) (int, error) {
	v := state.stack.peek()
	offset := v.Uint64()
	v.SetBytes(state.memory.GetPtr(int64(offset), 32))
	return state.pc + 1, nil
}

// opSha3 replaces its (offset, size) operands with the Keccak-256 hash of
// that memory range; memory was already expanded to cover it.
func opSha3(state *ExecutionState, ins *instruction) (int, error) {
	offset, size := state.stack.pop(), state.stack.peek()
	var data []byte
	if !size.IsZero() {
		data = state.memory.GetPtr(int64(offset.Uint64()), int64(size.Uint64()))
	}
	size.SetBytes(crypto.Keccak256(data))
	return state.pc + 1, nil
}

func opMstore(state *ExecutionState, ins *instruction) (int, error) {
	offset, val := state.stack.pop(), state.stack.pop()
	state.memory.Set32(offset.Uint64(), &val)
	return state.pc + 1, nil
}

func opMstore8(state *ExecutionState, ins *instruction) (int, error) {
	offset, val := state.stack.pop(), state.stack.pop()
	state.memory.Set(offset.Uint64(), 1, []byte{byte(val.Uint64())})
	return state.pc + 1, nil
}

func opSload(state *ExecutionState, ins *instruction) (int, error) {
	key := state.stack.peek()
	hash := common32(key)
	val := state.host.GetStorage(state.msg.Address, hash)
	key.SetBytes(val.Bytes())
	return state.pc + 1, nil
}

func opSstore(state *ExecutionState, ins *instruction) (int, error) {
	if state.msg.Static {
		return 0, newFailure(StaticModeViolation)
	}
	// the dynamicGas hook already performed the write while pricing it
	state.stack.pop()
	state.stack.pop()
	return state.pc + 1, nil
}

func opTload(state *ExecutionState, ins *instruction) (int, error) {
	key := state.stack.peek()
	val := state.host.GetTransientStorage(state.msg.Address, common32(key))
	key.SetBytes(val.Bytes())
	return state.pc + 1, nil
}

func opTstore(state *ExecutionState, ins *instruction) (int, error) {
	if state.msg.Static {
		return 0, newFailure(StaticModeViolation)
	}
	key, val := state.stack.pop(), state.stack.pop()
	state.host.SetTransientStorage(state.msg.Address, common32(&key), valToHash(&val))
	return state.pc + 1, nil
}

func opMcopy(state *ExecutionState, ins *instruction) (int, error) {
	dst, src, length := state.stack.pop(), state.stack.pop(), state.stack.pop()
	state.memory.Copy(dst.Uint64(), src.Uint64(), length.Uint64())
	return state.pc + 1, nil
}

// opJump and opJumpi resolve their target against the analysis's jumpdest
// table at runtime — unlike every other operand, a jump destination is not
// known until the value is popped off the stack, so it cannot be baked
// into the instruction at analysis time (spec.md §4.3 rule 6's deferred
// plumbing).
func opJump(state *ExecutionState, ins *instruction) (int, error) {
	dest := state.stack.pop()
	if !dest.IsUint64() {
		return 0, newFailure(BadJumpDestination)
	}
	idx, ok := state.analysis.ValidJumpDest(dest.Uint64())
	if !ok {
		return 0, newFailure(BadJumpDestination)
	}
	return idx, nil
}

func opJumpi(state *ExecutionState, ins *instruction) (int, error) {
	dest, cond := state.stack.pop(), state.stack.pop()
	if cond.IsZero() {
		return state.pc + 1, nil
	}
	if !dest.IsUint64() {
		return 0, newFailure(BadJumpDestination)
	}
	idx, ok := state.analysis.ValidJumpDest(dest.Uint64())
	if !ok {
		return 0, newFailure(BadJumpDestination)
	}
	return idx, nil
}

func opPc(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(uint64(state.pc)))
	return state.pc + 1, nil
}

func opMsize(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(uint64(state.memory.Len())))
	return state.pc + 1, nil
}

func opGasOp(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(state.gasNow()))
	return state.pc + 1, nil
}

// opBeginBlock is the handler for every synthetic BEGINBLOCK marker and
// every real JUMPDEST: it enforces the block's pre-computed gas and stack
// requirements in one shot (spec.md §4.5) before falling through to the
// block's first real instruction.
func opBeginBlock(state *ExecutionState, ins *instruction) (int, error) {
	b := ins.block
	if state.gasLeft < b.gasCost {
		return 0, newFailure(OutOfGas)
	}
	if state.stack.len() < b.stackRequired {
		return 0, newFailure(StackUnderflow)
	}
	if state.stack.len()+b.stackMaxGrowth > maxStack {
		return 0, newFailure(StackOverflow)
	}
	state.gasLeft -= b.gasCost
	state.currentBlockGas = b.gasCost
	state.consumedInBlock = 0
	// Only a real JUMPDEST has a jumpdest-table entry and a jumpdestGas share
	// in its block's gasCost; synthetic block-begins have neither.
	jd := state.analysis.jumpdests
	if i := sort.Search(len(jd), func(i int) bool { return jd[i].index >= state.pc }); i < len(jd) && jd[i].index == state.pc {
		state.consumedInBlock = jumpdestGas
	}
	return state.pc + 1, nil
}

func opPushSmall(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(ins.smallPush))
	return state.pc + 1, nil
}

func opPushWide(state *ExecutionState, ins *instruction) (int, error) {
	v := new(uint256.Int)
	v.Set(ins.pushValue)
	state.stack.push(v)
	return state.pc + 1, nil
}

func opPush0(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int))
	return state.pc + 1, nil
}

// opDup and opSwap recover their operand count from the opcode byte
// itself rather than ins carrying it, since DUPn/SWAPn differ only in
// that single byte.
func opDup(state *ExecutionState, ins *instruction) (int, error) {
	n := int(ins.opcode-DUP1) + 1
	state.stack.dup(n)
	return state.pc + 1, nil
}

func opSwap(state *ExecutionState, ins *instruction) (int, error) {
	n := int(ins.opcode-SWAP1) + 1
	state.stack.swap(n)
	return state.pc + 1, nil
}

func opLog(state *ExecutionState, ins *instruction) (int, error) {
	if state.msg.Static {
		return 0, newFailure(StaticModeViolation)
	}
	n := int(ins.opcode - LOG0)
	mStart, mSize := state.stack.pop(), state.stack.pop()
	topics := make([]common.Hash, n)
	for i := 0; i < n; i++ {
		t := state.stack.pop()
		topics[i] = common32(&t)
	}
	data := state.memory.GetCopy(int64(mStart.Uint64()), int64(mSize.Uint64()))
	state.host.EmitLog(state.msg.Address, topics, data)
	return state.pc + 1, nil
}

func opStop(state *ExecutionState, ins *instruction) (int, error) {
	state.status = StatusStopped
	return -1, nil
}

func opReturn(state *ExecutionState, ins *instruction) (int, error) {
	offset, size := state.stack.pop(), state.stack.pop()
	state.output = state.memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
	state.status = StatusReturned
	return -1, nil
}

func opRevert(state *ExecutionState, ins *instruction) (int, error) {
	offset, size := state.stack.pop(), state.stack.pop()
	state.output = state.memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
	state.status = StatusReverted
	return -1, nil
}

func opInvalid(state *ExecutionState, ins *instruction) (int, error) {
	return 0, newFailure(InvalidInstruction)
}

func opSelfDestruct(state *ExecutionState, ins *instruction) (int, error) {
	if state.msg.Static {
		return 0, newFailure(StaticModeViolation)
	}
	b := state.stack.pop()
	beneficiary := addressFromUint256(&b)
	if state.host.Selfdestruct(state.msg.Address, beneficiary) && state.revision < London {
		state.refund += selfdestructRefundGas
	}
	state.status = StatusStopped
	return -1, nil
}
