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

import "github.com/holiman/uint256"

// callGasBudget implements the 63/64 forwarding rule of spec.md §4.6: a
// CALL-family instruction may request more gas than it is allowed to
// forward, in which case the caller is capped at all-but-one-64th of what
// it has left, rather than failing.
func callGasBudget(state *ExecutionState, requested uint64) uint64 {
	available := state.gasLeft - state.gasLeft/64
	if requested < available {
		return requested
	}
	return available
}

func finishCall(state *ExecutionState, stack *Stack, result *CallResult, err error, retOffset, retSize uint64) (int, error) {
	if err != nil {
		state.returnData = nil
		stack.push(new(uint256.Int))
		return state.pc + 1, nil
	}
	state.returnData = result.Output
	state.gasLeft += result.GasLeft
	state.refund += result.GasRefund

	copySize := retSize
	if uint64(len(result.Output)) < copySize {
		copySize = uint64(len(result.Output))
	}
	if copySize > 0 {
		state.memory.Set(retOffset, copySize, result.Output[:copySize])
	}

	success := new(uint256.Int)
	if result.Status == StatusReturned || result.Status == StatusStopped {
		success.SetOne()
	}
	stack.push(success)
	return state.pc + 1, nil
}

func opCall(state *ExecutionState, ins *instruction) (int, error) {
	gasArg, addr, value, argsOffset, argsSize, retOffset, retSize :=
		state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop()

	if state.msg.Static && !value.IsZero() {
		return 0, newFailure(StaticModeViolation)
	}

	args := state.memory.GetCopy(int64(argsOffset.Uint64()), int64(argsSize.Uint64()))
	target := addressFromUint256(&addr)
	gas := callGasBudget(state, gasArg.Uint64())
	state.gasLeft -= gas
	if !value.IsZero() {
		gas += callStipend // stipend is free to the callee, not charged to the caller
	}

	v := value
	msg := &Message{
		Caller:   state.msg.Address,
		Address:  target,
		CodeAddr: target,
		Value:    &v,
		Input:    args,
		Code:     state.host.GetCode(target),
		Gas:      gas,
		Depth:    state.msg.Depth + 1,
		Static:   state.msg.Static,
	}
	result, err := state.host.Call(msg)
	return finishCall(state, state.stack, result, err, retOffset.Uint64(), retSize.Uint64())
}

func opCallCode(state *ExecutionState, ins *instruction) (int, error) {
	gasArg, addr, value, argsOffset, argsSize, retOffset, retSize :=
		state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop()

	args := state.memory.GetCopy(int64(argsOffset.Uint64()), int64(argsSize.Uint64()))
	target := addressFromUint256(&addr)
	gas := callGasBudget(state, gasArg.Uint64())
	state.gasLeft -= gas
	if !value.IsZero() {
		gas += callStipend // stipend is free to the callee, not charged to the caller
	}

	v := value
	msg := &Message{
		Caller:   state.msg.Address,
		Address:  state.msg.Address, // CALLCODE runs target's code against the caller's own storage
		CodeAddr: target,
		Value:    &v,
		Input:    args,
		Code:     state.host.GetCode(target),
		Gas:      gas,
		Depth:    state.msg.Depth + 1,
		Static:   state.msg.Static,
	}
	result, err := state.host.Call(msg)
	return finishCall(state, state.stack, result, err, retOffset.Uint64(), retSize.Uint64())
}

func opDelegateCall(state *ExecutionState, ins *instruction) (int, error) {
	gasArg, addr, argsOffset, argsSize, retOffset, retSize :=
		state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop()

	args := state.memory.GetCopy(int64(argsOffset.Uint64()), int64(argsSize.Uint64()))
	target := addressFromUint256(&addr)
	gas := callGasBudget(state, gasArg.Uint64())
	state.gasLeft -= gas

	msg := &Message{
		Caller:   state.msg.Caller, // DELEGATECALL keeps the grandcaller's identity and value
		Address:  state.msg.Address,
		CodeAddr: target,
		Value:    state.msg.Value,
		Input:    args,
		Code:     state.host.GetCode(target),
		Gas:      gas,
		Depth:    state.msg.Depth + 1,
		Static:   state.msg.Static,
	}
	result, err := state.host.Call(msg)
	return finishCall(state, state.stack, result, err, retOffset.Uint64(), retSize.Uint64())
}

func opStaticCall(state *ExecutionState, ins *instruction) (int, error) {
	gasArg, addr, argsOffset, argsSize, retOffset, retSize :=
		state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop()

	args := state.memory.GetCopy(int64(argsOffset.Uint64()), int64(argsSize.Uint64()))
	target := addressFromUint256(&addr)
	gas := callGasBudget(state, gasArg.Uint64())
	state.gasLeft -= gas

	msg := &Message{
		Caller:   state.msg.Address,
		Address:  target,
		CodeAddr: target,
		Value:    new(uint256.Int),
		Input:    args,
		Code:     state.host.GetCode(target),
		Gas:      gas,
		Depth:    state.msg.Depth + 1,
		Static:   true,
	}
	result, err := state.host.Call(msg)
	return finishCall(state, state.stack, result, err, retOffset.Uint64(), retSize.Uint64())
}

func finishCreate(state *ExecutionState, result *CallResult, err error) (int, error) {
	if err != nil {
		state.stack.push(new(uint256.Int))
		return state.pc + 1, nil
	}
	state.gasLeft += result.GasLeft
	state.refund += result.GasRefund
	if result.Status != StatusReturned && result.Status != StatusStopped {
		state.returnData = result.Output
		state.stack.push(new(uint256.Int))
		return state.pc + 1, nil
	}
	state.stack.push(addressToUint256(result.CreateAddr))
	return state.pc + 1, nil
}

func opCreate(state *ExecutionState, ins *instruction) (int, error) {
	if state.msg.Static {
		return 0, newFailure(StaticModeViolation)
	}
	value, offset, size := state.stack.pop(), state.stack.pop(), state.stack.pop()
	code := state.memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))

	gas := state.gasLeft - state.gasLeft/64
	state.gasLeft -= gas

	msg := &Message{
		Caller:   state.msg.Address,
		Value:    &value,
		Code:     code,
		Gas:      gas,
		Depth:    state.msg.Depth + 1,
		Static:   false,
		IsCreate: true,
	}
	result, err := state.host.Call(msg)
	return finishCreate(state, result, err)
}

func opCreate2(state *ExecutionState, ins *instruction) (int, error) {
	if state.msg.Static {
		return 0, newFailure(StaticModeViolation)
	}
	value, offset, size, salt := state.stack.pop(), state.stack.pop(), state.stack.pop(), state.stack.pop()
	code := state.memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))

	gas := state.gasLeft - state.gasLeft/64
	state.gasLeft -= gas

	msg := &Message{
		Caller:   state.msg.Address,
		Value:    &value,
		Code:     code,
		Gas:      gas,
		Depth:    state.msg.Depth + 1,
		Static:   false,
		IsCreate: true,
		Salt:     &salt,
	}
	result, err := state.host.Call(msg)
	return finishCreate(state, result, err)
}
