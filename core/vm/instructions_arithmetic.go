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

func opAdd(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.Add(&x, y)
	return state.pc + 1, nil
}

func opMul(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.Mul(&x, y)
	return state.pc + 1, nil
}

func opSub(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.Sub(&x, y)
	return state.pc + 1, nil
}

func opDiv(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.Div(&x, y)
	return state.pc + 1, nil
}

func opSdiv(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.SDiv(&x, y)
	return state.pc + 1, nil
}

func opMod(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.Mod(&x, y)
	return state.pc + 1, nil
}

func opSmod(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.SMod(&x, y)
	return state.pc + 1, nil
}

func opAddmod(state *ExecutionState, ins *instruction) (int, error) {
	x, y, z := state.stack.pop(), state.stack.pop(), state.stack.peek()
	z.AddMod(&x, &y, z)
	return state.pc + 1, nil
}

func opMulmod(state *ExecutionState, ins *instruction) (int, error) {
	x, y, z := state.stack.pop(), state.stack.pop(), state.stack.peek()
	z.MulMod(&x, &y, z)
	return state.pc + 1, nil
}

func opExp(state *ExecutionState, ins *instruction) (int, error) {
	base, exponent := state.stack.pop(), state.stack.peek()
	exponent.Exp(&base, exponent)
	return state.pc + 1, nil
}

func opSignExtend(state *ExecutionState, ins *instruction) (int, error) {
	back, num := state.stack.pop(), state.stack.peek()
	num.ExtendSign(num, &back)
	return state.pc + 1, nil
}

func opLt(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return state.pc + 1, nil
}

func opGt(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return state.pc + 1, nil
}

func opSlt(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return state.pc + 1, nil
}

func opSgt(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return state.pc + 1, nil
}

func opEq(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return state.pc + 1, nil
}

func opIszero(state *ExecutionState, ins *instruction) (int, error) {
	x := state.stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return state.pc + 1, nil
}

func opAnd(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.And(&x, y)
	return state.pc + 1, nil
}

func opOr(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.Or(&x, y)
	return state.pc + 1, nil
}

func opXor(state *ExecutionState, ins *instruction) (int, error) {
	x, y := state.stack.pop(), state.stack.peek()
	y.Xor(&x, y)
	return state.pc + 1, nil
}

func opNot(state *ExecutionState, ins *instruction) (int, error) {
	x := state.stack.peek()
	x.Not(x)
	return state.pc + 1, nil
}

func opByte(state *ExecutionState, ins *instruction) (int, error) {
	th, val := state.stack.pop(), state.stack.peek()
	val.Byte(&th)
	return state.pc + 1, nil
}

func opShl(state *ExecutionState, ins *instruction) (int, error) {
	shift, value := state.stack.pop(), state.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return state.pc + 1, nil
}

func opShr(state *ExecutionState, ins *instruction) (int, error) {
	shift, value := state.stack.pop(), state.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return state.pc + 1, nil
}

func opSar(state *ExecutionState, ins *instruction) (int, error) {
	shift, value := state.stack.pop(), state.stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return state.pc + 1, nil
	}
	n := uint(shift.Uint64())
	value.SRsh(value, n)
	return state.pc + 1, nil
}
