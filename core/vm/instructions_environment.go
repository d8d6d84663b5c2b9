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

func opAddress(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(addressToUint256(state.msg.Address))
	return state.pc + 1, nil
}

func opBalance(state *ExecutionState, ins *instruction) (int, error) {
	addr := addressFromUint256(state.stack.peek())
	bal := state.host.GetBalance(addr)
	state.stack.peek().Set(bal)
	return state.pc + 1, nil
}

func opOrigin(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(addressToUint256(state.host.GetTxContext().Origin))
	return state.pc + 1, nil
}

func opCaller(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(addressToUint256(state.msg.Caller))
	return state.pc + 1, nil
}

func opCallValue(state *ExecutionState, ins *instruction) (int, error) {
	v := new(uint256.Int)
	if state.msg.Value != nil {
		v.Set(state.msg.Value)
	}
	state.stack.push(v)
	return state.pc + 1, nil
}

func opCallDataLoad(state *ExecutionState, ins *instruction) (int, error) {
	x := state.stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(state.msg.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return state.pc + 1, nil
}

func opCallDataSize(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(uint64(len(state.msg.Input))))
	return state.pc + 1, nil
}

func opCallDataCopy(state *ExecutionState, ins *instruction) (int, error) {
	memOffset, dataOffset, length := state.stack.pop(), state.stack.pop(), state.stack.pop()
	dataOff, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOff = 0xffffffffffffffff
	}
	data := getData(state.msg.Input, dataOff, length.Uint64())
	state.memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return state.pc + 1, nil
}

func opCodeSize(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(uint64(len(state.msg.Code))))
	return state.pc + 1, nil
}

func opCodeCopy(state *ExecutionState, ins *instruction) (int, error) {
	memOffset, codeOffset, length := state.stack.pop(), state.stack.pop(), state.stack.pop()
	codeOff, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff = 0xffffffffffffffff
	}
	data := getData(state.msg.Code, codeOff, length.Uint64())
	state.memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return state.pc + 1, nil
}

func opGasprice(state *ExecutionState, ins *instruction) (int, error) {
	gp := new(uint256.Int)
	if v := state.host.GetTxContext().GasPrice; v != nil {
		gp.Set(v)
	}
	state.stack.push(gp)
	return state.pc + 1, nil
}

func opExtCodeSize(state *ExecutionState, ins *instruction) (int, error) {
	addr := addressFromUint256(state.stack.peek())
	state.stack.peek().SetUint64(uint64(state.host.GetCodeSize(addr)))
	return state.pc + 1, nil
}

func opExtCodeCopy(state *ExecutionState, ins *instruction) (int, error) {
	addr := addressFromUint256(state.stack.pop())
	memOffset, codeOffset, length := state.stack.pop(), state.stack.pop(), state.stack.pop()
	codeOff, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff = 0xffffffffffffffff
	}
	buf := make([]byte, length.Uint64())
	n := state.host.CopyCode(addr, codeOff, buf)
	state.memory.Set(memOffset.Uint64(), length.Uint64(), buf[:n])
	return state.pc + 1, nil
}

func opReturnDataSize(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(uint64(len(state.returnData))))
	return state.pc + 1, nil
}

func opReturnDataCopy(state *ExecutionState, ins *instruction) (int, error) {
	memOffset, dataOffset, length := state.stack.pop(), state.stack.pop(), state.stack.pop()
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return 0, newFailure(OutOfMemory)
	}
	length64, overflow := length.Uint64WithOverflow()
	if overflow {
		return 0, newFailure(OutOfMemory)
	}
	end := offset64 + length64
	if end < offset64 || end > uint64(len(state.returnData)) {
		return 0, newFailure(OutOfMemory)
	}
	state.memory.Set(memOffset.Uint64(), length64, state.returnData[offset64:end])
	return state.pc + 1, nil
}

func opExtCodeHash(state *ExecutionState, ins *instruction) (int, error) {
	addr := addressFromUint256(state.stack.peek())
	if !state.host.AccountExists(addr) {
		state.stack.peek().Clear()
		return state.pc + 1, nil
	}
	state.stack.peek().SetBytes(state.host.GetCodeHash(addr).Bytes())
	return state.pc + 1, nil
}

func opSelfBalance(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(state.host.GetBalance(state.msg.Address))
	return state.pc + 1, nil
}

func opChainId(state *ExecutionState, ins *instruction) (int, error) {
	id := new(uint256.Int)
	if v := state.host.GetBlockContext().ChainID; v != nil {
		id.Set(v)
	}
	state.stack.push(id)
	return state.pc + 1, nil
}

func opBaseFee(state *ExecutionState, ins *instruction) (int, error) {
	bf := new(uint256.Int)
	if v := state.host.GetBlockContext().BaseFee; v != nil {
		bf.Set(v)
	}
	state.stack.push(bf)
	return state.pc + 1, nil
}

func opBlobBaseFee(state *ExecutionState, ins *instruction) (int, error) {
	bf := new(uint256.Int)
	if v := state.host.GetBlockContext().BlobBaseFee; v != nil {
		bf.Set(v)
	}
	state.stack.push(bf)
	return state.pc + 1, nil
}

func opBlobHash(state *ExecutionState, ins *instruction) (int, error) {
	idx := state.stack.peek()
	hashes := state.host.GetTxContext().BlobHashes
	if i, overflow := idx.Uint64WithOverflow(); !overflow && i < uint64(len(hashes)) {
		idx.SetBytes(hashes[i].Bytes())
	} else {
		idx.Clear()
	}
	return state.pc + 1, nil
}

func opBlockhash(state *ExecutionState, ins *instruction) (int, error) {
	num := state.stack.peek()
	if !num.IsUint64() {
		num.Clear()
		return state.pc + 1, nil
	}
	n := num.Uint64()
	bc := state.host.GetBlockContext()
	if bc.BlockNumber > 256 && n < bc.BlockNumber-256 || n >= bc.BlockNumber {
		num.Clear()
		return state.pc + 1, nil
	}
	num.SetBytes(state.host.GetBlockHash(n).Bytes())
	return state.pc + 1, nil
}

func opCoinbase(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(addressToUint256(state.host.GetBlockContext().Coinbase))
	return state.pc + 1, nil
}

func opTimestamp(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(state.host.GetBlockContext().Time))
	return state.pc + 1, nil
}

func opNumber(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(state.host.GetBlockContext().BlockNumber))
	return state.pc + 1, nil
}

func opDifficulty(state *ExecutionState, ins *instruction) (int, error) {
	d := new(uint256.Int)
	if v := state.host.GetBlockContext().Difficulty; v != nil {
		d.Set(v)
	}
	state.stack.push(d)
	return state.pc + 1, nil
}

func opGasLimit(state *ExecutionState, ins *instruction) (int, error) {
	state.stack.push(new(uint256.Int).SetUint64(state.host.GetBlockContext().GasLimit))
	return state.pc + 1, nil
}

// getData returns a length-sized window of src starting at offset,
// zero-padded when the window runs past the end — the same "short reads
// are zero-filled" rule CALLDATACOPY/CODECOPY/EXTCODECOPY all share.
func getData(src []byte, offset, length uint64) []byte {
	if offset > uint64(len(src)) {
		offset = uint64(len(src))
	}
	end := offset + length
	if end > uint64(len(src)) {
		end = uint64(len(src))
	}
	data := make([]byte, length)
	copy(data, src[offset:end])
	return data
}
