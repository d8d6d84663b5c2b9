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

// calcMemSize64 turns a (offset, size) uint256 operand pair into a 64-bit
// byte count, reporting overflow rather than silently wrapping — an
// oversized offset or size is always an OutOfMemory failure, never UB.
func calcMemSize64(off, size *uint256.Int) (uint64, bool) {
	if size.IsZero() {
		return 0, false
	}
	if !off.IsUint64() || !size.IsUint64() {
		return 0, true
	}
	offVal, sizeVal := off.Uint64(), size.Uint64()
	sum := offVal + sizeVal
	if sum < offVal {
		return 0, true
	}
	return sum, false
}

// memorySizeOffsetSize builds a memorySizeFunc for the common (offset,
// size) operand shape, at the given stack depths (0 = top of stack).
func memorySizeOffsetSize(offsetIdx, sizeIdx int) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		return calcMemSize64(stack.Back(offsetIdx), stack.Back(sizeIdx))
	}
}

// memorySizeWord builds a memorySizeFunc for instructions that touch a
// single 32-byte word at a stack-supplied offset (MLOAD/MSTORE).
func memorySizeWord(offsetIdx int) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		off := stack.Back(offsetIdx)
		if !off.IsUint64() {
			return 0, true
		}
		v := off.Uint64()
		if v+32 < v {
			return 0, true
		}
		return v + 32, false
	}
}

// memorySizeByte builds a memorySizeFunc for instructions that touch a
// single byte at a stack-supplied offset (MSTORE8).
func memorySizeByte(offsetIdx int) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		off := stack.Back(offsetIdx)
		if !off.IsUint64() {
			return 0, true
		}
		v := off.Uint64()
		if v+1 < v {
			return 0, true
		}
		return v + 1, false
	}
}

// memorySizeCall covers CALL/CALLCODE, whose stack layout is
// gas, addr, value, argsOffset, argsSize, retOffset, retSize (top to
// bottom, i.e. Back(0)==gas).
func memorySizeCall(stack *Stack) (uint64, bool) {
	in, inOverflow := calcMemSize64(stack.Back(3), stack.Back(4))
	out, outOverflow := calcMemSize64(stack.Back(5), stack.Back(6))
	if inOverflow || outOverflow {
		return 0, true
	}
	if out > in {
		return out, false
	}
	return in, false
}

// memorySizeCallNoValue covers DELEGATECALL/STATICCALL, which drop the
// value operand: gas, addr, argsOffset, argsSize, retOffset, retSize.
func memorySizeCallNoValue(stack *Stack) (uint64, bool) {
	in, inOverflow := calcMemSize64(stack.Back(2), stack.Back(3))
	out, outOverflow := calcMemSize64(stack.Back(4), stack.Back(5))
	if inOverflow || outOverflow {
		return 0, true
	}
	if out > in {
		return out, false
	}
	return in, false
}

// memorySizeMcopy covers MCOPY: dst, src, size.
func memorySizeMcopy(stack *Stack) (uint64, bool) {
	dst, src, size := stack.Back(0), stack.Back(1), stack.Back(2)
	a, aOverflow := calcMemSize64(dst, size)
	b, bOverflow := calcMemSize64(src, size)
	if aOverflow || bOverflow {
		return 0, true
	}
	if b > a {
		return b, false
	}
	return a, false
}

// gasExpFrontier/gasExpEIP158 price EXP's exponent by its byte length
// (EIP-160 raised the per-byte price from 10 to 50 at Spurious Dragon).
func gasExpFrontier(state *ExecutionState, ins *instruction) (uint64, error) {
	return gasExp(state, expByteGas)
}

func gasExpEIP158(state *ExecutionState, ins *instruction) (uint64, error) {
	return gasExp(state, expByteGasEIP158)
}

func gasExp(state *ExecutionState, perByte uint64) (uint64, error) {
	exponent := state.stack.Back(1)
	byteLen := uint64(32 - leadingZeroBytes(exponent))
	return byteLen * perByte, nil
}

func leadingZeroBytes(v *uint256.Int) int {
	b := v.Bytes32()
	n := 0
	for n < 32 && b[n] == 0 {
		n++
	}
	return n
}

// gasSha3 bills SHA3's per-word hashing cost on top of its flat base.
func gasSha3(state *ExecutionState, ins *instruction) (uint64, error) {
	size := state.stack.Back(1)
	if !size.IsUint64() {
		return 0, newFailure(OutOfMemory)
	}
	return wordSizeCost(size.Uint64()) * keccak256WordGas, nil
}

// gasCopyWord bills the per-word cost shared by CALLDATACOPY, CODECOPY,
// EXTCODECOPY and RETURNDATACOPY; the size operand sits one slot lower on
// EXTCODECOPY's stack (it has the extra address operand) but word cost
// only ever depends on the size, so a single helper covers all four once
// handlers pass the right stack slot.
func gasCopyWord(state *ExecutionState, ins *instruction) (uint64, error) {
	var size *uint256.Int
	switch ins.opcode {
	case EXTCODECOPY:
		size = state.stack.Back(3)
	default:
		size = state.stack.Back(2)
	}
	if !size.IsUint64() {
		return 0, newFailure(OutOfMemory)
	}
	return wordSizeCost(size.Uint64()) * copyWordGas, nil
}

// gasMcopy bills MCOPY's per-word cost (EIP-5656: same formula as the
// other copy opcodes).
func gasMcopy(state *ExecutionState, ins *instruction) (uint64, error) {
	size := state.stack.Back(2)
	if !size.IsUint64() {
		return 0, newFailure(OutOfMemory)
	}
	return wordSizeCost(size.Uint64()) * copyWordGas, nil
}

// gasLog bills LOG0..LOG4's per-byte data cost.
func gasLog(state *ExecutionState, ins *instruction) (uint64, error) {
	size := state.stack.Back(1)
	if !size.IsUint64() {
		return 0, newFailure(OutOfMemory)
	}
	return size.Uint64() * logDataGas, nil
}

// gasSStoreFrontier is the flat Frontier SSTORE ladder: 20000 to set a
// zero slot nonzero, 5000 otherwise, with a 15000 refund on clearing to
// zero. Later revisions override this slot with the EIP-2200/EIP-2929
// net-gas variants below.
func gasSStoreFrontier(state *ExecutionState, ins *instruction) (uint64, error) {
	key := common32(state.stack.Back(0))
	val := state.stack.Back(1)
	current := state.host.GetStorage(state.msg.Address, key)
	currentZero := current == commonHashZero
	state.host.SetStorage(state.msg.Address, key, valToHash(val))
	switch {
	case currentZero && !val.IsZero():
		return sstoreSetGas, nil
	case !currentZero && val.IsZero():
		state.refund += sstoreClearRefundFrontier
		return sstoreResetGas, nil
	default:
		return sstoreResetGas, nil
	}
}

// gasSStoreEIP2200 implements EIP-2200's net-gas metering: cost depends on
// the slot's original (transaction-start) value, its current value, and
// the value being written.
func gasSStoreEIP2200(state *ExecutionState, ins *instruction) (uint64, error) {
	if state.gasLeft <= sstoreSentryGasEIP2200 {
		return 0, newFailure(OutOfGas)
	}
	return sstoreDynamicCost(state, sstoreCleanGasEIP2200, sstoreCleanRefundEIP2200, sstoreInitRefundEIP2200)
}

// gasSStoreEIP2929 layers Berlin's warm/cold access charge on top of the
// EIP-2200 ladder, and is itself further adjusted by EIP-3529's refund cut
// (the smaller sstoreClearRefundEIP3529 constant already bakes that in).
func gasSStoreEIP2929(state *ExecutionState, ins *instruction) (uint64, error) {
	if state.gasLeft <= sstoreSentryGasEIP2200 {
		return 0, newFailure(OutOfGas)
	}
	key := common32(state.stack.Back(0))
	warm := state.host.AccessStorage(state.msg.Address, key)
	cost, err := sstoreDynamicCost(state, sstoreCleanGasEIP2929, sstoreCleanRefundEIP2929, sstoreInitRefundEIP2929)
	if err != nil {
		return 0, err
	}
	if !warm {
		cost += coldSloadCostEIP2929
	}
	return cost, nil
}

func sstoreDynamicCost(state *ExecutionState, cleanGas, cleanRefund, initRefund uint64) (uint64, error) {
	key := common32(state.stack.Back(0))
	val := state.stack.Back(1)
	status := state.host.SetStorage(state.msg.Address, key, valToHash(val))
	switch status {
	case StorageUnchanged:
		return warmStorageReadCostEIP2929, nil
	case StorageAdded:
		return sstoreSetGas, nil
	case StorageDeleted:
		state.refund += cleanRefund
		return cleanGas, nil
	case StorageModified:
		return cleanGas, nil
	case StorageDeletedAdded:
		state.refund -= cleanRefund
		return warmStorageReadCostEIP2929, nil
	case StorageAddedDeleted:
		state.refund += initRefund
		return warmStorageReadCostEIP2929, nil
	case StorageModifiedAgain:
		return warmStorageReadCostEIP2929, nil
	default:
		return cleanGas, nil
	}
}

// gasCreate/gasCreate2 bill memory expansion (handled generically via
// memorySize) plus, for CREATE2, the per-word hashing cost of the init
// code.
func gasCreate(state *ExecutionState, ins *instruction) (uint64, error) {
	return 0, nil
}

func gasCreate2(state *ExecutionState, ins *instruction) (uint64, error) {
	size := state.stack.Back(2)
	if !size.IsUint64() {
		return 0, newFailure(OutOfMemory)
	}
	return wordSizeCost(size.Uint64()) * create2WordGas, nil
}

// gasCreateEIP3860/gasCreate2EIP3860 add EIP-3860's per-word init-code
// metering and enforce its 49152-byte cap on top of the prior behavior.
func gasCreateEIP3860(state *ExecutionState, ins *instruction) (uint64, error) {
	size := state.stack.Back(2)
	if !size.IsUint64() || size.Uint64() > maxInitCodeSizeEIP3860 {
		return 0, newFailure(OutOfMemory)
	}
	return wordSizeCost(size.Uint64()) * initCodeWordGasEIP3860, nil
}

func gasCreate2EIP3860(state *ExecutionState, ins *instruction) (uint64, error) {
	size := state.stack.Back(2)
	if !size.IsUint64() || size.Uint64() > maxInitCodeSizeEIP3860 {
		return 0, newFailure(OutOfMemory)
	}
	words := wordSizeCost(size.Uint64())
	return words*create2WordGas + words*initCodeWordGasEIP3860, nil
}

// gasCallFrontier implements the Frontier CALL-family pricing: a flat
// constant (already in operation.constantGas) plus value-transfer and
// new-account surcharges. It does not touch the forwarded gas; the
// CALL-family handlers apply the 63/64 cap (callGasBudget) in every
// revision.
func gasCallFrontier(state *ExecutionState, ins *instruction) (uint64, error) {
	return callValueAndAccountGas(state, ins, true)
}

// gasCallEIP150Family prices the same value-transfer and new-account
// surcharges from Tangerine Whistle on, reused unmodified by DELEGATECALL/
// STATICCALL (which have no value-transfer surcharge to add). The 63/64
// gas-forwarding cap is applied by the handlers, not here.
func gasCallEIP150Family(state *ExecutionState, ins *instruction) (uint64, error) {
	return callValueAndAccountGas(state, ins, false)
}

// gasCallEIP2929 layers the warm/cold account-access charge from Berlin on
// top of those surcharges.
func gasCallEIP2929(state *ExecutionState, ins *instruction) (uint64, error) {
	addr := addressFromUint256(state.stack.Back(1))
	warm := state.host.AccessAccount(addr)
	base, err := callValueAndAccountGas(state, ins, false)
	if err != nil {
		return 0, err
	}
	if !warm {
		base += coldAccountAccessCostEIP2929
	} else {
		base += warmStorageReadCostEIP2929
	}
	return base, nil
}

func callValueAndAccountGas(state *ExecutionState, ins *instruction, legacyUncapped bool) (uint64, error) {
	var gas uint64
	hasValue := ins.opcode == CALL || ins.opcode == CALLCODE
	if hasValue {
		val := state.stack.Back(2)
		if !val.IsZero() {
			gas += callValueTransferGas
		}
		addr := addressFromUint256(state.stack.Back(1))
		if ins.opcode == CALL && !val.IsZero() && !state.host.AccountExists(addr) {
			gas += callNewAccountGas
		}
	}
	return gas, nil
}

// gasSelfdestructFrontier/gasSelfdestructEIP150/gasSelfdestructEIP2929
// price the new-account surcharge SELFDESTRUCT incurs when its
// beneficiary does not yet exist, progressively adding EIP-150's flat
// repricing and EIP-2929's cold-access surcharge.
func gasSelfdestructFrontier(state *ExecutionState, ins *instruction) (uint64, error) {
	return 0, nil
}

func gasSelfdestructEIP150(state *ExecutionState, ins *instruction) (uint64, error) {
	beneficiary := addressFromUint256(state.stack.Back(0))
	if !state.host.AccountExists(beneficiary) && !state.host.GetBalance(state.msg.Address).IsZero() {
		return createBySelfdestructGas, nil
	}
	return 0, nil
}

func gasSelfdestructEIP2929(state *ExecutionState, ins *instruction) (uint64, error) {
	beneficiary := addressFromUint256(state.stack.Back(0))
	var gas uint64
	if !state.host.AccessAccount(beneficiary) {
		gas += coldAccountAccessCostEIP2929
	}
	if !state.host.AccountExists(beneficiary) && !state.host.GetBalance(state.msg.Address).IsZero() {
		gas += createBySelfdestructGas
	}
	return gas, nil
}

// gasAccountAccessEIP2929 is the Berlin warm/cold charge shared by
// BALANCE, EXTCODESIZE and EXTCODEHASH.
func gasAccountAccessEIP2929(state *ExecutionState, ins *instruction) (uint64, error) {
	addr := addressFromUint256(state.stack.Back(0))
	if state.host.AccessAccount(addr) {
		return warmStorageReadCostEIP2929, nil
	}
	return coldAccountAccessCostEIP2929, nil
}

// gasExtCodeCopyEIP2929 is EXTCODECOPY's Berlin variant: warm/cold access
// on top of the per-word copy cost.
func gasExtCodeCopyEIP2929(state *ExecutionState, ins *instruction) (uint64, error) {
	word, err := gasCopyWord(state, ins)
	if err != nil {
		return 0, err
	}
	addr := addressFromUint256(state.stack.Back(0))
	if state.host.AccessAccount(addr) {
		return word + warmStorageReadCostEIP2929, nil
	}
	return word + coldAccountAccessCostEIP2929, nil
}

// gasSloadEIP2929 is SLOAD's Berlin variant.
func gasSloadEIP2929(state *ExecutionState, ins *instruction) (uint64, error) {
	key := common32(state.stack.Back(0))
	if state.host.AccessStorage(state.msg.Address, key) {
		return warmStorageReadCostEIP2929, nil
	}
	return coldSloadCostEIP2929, nil
}
