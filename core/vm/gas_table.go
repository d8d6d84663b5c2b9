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

// Named gas constants, spec.md §4.2. These are the building blocks the
// per-revision jump tables and dynamic-gas handler helpers are assembled
// from.
const (
	memoryGasPerWord          = 3
	memoryGasQuadraticDivisor = 512

	keccak256Gas     = 30
	keccak256WordGas = 6

	copyWordGas = 3

	logGas      = 375
	logTopicGas = 375
	logDataGas  = 8

	sstoreClearRefundFrontier = 15000
	sstoreSentryGasEIP2200 = 2300
	sstoreSetGas           = 20000
	sstoreResetGas         = 5000
	sstoreClearRefundEIP2200 = 15000
	sstoreSetGasEIP2200      = 20000
	sstoreResetGasEIP2200    = 5000
	sstoreInitGasEIP2200     = 20000
	sstoreInitRefundEIP2200  = 19900
	sstoreCleanGasEIP2200    = 5000
	sstoreCleanRefundEIP2200 = 4800

	sstoreNoopGasEIP2929   = warmStorageReadCostEIP2929
	sstoreDirtyGasEIP2929  = warmStorageReadCostEIP2929
	sstoreInitGasEIP2929   = sstoreSetGas
	sstoreInitRefundEIP2929 = sstoreInitRefundEIP2200
	sstoreCleanGasEIP2929  = sstoreResetGas - coldSloadCostEIP2929
	sstoreCleanRefundEIP2929 = sstoreCleanRefundEIP2200
	sstoreClearRefundEIP3529 = sstoreClearRefundEIP2200 - coldSloadCostEIP2929

	coldAccountAccessCostEIP2929 = 2600
	coldSloadCostEIP2929         = 2100
	warmStorageReadCostEIP2929   = 100

	selfdestructGas          = 0
	selfdestructGasEIP150    = 5000
	selfdestructRefundGas    = 24000
	createBySelfdestructGas  = 25000

	callGas              = 40
	callGasEIP150        = 700
	callStipend          = 2300
	callValueTransferGas = 9000
	callNewAccountGas    = 25000

	expGas         = 10
	expByteGas        = 10
	expByteGasEIP158  = 50

	createGas           = 32000
	create2WordGas      = 6
	initCodeWordGasEIP3860 = 2
	maxInitCodeSizeEIP3860 = 49152
	maxCodeSizeEIP170      = 24576
	createDataGas          = 200

	quickStep   = 2
	fastestStep = 3
	fastStep    = 5
	midStep     = 8
	slowStep    = 10
	extStep     = 20

	sloadGasFrontier        = 50
	sloadGasEIP150          = 200
	sloadGasEIP1884         = 800
	balanceGasFrontier      = 20
	balanceGasEIP150        = 400
	balanceGasEIP1884       = 700
	extcodesizeGasFrontier  = 20
	extcodesizeGasEIP150    = 700
	extcodehashGasConstantinople = 400
	extcodehashGasEIP1884        = 700
	extcodecopyGasFrontier  = 20
	extcodecopyGasEIP150    = 700

	jumpdestGas = 1
	memoryGas   = 3
)

// wordSizeCost returns ceil(size/32) for byte-count gas helpers (SHA3,
// COPY-family, CREATE2 init-code hashing).
func wordSizeCost(size uint64) uint64 {
	return toWordSize(size)
}
