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

var commonHashZero common.Hash

// common32 reads a 256-bit stack operand as a storage key.
func common32(v *uint256.Int) common.Hash {
	b := v.Bytes32()
	return common.BytesToHash(b[:])
}

// valToHash converts an SSTORE value operand to its storage representation.
func valToHash(v *uint256.Int) common.Hash {
	return common32(v)
}

// addressFromUint256 truncates a 256-bit stack operand to the low 20 bytes
// an address occupies, matching EVM semantics for ADDRESS-shaped operands.
func addressFromUint256(v *uint256.Int) common.Address {
	b := v.Bytes32()
	return common.BytesToAddress(b[12:])
}

// hashToUint256 widens a 256-bit hash back into a stack word.
func hashToUint256(h common.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes(h[:])
}

// addressToUint256 widens an address into a stack word, zero-extended.
func addressToUint256(a common.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(a[:])
}
