// Copyright 2016 The go-probeum Authors
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

package core

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/probeum/go-probeum/common"
	"github.com/probeum/go-probeum/core/state"
	"github.com/probeum/go-probeum/core/vm"
	"github.com/probeum/go-probeum/crypto"
)

var (
	caller = common.HexToAddress("0xc411")
	callee = common.HexToAddress("0xca11ee")
)

func newTestEVM(db *state.StateDB) *EVM {
	return NewEVM(db, vm.TxContext{Origin: caller, GasPrice: new(uint256.Int)}, vm.BlockContext{
		GasLimit:    30_000_000,
		BlockNumber: 1,
		Difficulty:  new(uint256.Int),
		BaseFee:     new(uint256.Int),
		ChainID:     new(uint256.Int),
	}, vm.Cancun)
}

// scenario (f): a CALL with value into a previously empty account must move
// the endowment and leave the target non-empty, even though the callee has
// no code to run.
func TestCallWithValueToEmptyAccount(t *testing.T) {
	db := state.New()
	db.AddBalance(caller, uint256.NewInt(1_000_000))
	e := newTestEVM(db)

	assert.True(t, db.Empty(callee))

	result, err := e.Call(&vm.Message{
		Caller:   caller,
		Address:  callee,
		CodeAddr: callee,
		Value:    uint256.NewInt(1),
		Gas:      100_000,
	})
	assert.NoError(t, err)
	assert.True(t, result.Status.Succeeded())
	assert.Equal(t, uint256.NewInt(1).String(), db.GetBalance(callee).String())
	assert.False(t, db.Empty(callee))
	assert.Equal(t, uint256.NewInt(999_999).String(), db.GetBalance(caller).String())
}

func TestCallInsufficientBalanceReverts(t *testing.T) {
	db := state.New()
	e := newTestEVM(db)

	_, err := e.Call(&vm.Message{
		Caller:  caller,
		Address: callee,
		Value:   uint256.NewInt(1),
		Gas:     100_000,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.True(t, db.Empty(callee), "a failed value transfer must not create the target account")
}

// A sub-call at depth beyond maxCallDepth fails immediately, before any gas
// is spent entering it — spec.md §4.4's call-depth bound, checked by the
// frame manager ahead of the host boundary.
func TestCallDepthExceeded(t *testing.T) {
	db := state.New()
	e := newTestEVM(db)

	result, err := e.Call(&vm.Message{
		Caller:  caller,
		Address: callee,
		Value:   new(uint256.Int),
		Gas:     100_000,
		Depth:   maxCallDepth + 1,
	})
	assert.NoError(t, err)
	assert.Equal(t, vm.StatusFailed, result.Status)
	assert.Equal(t, uint64(100_000), result.GasLeft)
}

// CREATE derives the new address from the creator's pre-increment nonce,
// increments that nonce as a side effect, installs the init code's RETURN
// payload as the new account's code, and moves the endowment before the
// init code runs.
func TestCreateDeploysCodeAndIncrementsNonce(t *testing.T) {
	db := state.New()
	db.AddBalance(caller, uint256.NewInt(1_000_000))
	db.SetNonce(caller, 5)
	e := newTestEVM(db)

	// PUSH1 3; PUSH1 0; MSTORE8; PUSH1 1; PUSH1 0; RETURN — returns one
	// byte, 0x03, as the deployed code.
	initcode := []byte{0x60, 0x03, 0x60, 0x00, 0x53, 0x60, 0x01, 0x60, 0x00, 0xF3}

	result, err := e.Call(&vm.Message{
		Caller:   caller,
		Value:    uint256.NewInt(10),
		Code:     initcode,
		Gas:      200_000,
		IsCreate: true,
	})
	assert.NoError(t, err)
	assert.True(t, result.Status.Succeeded())

	wantAddr := crypto.CreateAddress(caller, 5)
	assert.Equal(t, wantAddr, result.CreateAddr)
	assert.Equal(t, uint64(6), db.GetNonce(caller))
	assert.Equal(t, []byte{0x03}, db.GetCode(result.CreateAddr))
	assert.Equal(t, uint256.NewInt(10).String(), db.GetBalance(result.CreateAddr).String())
}

func TestCreateAddressCollisionFails(t *testing.T) {
	db := state.New()
	db.AddBalance(caller, uint256.NewInt(1_000_000))
	e := newTestEVM(db)

	initcode := []byte{0x60, 0x00, 0x60, 0x00, 0xF3} // PUSH1 0; PUSH1 0; RETURN (empty code)
	first, err := e.Call(&vm.Message{Caller: caller, Value: new(uint256.Int), Code: initcode, Gas: 100_000, IsCreate: true})
	assert.NoError(t, err)

	db.SetCode(first.CreateAddr, []byte{0x01}) // simulate a pre-existing deployed contract
	db.SetNonce(caller, 0)                     // replay the exact same nonce to force a collision

	_, err = e.Call(&vm.Message{Caller: caller, Value: new(uint256.Int), Code: initcode, Gas: 100_000, IsCreate: true})
	assert.ErrorIs(t, err, ErrContractAddressCollision)
}
