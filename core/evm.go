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

// Package core supplies the frame manager that turns a vm.Host boundary
// into an actual, recursive CALL/CREATE call tree: EVM embeds a
// *state.StateDB for all the account/storage/log bookkeeping and adds the
// Host methods a bare StateDB cannot supply on its own — the tx/block
// context and block-hash getters, and Call, which invokes vm.Run for the
// callee and, for CREATE/CREATE2, derives the new contract's address and
// runs its init code.
package core

import (
	"errors"

	"github.com/probeum/go-probeum/common"
	"github.com/probeum/go-probeum/core/state"
	"github.com/probeum/go-probeum/core/vm"
	"github.com/probeum/go-probeum/crypto"
	"github.com/probeum/go-probeum/log"
)

// maxCallDepth is the EVM call-depth limit spec.md §4.4 ties CallDepth to:
// a sub-call whose depth exceeds 1024 fails immediately, before any gas is
// spent entering it.
const maxCallDepth = 1024

// Frame-manager-level failures: these terminate a Call/create before a
// vm.ExecutionState ever exists, so they are plain errors rather than a
// vm.FailureKind (spec.md §4.7 scopes FailureKind to in-frame dispatch
// failures).
var (
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrContractAddressCollision = errors.New("contract address collision")
)

// EVM is the frame manager of spec.md §4.6: it owns the recursive side of
// CALL/CALLCODE/DELEGATECALL/STATICCALL/CREATE/CREATE2 that a pure
// vm.Host cannot express on its own (a Host answers queries about state;
// only something that can invoke vm.Run again can actually execute a
// sub-frame's code).
type EVM struct {
	*state.StateDB

	txContext    vm.TxContext
	blockContext vm.BlockContext
	revision     vm.Revision
	getHash      func(number uint64) common.Hash
}

// NewEVM wires a StateDB, the transaction- and block-wide context, and the
// revision a top-level call should run under.
func NewEVM(db *state.StateDB, tx vm.TxContext, block vm.BlockContext, rev vm.Revision) *EVM {
	return &EVM{
		StateDB:      db,
		txContext:    tx,
		blockContext: block,
		revision:     rev,
		getHash:      block.GetHash,
	}
}

func (e *EVM) GetTxContext() vm.TxContext       { return e.txContext }
func (e *EVM) GetBlockContext() vm.BlockContext { return e.blockContext }

func (e *EVM) GetBlockHash(number uint64) common.Hash {
	if e.getHash == nil {
		return common.Hash{}
	}
	return e.getHash(number)
}

// Call is the Host.Call a running frame invokes for every CALL-family and
// CREATE-family opcode (spec.md §4.6): it enforces the call-depth bound,
// snapshots state, performs the value transfer, and recursively drives the
// callee's code through vm.Run, translating the result into a CallResult
// and reverting state if the callee failed.
func (e *EVM) Call(msg *vm.Message) (*vm.CallResult, error) {
	if msg.Depth > maxCallDepth {
		return &vm.CallResult{Status: vm.StatusFailed, GasLeft: msg.Gas}, nil
	}

	snapshot := e.Snapshot()

	if msg.IsCreate {
		return e.create(msg, snapshot)
	}

	log.Trace("call", "depth", msg.Depth, "to", msg.Address, "gas", msg.Gas, "value", msg.Value)

	if !msg.Value.IsZero() && !msg.Static {
		if e.GetBalance(msg.Caller).Lt(msg.Value) {
			e.RevertToSnapshot(snapshot)
			return nil, ErrInsufficientBalance
		}
		e.SubBalance(msg.Caller, msg.Value)
		e.AddBalance(msg.Address, msg.Value)
	}

	code := msg.Code
	if code == nil {
		code = e.GetCode(msg.CodeAddr)
	}

	result, err := vm.Run(&vm.Message{
		Caller:   msg.Caller,
		Address:  msg.Address,
		CodeAddr: msg.CodeAddr,
		Value:    msg.Value,
		Input:    msg.Input,
		Code:     code,
		Gas:      msg.Gas,
		Depth:    msg.Depth,
		Static:   msg.Static,
	}, e, e.revision)
	if err != nil {
		e.RevertToSnapshot(snapshot)
		return nil, err
	}
	return e.finish(result, snapshot)
}

// create implements CREATE/CREATE2's address derivation and init-code
// execution (spec.md §4.6): the creator's nonce is incremented first (its
// pre-increment value feeds CREATE's address), a new address that already
// has code or a nonce fails the create and reverts to the snapshot (undoing
// that increment), the endowment is
// moved before init code runs so CALLVALUE/SELFBALANCE observe it, and the
// init code's successful RETURN payload becomes the new account's code.
func (e *EVM) create(msg *vm.Message, snapshot int) (*vm.CallResult, error) {
	callerNonce := e.GetNonce(msg.Caller)
	e.SetNonce(msg.Caller, callerNonce+1)

	var addr common.Address
	if msg.Salt != nil {
		addr = crypto.CreateAddress2(msg.Caller, msg.Salt.Bytes32(), crypto.Keccak256(msg.Code))
	} else {
		addr = crypto.CreateAddress(msg.Caller, callerNonce)
	}

	if e.GetCodeSize(addr) > 0 || e.GetNonce(addr) > 0 {
		e.RevertToSnapshot(snapshot)
		return &vm.CallResult{Status: vm.StatusFailed, CreateAddr: addr}, ErrContractAddressCollision
	}

	priorBalance := e.GetBalance(addr)
	e.CreateAccount(addr)
	e.SetNonce(addr, 1)
	if !priorBalance.IsZero() {
		e.AddBalance(addr, priorBalance)
	}

	if !msg.Value.IsZero() {
		if e.GetBalance(msg.Caller).Lt(msg.Value) {
			e.RevertToSnapshot(snapshot)
			return nil, ErrInsufficientBalance
		}
		e.SubBalance(msg.Caller, msg.Value)
		e.AddBalance(addr, msg.Value)
	}

	result, err := vm.Run(&vm.Message{
		Caller:   msg.Caller,
		Address:  addr,
		CodeAddr: addr,
		Value:    msg.Value,
		Input:    nil,
		Code:     msg.Code,
		Gas:      msg.Gas,
		Depth:    msg.Depth,
		Static:   msg.Static,
	}, e, e.revision)
	if err != nil {
		e.RevertToSnapshot(snapshot)
		return nil, err
	}

	if result.Status == vm.StatusReturned {
		e.SetCode(addr, result.Output)
	}

	callResult, err := e.finish(result, snapshot)
	if err != nil {
		return callResult, err
	}
	callResult.CreateAddr = addr
	return callResult, nil
}

// finish translates an ExecutionResult from vm.Run into the CallResult the
// caller's handler expects, reverting state for everything short of a
// clean STOP/RETURN (spec.md §4.6).
func (e *EVM) finish(result *vm.ExecutionResult, snapshot int) (*vm.CallResult, error) {
	if !result.Succeeded() {
		e.RevertToSnapshot(snapshot)
	}
	return &vm.CallResult{
		Status:    result.Status,
		GasLeft:   result.GasLeft,
		GasRefund: result.Refund,
		Output:    result.Output,
	}, nil
}
