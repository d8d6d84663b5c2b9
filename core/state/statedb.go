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

// Package state is a minimal, entirely in-memory implementation of
// vm.Host: no trie, no disk persistence, just a map of accounts plus the
// journal/access-list/refund bookkeeping the interpreter's gas and
// snapshot/revert rules depend on. It exists to give core/vm something
// real to run against, both in its own tests and as the account/storage
// backing for an embedder's EVM type.
package state

import (
	"github.com/holiman/uint256"

	"github.com/probeum/go-probeum/common"
	"github.com/probeum/go-probeum/core/vm"
	"github.com/probeum/go-probeum/crypto"
)

// Log is a single EmitLog record, kept for inspection after execution
// finishes (receipts, tests) the way the teacher's AddLog/GetLogs pair
// expose committed logs.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// StateDB is the reference vm.Host backing store. It implements every
// Host method except Call/GetTxContext/GetBlockContext/GetBlockHash,
// which belong to whatever owns the call tree (see core/evm.go's EVM,
// which embeds *StateDB and supplies those four).
type StateDB struct {
	stateObjects map[common.Address]*stateObject

	journal    *journal
	accessList *accessList

	refund uint64
	logs   []*Log
}

func New() *StateDB {
	return &StateDB{
		stateObjects: make(map[common.Address]*stateObject),
		journal:      newJournal(),
		accessList:   newAccessList(),
	}
}

func (s *StateDB) getStateObject(addr common.Address) *stateObject {
	if obj, ok := s.stateObjects[addr]; ok && !obj.deleted {
		return obj
	}
	return nil
}

func (s *StateDB) getOrNewStateObject(addr common.Address) *stateObject {
	if obj := s.getStateObject(addr); obj != nil {
		return obj
	}
	return s.createObject(addr)
}

func (s *StateDB) createObject(addr common.Address) *stateObject {
	obj := newStateObject(s, addr)
	s.journal.append(createObjectChange{account: &addr})
	s.stateObjects[addr] = obj
	return obj
}

// CreateAccount creates a fresh, empty account at addr, discarding any
// balance/nonce/code/storage that may have existed there (spec.md §4.6's
// CREATE/CREATE2 target-account semantics: the account object itself is
// replaced, though conventionally its preexisting balance is preserved by
// the caller re-adding it after this call).
func (s *StateDB) CreateAccount(addr common.Address) {
	s.createObject(addr)
}

func (s *StateDB) AccountExists(addr common.Address) bool {
	return s.getStateObject(addr) != nil
}

func (s *StateDB) Empty(addr common.Address) bool {
	obj := s.getStateObject(addr)
	return obj == nil || obj.empty()
}

//
// balance
//

func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.Balance()
	}
	return new(uint256.Int)
}

func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	s.getOrNewStateObject(addr).addBalance(amount)
}

func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	s.getOrNewStateObject(addr).subBalance(amount)
}

//
// nonce
//

func (s *StateDB) GetNonce(addr common.Address) uint64 {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.Nonce()
	}
	return 0
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	s.getOrNewStateObject(addr).SetNonce(nonce)
}

//
// code
//

func (s *StateDB) GetCode(addr common.Address) []byte {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.Code()
	}
	return nil
}

func (s *StateDB) GetCodeSize(addr common.Address) int {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.CodeSize()
	}
	return 0
}

func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	if obj := s.getStateObject(addr); obj != nil {
		return common.BytesToHash(obj.CodeHash())
	}
	return common.Hash{}
}

func (s *StateDB) CopyCode(addr common.Address, codeOffset uint64, buf []byte) int {
	obj := s.getStateObject(addr)
	if obj == nil || codeOffset >= uint64(len(obj.Code())) {
		return 0
	}
	return copy(buf, obj.Code()[codeOffset:])
}

func (s *StateDB) SetCode(addr common.Address, code []byte) {
	obj := s.getOrNewStateObject(addr)
	obj.SetCode(crypto.Keccak256Hash(code), code)
}

//
// storage
//

func (s *StateDB) GetStorage(addr common.Address, key common.Hash) common.Hash {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.GetState(key)
	}
	return common.Hash{}
}

// SetStorage writes a storage slot and classifies the write against the
// slot's transaction-start value and its value just before this write,
// spec.md §6's seven-way StorageStatus split that EIP-2200/EIP-3529 net-gas
// metering is priced from.
func (s *StateDB) SetStorage(addr common.Address, key, value common.Hash) vm.StorageStatus {
	obj := s.getOrNewStateObject(addr)
	original := obj.GetCommittedState(key)
	current := obj.GetState(key)
	status := classifyStorageStatus(original, current, value)
	obj.SetState(key, value)
	return status
}

func classifyStorageStatus(original, current, value common.Hash) vm.StorageStatus {
	zero := common.Hash{}
	if current == value {
		return vm.StorageUnchanged
	}
	if original == current {
		switch {
		case original == zero:
			return vm.StorageAdded
		case value == zero:
			return vm.StorageDeleted
		default:
			return vm.StorageModified
		}
	}
	switch {
	case original != zero && current == zero && value != zero:
		return vm.StorageDeletedAdded
	case original == zero && current != zero && value == zero:
		return vm.StorageAddedDeleted
	default:
		return vm.StorageModifiedAgain
	}
}

//
// transient storage (EIP-1153)
//

func (s *StateDB) GetTransientStorage(addr common.Address, key common.Hash) common.Hash {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.getTransientState(key)
	}
	return common.Hash{}
}

func (s *StateDB) SetTransientStorage(addr common.Address, key, value common.Hash) {
	obj := s.getOrNewStateObject(addr)
	prev := obj.getTransientState(key)
	if prev == value {
		return
	}
	s.journal.append(transientStorageChange{
		account:  &addr,
		key:      key,
		prevalue: prev,
	})
	obj.setTransientState(key, value)
}

// setTransientState is the journal-revert path: it writes directly,
// without appending a further journal entry.
func (s *StateDB) setTransientState(addr common.Address, key, value common.Hash) {
	if obj := s.getStateObject(addr); obj != nil {
		obj.setTransientState(key, value)
	}
}

// ClearTransientStorage drops all transient storage, the reset every real
// EVM performs at the end of a top-level transaction (EIP-1153 scopes
// transient storage to a transaction, not a block).
func (s *StateDB) ClearTransientStorage() {
	for _, obj := range s.stateObjects {
		obj.transientStorage = make(Storage)
	}
}

//
// selfdestruct
//

func (s *StateDB) HasSelfdestructed(addr common.Address) bool {
	obj := s.getStateObject(addr)
	return obj != nil && obj.selfdestructed
}

// Selfdestruct marks addr for removal and moves its entire balance to
// beneficiary, reporting whether addr held a nonzero balance at the time
// (the condition spec.md §4.6 ties the pre-London self-destruct refund to).
func (s *StateDB) Selfdestruct(addr, beneficiary common.Address) bool {
	obj := s.getStateObject(addr)
	if obj == nil {
		return false
	}
	hadBalance := !obj.Balance().IsZero()
	s.journal.append(selfdestructChange{
		account:     &addr,
		prev:        obj.selfdestructed,
		prevbalance: new(uint256.Int).Set(obj.Balance()),
	})
	if addr != beneficiary {
		s.AddBalance(beneficiary, obj.Balance())
	}
	obj.selfdestructed = true
	obj.setBalance(new(uint256.Int))
	return hadBalance
}

//
// logs
//

func (s *StateDB) EmitLog(addr common.Address, topics []common.Hash, data []byte) {
	s.logs = append(s.logs, &Log{Address: addr, Topics: topics, Data: data})
}

func (s *StateDB) Logs() []*Log { return s.logs }

//
// access list (EIP-2929)
//

func (s *StateDB) AccessAccount(addr common.Address) (warm bool) {
	if s.accessList.containsAddress(addr) {
		return true
	}
	s.accessList.addAddress(addr)
	s.journal.append(accessListAddAccountChange{address: &addr})
	return false
}

func (s *StateDB) AccessStorage(addr common.Address, key common.Hash) (warm bool) {
	addrWarm, slotWarm := s.accessList.containsAddress(addr), s.accessList.containsSlot(addr, key)
	if slotWarm {
		return true
	}
	if !addrWarm {
		s.journal.append(accessListAddAccountChange{address: &addr})
	}
	s.journal.append(accessListAddSlotChange{address: &addr, slot: &key})
	s.accessList.addSlot(addr, key)
	return false
}

// PrepareAccessList marks the tx sender, the tx destination (nil for a
// contract-creation tx) and every EIP-2930/3651-style pre-warmed address
// as already-accessed before execution begins, per EIP-2929.
func (s *StateDB) PrepareAccessList(sender common.Address, dst *common.Address, precompiles []common.Address) {
	s.accessList.addAddress(sender)
	if dst != nil {
		s.accessList.addAddress(*dst)
	}
	for _, addr := range precompiles {
		s.accessList.addAddress(addr)
	}
}

//
// refund
//

func (s *StateDB) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

func (s *StateDB) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		panic("refund counter below zero")
	}
	s.refund -= gas
}

func (s *StateDB) GetRefund() uint64 { return s.refund }

//
// snapshot / revert
//

// Snapshot and RevertToSnapshot implement spec.md §4.6's per-frame
// snapshot/revert contract directly as journal-length indices (spec.md §9's
// accepted realization): id is simply how many journal entries existed
// when the snapshot was taken, and reverting truncates back to it.
func (s *StateDB) Snapshot() int {
	return s.journal.length()
}

func (s *StateDB) RevertToSnapshot(id int) {
	s.journal.revert(s, id)
}

// Finalise is called between top-level transactions: it folds this
// transaction's dirty storage into each touched object's committed
// baseline (so the next transaction's EIP-2200 "original value" lookups
// see this transaction's writes), clears transient storage and the
// access list, and resets the refund counter and journal.
func (s *StateDB) Finalise() {
	for addr, obj := range s.stateObjects {
		if obj.selfdestructed {
			delete(s.stateObjects, addr)
			continue
		}
		for key, value := range obj.storage {
			obj.originStorage[key] = value
		}
		obj.storage = make(Storage)
		obj.transientStorage = make(Storage)
	}
	s.accessList = newAccessList()
	s.refund = 0
	s.journal = newJournal()
}

// Copy returns an independent snapshot of the entire state, used to run
// speculative or test executions without disturbing the original.
func (s *StateDB) Copy() *StateDB {
	cpy := &StateDB{
		stateObjects: make(map[common.Address]*stateObject, len(s.stateObjects)),
		journal:      newJournal(),
		accessList:   newAccessList(),
		refund:       s.refund,
	}
	for addr, obj := range s.stateObjects {
		cpy.stateObjects[addr] = obj.deepCopy(cpy)
	}
	return cpy
}
