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

package state

import (
	"bytes"

	"github.com/holiman/uint256"

	"github.com/probeum/go-probeum/common"
	"github.com/probeum/go-probeum/crypto"
)

var emptyCodeHash = crypto.Keccak256(nil)

// Storage is a cache of account storage or transient storage entries keyed
// by slot.
type Storage map[common.Hash]common.Hash

func (s Storage) Copy() Storage {
	cpy := make(Storage, len(s))
	for key, value := range s {
		cpy[key] = value
	}
	return cpy
}

// stateObject is the in-memory representation of a single account: the
// minimal fields vm.Host needs to answer balance/nonce/code/storage queries
// for the interpreter (spec.md §6), with no trie or on-disk persistence —
// this reference implementation keeps the whole account set resident for
// the lifetime of the process, mirroring the teacher's stateObject shape
// without its multi-account-kind RLP encoding or trie plumbing.
type stateObject struct {
	address common.Address
	db      *StateDB

	balance  *uint256.Int
	nonce    uint64
	codeHash []byte
	code     []byte

	storage          Storage // dirty storage slots written this transaction
	originStorage    Storage // slot values as of transaction start, for EIP-2200 "original value"
	transientStorage Storage // EIP-1153 transient storage, cleared at transaction boundaries

	selfdestructed bool
	deleted        bool // true once created and then removed within the same transaction
}

func newStateObject(db *StateDB, address common.Address) *stateObject {
	return &stateObject{
		db:               db,
		address:          address,
		balance:          new(uint256.Int),
		codeHash:         emptyCodeHash,
		storage:          make(Storage),
		originStorage:    make(Storage),
		transientStorage: make(Storage),
	}
}

func (s *stateObject) empty() bool {
	return s.nonce == 0 && s.balance.IsZero() && bytes.Equal(s.codeHash, emptyCodeHash)
}

func (s *stateObject) deepCopy(db *StateDB) *stateObject {
	obj := &stateObject{
		db:               db,
		address:          s.address,
		balance:          new(uint256.Int).Set(s.balance),
		nonce:            s.nonce,
		codeHash:         append([]byte(nil), s.codeHash...),
		code:             append([]byte(nil), s.code...),
		storage:          s.storage.Copy(),
		originStorage:    s.originStorage.Copy(),
		transientStorage: s.transientStorage.Copy(),
		selfdestructed:   s.selfdestructed,
		deleted:          s.deleted,
	}
	return obj
}

//
// balance
//

func (s *stateObject) Balance() *uint256.Int { return s.balance }

func (s *stateObject) setBalance(amount *uint256.Int) {
	s.balance = amount
}

func (s *stateObject) addBalance(amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	s.SetBalance(new(uint256.Int).Add(s.balance, amount))
}

func (s *stateObject) subBalance(amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	s.SetBalance(new(uint256.Int).Sub(s.balance, amount))
}

func (s *stateObject) SetBalance(amount *uint256.Int) {
	s.db.journal.append(balanceChange{
		account: &s.address,
		prev:    new(uint256.Int).Set(s.balance),
	})
	s.setBalance(amount)
}

//
// nonce
//

func (s *stateObject) Nonce() uint64 { return s.nonce }

func (s *stateObject) setNonce(nonce uint64) { s.nonce = nonce }

func (s *stateObject) SetNonce(nonce uint64) {
	s.db.journal.append(nonceChange{
		account: &s.address,
		prev:    s.nonce,
	})
	s.setNonce(nonce)
}

//
// code
//

func (s *stateObject) Code() []byte { return s.code }

func (s *stateObject) CodeSize() int { return len(s.code) }

func (s *stateObject) CodeHash() []byte { return s.codeHash }

func (s *stateObject) setCode(codeHash common.Hash, code []byte) {
	s.code = code
	s.codeHash = codeHash[:]
}

func (s *stateObject) SetCode(codeHash common.Hash, code []byte) {
	s.db.journal.append(codeChange{
		account:  &s.address,
		prevhash: s.codeHash,
		prevcode: s.code,
	})
	s.setCode(codeHash, code)
}

//
// storage
//

func (s *stateObject) GetState(key common.Hash) common.Hash {
	if value, dirty := s.storage[key]; dirty {
		return value
	}
	return s.GetCommittedState(key)
}

func (s *stateObject) GetCommittedState(key common.Hash) common.Hash {
	return s.originStorage[key]
}

func (s *stateObject) setState(key, value common.Hash) {
	s.storage[key] = value
}

func (s *stateObject) SetState(key, value common.Hash) {
	prev := s.GetState(key)
	if prev == value {
		return
	}
	s.db.journal.append(storageChange{
		account:  &s.address,
		key:      key,
		prevalue: prev,
	})
	s.setState(key, value)
}

func (s *stateObject) getTransientState(key common.Hash) common.Hash {
	return s.transientStorage[key]
}

func (s *stateObject) setTransientState(key, value common.Hash) {
	s.transientStorage[key] = value
}
