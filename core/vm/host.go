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

// StorageStatus classifies an SSTORE against the slot's value at the start
// of the enclosing transaction and its value just before this write,
// spec.md §6 — the seven-way split EIP-2200/EIP-3529 net-gas metering and
// refund accounting needs.
type StorageStatus int

const (
	StorageUnchanged StorageStatus = iota
	StorageModified
	StorageModifiedAgain
	StorageAdded
	StorageDeleted
	StorageDeletedAdded
	StorageAddedDeleted
)

// TxContext is the transaction-wide data every frame in a call tree shares,
// and that BLOCKHASH/ORIGIN/GASPRICE/BLOBHASH-family opcodes read.
type TxContext struct {
	Origin     common.Address
	GasPrice   *uint256.Int
	BlobHashes []common.Hash
}

// BlockContext is the block-wide data COINBASE/TIMESTAMP/NUMBER/DIFFICULTY
// (PREVRANDAO)/GASLIMIT/CHAINID/BASEFEE/BLOBBASEFEE read, plus the callback
// used to resolve BLOCKHASH.
type BlockContext struct {
	Coinbase    common.Address
	GasLimit    uint64
	BlockNumber uint64
	Time        uint64
	Difficulty  *uint256.Int // PREVRANDAO from Paris onward
	BaseFee     *uint256.Int
	BlobBaseFee *uint256.Int
	ChainID     *uint256.Int
	GetHash     func(blockNumber uint64) common.Hash
}

// Host is the boundary a pure interpreter core is executed against,
// spec.md §6: everything about chain/account/log state that the
// interpreter must be able to observe or mutate, but does not own. A real
// embedder backs it with its state database; tests can back it with an
// in-memory stub.
type Host interface {
	AccountExists(addr common.Address) bool

	GetStorage(addr common.Address, key common.Hash) common.Hash
	SetStorage(addr common.Address, key, value common.Hash) StorageStatus

	GetTransientStorage(addr common.Address, key common.Hash) common.Hash
	SetTransientStorage(addr common.Address, key, value common.Hash)

	GetBalance(addr common.Address) *uint256.Int
	GetCodeSize(addr common.Address) int
	GetCodeHash(addr common.Address) common.Hash
	GetCode(addr common.Address) []byte
	CopyCode(addr common.Address, codeOffset uint64, buf []byte) int

	Selfdestruct(addr, beneficiary common.Address) bool

	Call(msg *Message) (*CallResult, error)

	GetTxContext() TxContext
	GetBlockContext() BlockContext
	GetBlockHash(number uint64) common.Hash

	EmitLog(addr common.Address, topics []common.Hash, data []byte)

	AccessAccount(addr common.Address) (warm bool)
	AccessStorage(addr common.Address, key common.Hash) (warm bool)

	CreateAccount(addr common.Address)
	SetNonce(addr common.Address, nonce uint64)
	GetNonce(addr common.Address) uint64
	AddBalance(addr common.Address, amount *uint256.Int)
	SubBalance(addr common.Address, amount *uint256.Int)
	SetCode(addr common.Address, code []byte)

	Snapshot() int
	RevertToSnapshot(id int)

	AddRefund(gas uint64)
	SubRefund(gas uint64)
}

// CallResult is the uniform record every CALL/CREATE family operation
// produces, spec.md §6.
type CallResult struct {
	Status      Status
	GasLeft     uint64
	GasRefund   uint64
	Output      []byte
	CreateAddr  common.Address
}
