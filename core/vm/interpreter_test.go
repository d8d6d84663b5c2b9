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
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/probeum/go-probeum/common"
)

// stubHost is a minimal, map-backed Host used by dispatch-level tests that
// never reach across a call boundary: every concern the interpreter itself
// doesn't own (account/storage/log state, sub-calls) is the embedder's job,
// so the interpreter's own tests only need enough of a Host to satisfy the
// interface and answer the handful of queries a,b,c,d and static-mode
// checks actually touch.
type stubHost struct {
	balances map[common.Address]*uint256.Int
	storage  map[common.Address]map[common.Hash]common.Hash
	code     map[common.Address][]byte
	nonces   map[common.Address]uint64
	exists   map[common.Address]bool
}

func newStubHost() *stubHost {
	return &stubHost{
		balances: make(map[common.Address]*uint256.Int),
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		code:     make(map[common.Address][]byte),
		nonces:   make(map[common.Address]uint64),
		exists:   make(map[common.Address]bool),
	}
}

func (h *stubHost) AccountExists(addr common.Address) bool { return h.exists[addr] }
func (h *stubHost) GetStorage(addr common.Address, key common.Hash) common.Hash {
	return h.storage[addr][key]
}
func (h *stubHost) SetStorage(addr common.Address, key, value common.Hash) StorageStatus {
	if h.storage[addr] == nil {
		h.storage[addr] = make(map[common.Hash]common.Hash)
	}
	h.storage[addr][key] = value
	return StorageModified
}
func (h *stubHost) GetTransientStorage(addr common.Address, key common.Hash) common.Hash {
	return common.Hash{}
}
func (h *stubHost) SetTransientStorage(addr common.Address, key, value common.Hash) {}
func (h *stubHost) GetBalance(addr common.Address) *uint256.Int {
	if b, ok := h.balances[addr]; ok {
		return b
	}
	return new(uint256.Int)
}
func (h *stubHost) GetCodeSize(addr common.Address) int        { return len(h.code[addr]) }
func (h *stubHost) GetCodeHash(addr common.Address) common.Hash { return common.Hash{} }
func (h *stubHost) GetCode(addr common.Address) []byte          { return h.code[addr] }
func (h *stubHost) CopyCode(addr common.Address, codeOffset uint64, buf []byte) int {
	return copy(buf, h.code[addr][codeOffset:])
}
func (h *stubHost) Selfdestruct(addr, beneficiary common.Address) bool { return true }
func (h *stubHost) Call(msg *Message) (*CallResult, error) {
	return &CallResult{Status: StatusFailed}, errors.New("stubHost.Call not wired")
}
func (h *stubHost) GetTxContext() TxContext       { return TxContext{} }
func (h *stubHost) GetBlockContext() BlockContext { return BlockContext{} }
func (h *stubHost) GetBlockHash(number uint64) common.Hash { return common.Hash{} }
func (h *stubHost) EmitLog(addr common.Address, topics []common.Hash, data []byte) {}
func (h *stubHost) AccessAccount(addr common.Address) bool {
	was := h.exists[addr]
	h.exists[addr] = true
	return was
}
func (h *stubHost) AccessStorage(addr common.Address, key common.Hash) bool { return false }
func (h *stubHost) CreateAccount(addr common.Address)                      { h.exists[addr] = true }
func (h *stubHost) SetNonce(addr common.Address, nonce uint64)             { h.nonces[addr] = nonce }
func (h *stubHost) GetNonce(addr common.Address) uint64                    { return h.nonces[addr] }
func (h *stubHost) AddBalance(addr common.Address, amount *uint256.Int) {
	h.balances[addr] = new(uint256.Int).Add(h.GetBalance(addr), amount)
}
func (h *stubHost) SubBalance(addr common.Address, amount *uint256.Int) {
	h.balances[addr] = new(uint256.Int).Sub(h.GetBalance(addr), amount)
}
func (h *stubHost) SetCode(addr common.Address, code []byte) { h.code[addr] = code }
func (h *stubHost) Snapshot() int                             { return 0 }
func (h *stubHost) RevertToSnapshot(id int)                   {}
func (h *stubHost) AddRefund(gas uint64)                      {}
func (h *stubHost) SubRefund(gas uint64)                      {}

func runCode(t *testing.T, code []byte, gas uint64, static bool) (*ExecutionResult, error) {
	t.Helper()
	msg := &Message{
		Caller:  common.HexToAddress("0x1"),
		Address: common.HexToAddress("0x2"),
		Code:    code,
		Gas:     gas,
		Static:  static,
	}
	return Run(msg, newStubHost(), Cancun)
}

// scenario (a): PUSH1 3; PUSH1 2; ADD; PUSH1 0; MSTORE; PUSH1 32; PUSH1 0; RETURN.
func TestScenarioAddition(t *testing.T) {
	code := []byte{0x60, 0x03, 0x60, 0x02, 0x01, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xF3}
	result, err := runCode(t, code, 100, false)
	assert.NoError(t, err)
	assert.Equal(t, StatusReturned, result.Status)
	want := make([]byte, 32)
	want[31] = 5
	assert.Equal(t, want, result.Output)
	assert.Equal(t, uint64(100-24), result.GasLeft)
}

// scenario (b): PUSH1 8; JUMP; JUMPDEST; STOP — offset 8 is past the end of
// the three-byte-short code, so JUMP must fail with BadJumpDestination.
func TestScenarioBadJump(t *testing.T) {
	code := []byte{0x60, 0x08, 0x56, 0x5B, 0x00}
	result, err := runCode(t, code, 100, false)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrBadJumpDestination))
}

// scenario (c): PUSH1 4; JUMP; STOP; JUMPDEST(@4); STOP.
func TestScenarioValidJump(t *testing.T) {
	code := []byte{0x60, 0x04, 0x56, 0x00, 0x5B, 0x00}
	result, err := runCode(t, code, 100, false)
	assert.NoError(t, err)
	assert.Equal(t, StatusStopped, result.Status)
	assert.Equal(t, uint64(100-13), result.GasLeft)
}

// scenario (d): PUSH1 0; PUSH4 0xFFFFFFFF; MSTORE; STOP, with a generous
// gas budget — storing at offset 0xFFFFFFFF implies a memory expansion to
// 0x100000020 bytes whose cost still exceeds it.
func TestScenarioOutOfGasMemory(t *testing.T) {
	code := []byte{0x60, 0x00, 0x63, 0xFF, 0xFF, 0xFF, 0xFF, 0x52, 0x00}
	result, err := runCode(t, code, 1_000_000, false)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrOutOfGas))
}

// scenario (e): SSTORE in a static frame must fail before any state change.
func TestScenarioStaticSstoreViolation(t *testing.T) {
	// PUSH1 1; PUSH1 0; SSTORE.
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55}
	result, err := runCode(t, code, 10_000, true)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrStaticModeViolation))
}

func TestGasLeftNeverNegative(t *testing.T) {
	code := []byte{0x60, 0x03, 0x60, 0x02, 0x01, 0x00} // PUSH1 3; PUSH1 2; ADD; STOP
	result, err := runCode(t, code, 9, false)
	assert.NoError(t, err)
	assert.Equal(t, StatusStopped, result.Status)
	assert.GreaterOrEqual(t, result.GasLeft, uint64(0))
}

func TestMemoryRoundTrip(t *testing.T) {
	// PUSH32 <v>; PUSH1 0; MSTORE; PUSH1 0; MLOAD; PUSH1 0; MSTORE; PUSH1 32; PUSH1 0; RETURN.
	var v [32]byte
	for i := range v {
		v[i] = byte(i + 1)
	}
	code := []byte{0x7F}
	code = append(code, v[:]...)
	code = append(code, 0x60, 0x00, 0x52) // PUSH1 0; MSTORE
	code = append(code, 0x60, 0x00, 0x51) // PUSH1 0; MLOAD
	code = append(code, 0x60, 0x00, 0x52) // PUSH1 0; MSTORE
	code = append(code, 0x60, 0x20, 0x60, 0x00, 0xF3)
	result, err := runCode(t, code, 100_000, false)
	assert.NoError(t, err)
	assert.Equal(t, StatusReturned, result.Status)
	assert.Equal(t, v[:], result.Output)
}
