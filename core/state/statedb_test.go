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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/probeum/go-probeum/common"
	"github.com/probeum/go-probeum/core/vm"
)

var (
	testAddr1 = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testAddr2 = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestBalanceSnapshotRevert(t *testing.T) {
	db := New()
	db.AddBalance(testAddr1, uint256.NewInt(100))

	snap := db.Snapshot()
	db.SubBalance(testAddr1, uint256.NewInt(40))
	db.AddBalance(testAddr2, uint256.NewInt(40))
	assert.Equal(t, uint256.NewInt(60).String(), db.GetBalance(testAddr1).String())
	assert.Equal(t, uint256.NewInt(40).String(), db.GetBalance(testAddr2).String())

	db.RevertToSnapshot(snap)
	assert.Equal(t, uint256.NewInt(100).String(), db.GetBalance(testAddr1).String())
	assert.True(t, db.GetBalance(testAddr2).IsZero())
}

func TestNestedSnapshotRevert(t *testing.T) {
	db := New()
	db.SetNonce(testAddr1, 1)

	outer := db.Snapshot()
	db.SetNonce(testAddr1, 2)
	inner := db.Snapshot()
	db.SetNonce(testAddr1, 3)
	assert.Equal(t, uint64(3), db.GetNonce(testAddr1))

	db.RevertToSnapshot(inner)
	assert.Equal(t, uint64(2), db.GetNonce(testAddr1))

	db.RevertToSnapshot(outer)
	assert.Equal(t, uint64(1), db.GetNonce(testAddr1))
}

func TestStorageSnapshotRevert(t *testing.T) {
	db := New()
	key := common.HexToHash("0x1")
	val := common.HexToHash("0x2a")

	snap := db.Snapshot()
	status := db.SetStorage(testAddr1, key, val)
	assert.Equal(t, vm.StorageAdded, status)
	assert.Equal(t, val, db.GetStorage(testAddr1, key))

	db.RevertToSnapshot(snap)
	assert.Equal(t, common.Hash{}, db.GetStorage(testAddr1, key))
}

func TestStorageStatusClassification(t *testing.T) {
	zero := common.Hash{}
	a := common.HexToHash("0xa")
	b := common.HexToHash("0xb")

	cases := []struct {
		name               string
		original, current, value common.Hash
		want               vm.StorageStatus
	}{
		{"unchanged", zero, a, a, vm.StorageUnchanged},
		{"added", zero, zero, a, vm.StorageAdded},
		{"deleted", a, a, zero, vm.StorageDeleted},
		{"modified", a, a, b, vm.StorageModified},
		{"deletedAdded", a, zero, b, vm.StorageDeletedAdded},
		{"addedDeleted", zero, a, zero, vm.StorageAddedDeleted},
		{"modifiedAgain", a, b, zero, vm.StorageModifiedAgain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyStorageStatus(tc.original, tc.current, tc.value)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAccessListWarmCold(t *testing.T) {
	db := New()
	key := common.HexToHash("0x1")

	assert.False(t, db.AccessAccount(testAddr1))
	assert.True(t, db.AccessAccount(testAddr1))

	assert.False(t, db.AccessStorage(testAddr1, key))
	assert.True(t, db.AccessStorage(testAddr1, key))
}

func TestAccessListRevertOnSnapshot(t *testing.T) {
	db := New()
	snap := db.Snapshot()
	assert.False(t, db.AccessAccount(testAddr1))
	db.RevertToSnapshot(snap)
	assert.False(t, db.AccessAccount(testAddr1), "cold access must be forgotten after a revert")
}

func TestSelfdestructMovesBalance(t *testing.T) {
	db := New()
	db.AddBalance(testAddr1, uint256.NewInt(500))

	hadBalance := db.Selfdestruct(testAddr1, testAddr2)
	assert.True(t, hadBalance)
	assert.True(t, db.GetBalance(testAddr1).IsZero())
	assert.Equal(t, uint256.NewInt(500).String(), db.GetBalance(testAddr2).String())
	assert.True(t, db.HasSelfdestructed(testAddr1))
}

func TestFinaliseFoldsDirtyIntoCommitted(t *testing.T) {
	db := New()
	key := common.HexToHash("0x1")
	val := common.HexToHash("0x2a")

	db.SetStorage(testAddr1, key, val)
	db.Finalise()

	// After Finalise, val is the committed baseline: writing it again is a
	// no-op write (StorageUnchanged), not StorageAdded.
	status := db.SetStorage(testAddr1, key, val)
	assert.Equal(t, vm.StorageUnchanged, status)
}

func TestCopyIsIndependent(t *testing.T) {
	db := New()
	db.AddBalance(testAddr1, uint256.NewInt(10))

	cpy := db.Copy()
	cpy.AddBalance(testAddr1, uint256.NewInt(5))

	assert.Equal(t, uint256.NewInt(10).String(), db.GetBalance(testAddr1).String())
	assert.Equal(t, uint256.NewInt(15).String(), cpy.GetBalance(testAddr1).String())
}

func TestEmptyAccount(t *testing.T) {
	db := New()
	assert.True(t, db.Empty(testAddr1), "a never-touched address is empty")

	db.AddBalance(testAddr1, uint256.NewInt(1))
	assert.False(t, db.Empty(testAddr1))
}
