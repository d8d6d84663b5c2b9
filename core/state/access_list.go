// Copyright 2020 The go-probeum Authors
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
	mapset "github.com/deckarep/golang-set"

	"github.com/probeum/go-probeum/common"
)

// accessListSlot is a storage slot qualified by the account it belongs to,
// so a single set can hold slots from many accounts at once.
type accessListSlot struct {
	address common.Address
	slot    common.Hash
}

// accessList tracks which addresses and storage slots have been touched
// during a transaction, for EIP-2929 warm/cold gas accounting (spec.md §6).
// Membership only ever grows within a transaction; reverts are driven by the
// journal, not by removal here except on an explicit RevertToSnapshot.
type accessList struct {
	addresses mapset.Set
	slots     mapset.Set
}

func newAccessList() *accessList {
	return &accessList{
		addresses: mapset.NewThreadUnsafeSet(),
		slots:     mapset.NewThreadUnsafeSet(),
	}
}

func (al *accessList) containsAddress(addr common.Address) bool {
	return al.addresses.Contains(addr)
}

func (al *accessList) containsSlot(addr common.Address, slot common.Hash) bool {
	return al.slots.Contains(accessListSlot{address: addr, slot: slot})
}

func (al *accessList) addAddress(addr common.Address) bool {
	if al.addresses.Contains(addr) {
		return false
	}
	al.addresses.Add(addr)
	return true
}

func (al *accessList) addSlot(addr common.Address, slot common.Hash) (addrAdded, slotAdded bool) {
	addrAdded = al.addAddress(addr)
	key := accessListSlot{address: addr, slot: slot}
	if al.slots.Contains(key) {
		return addrAdded, false
	}
	al.slots.Add(key)
	return addrAdded, true
}

func (al *accessList) deleteAddress(addr common.Address) {
	al.addresses.Remove(addr)
}

func (al *accessList) deleteSlot(addr common.Address, slot common.Hash) {
	al.slots.Remove(accessListSlot{address: addr, slot: slot})
}
