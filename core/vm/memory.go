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
)

// Memory is the byte-addressable scratch space of a call frame. Logically
// an infinite zero-initialized array; physically a buffer grown in 32-byte
// words on touch, with every expansion billed per spec.md §3's quadratic
// formula.
type Memory struct {
	store []byte
}

// NewMemory creates a new empty memory.
func NewMemory() *Memory {
	return &Memory{}
}

// memoryGasCost computes the absolute gas cost of a memory of the given
// byte size, per spec.md §3: 3*w + w^2/512 where w is the word count.
// Returns an OutOfMemory-flavored error (via the bool) when the size
// computation itself overflows a 64-bit word count.
func memoryGasCost(size uint64) (uint64, bool) {
	if size == 0 {
		return 0, false
	}
	// overflow check: size can safely be up to this many bytes before the
	// squared term overflows uint64.
	if size > 0x1FFFFFFFE0 {
		return 0, true
	}
	words := toWordSize(size)
	linear := words * memoryGasPerWord
	square := words * words / memoryGasQuadraticDivisor
	return linear + square, false
}

// toWordSize rounds size up to the next multiple of 32, in words.
func toWordSize(size uint64) uint64 {
	if size > 0xFFFFFFFFFFFFFFFF-31 {
		return 0xFFFFFFFFFFFFFFFF/32 + 1
	}
	return (size + 31) / 32
}

// Len returns the current size of memory in bytes.
func (m *Memory) Len() int { return len(m.store) }

// Resize grows the memory to size bytes (size must already be a multiple of
// 32); newly exposed bytes are zero. Resize never shrinks memory. Callers
// must have already paid for the expansion via memoryGasCost.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// Set copies value into memory starting at offset. Memory must already be
// resized to fit; a range that runs past the current size writes nothing.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		return
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes a 256-bit word, left-padded big-endian, at offset.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		return
	}
	b32 := val.Bytes32()
	copy(m.store[offset:offset+32], b32[:])
}

// GetCopy returns a fresh copy of size bytes starting at offset.
func (m *Memory) GetCopy(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	if len(m.store) > int(offset) {
		cpy := make([]byte, size)
		copy(cpy, m.store[offset:offset+size])
		return cpy
	}
	return make([]byte, size)
}

// GetPtr returns a slice view of size bytes starting at offset. The caller
// must not retain it past the next mutation of memory.
func (m *Memory) GetPtr(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	if len(m.store) > int(offset) {
		return m.store[offset : offset+size]
	}
	return make([]byte, size)
}

// Data returns the backing store.
func (m *Memory) Data() []byte { return m.store }

// Copy performs an in-memory, possibly overlapping, copy (MCOPY, EIP-5656).
func (m *Memory) Copy(dst, src, size uint64) {
	if size == 0 {
		return
	}
	copy(m.store[dst:dst+size], m.store[src:src+size])
}
