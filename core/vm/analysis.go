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
	lru "github.com/hashicorp/golang-lru"

	"github.com/holiman/uint256"

	"github.com/probeum/go-probeum/common"
	"github.com/probeum/go-probeum/crypto"
)

// jumpdestEntry maps a source byte offset onto the index, in an Analysis's
// instruction stream, of the block-begin instruction that byte offset
// analyzed to. Kept sorted by Offset so JUMP/JUMPI can binary-search it.
type jumpdestEntry struct {
	offset uint64
	index  int
}

// Analysis is the one-time-per-code-object product of analyze: a flat,
// pre-decoded instruction stream with synthetic BEGINBLOCK markers, a pool
// backing wide PUSH immediates, and a jump destination table. Everything in
// it is read-only after construction, so a single Analysis is safely shared
// across concurrent executions of the same code (spec.md §9, §4.3).
type Analysis struct {
	code         []byte
	instructions []instruction
	pushPool     []uint256.Int
	jumpdests    []jumpdestEntry
}

// ValidJumpDest reports whprobeer dest is a byte offset of a JUMPDEST that
// survived analysis (i.e. one not embedded inside a PUSH immediate), and
// returns the instruction-stream index to resume at.
func (a *Analysis) ValidJumpDest(dest uint64) (int, bool) {
	lo, hi := 0, len(a.jumpdests)
	for lo < hi {
		mid := (lo + hi) / 2
		if a.jumpdests[mid].offset < dest {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(a.jumpdests) && a.jumpdests[lo].offset == dest {
		return a.jumpdests[lo].index, true
	}
	return 0, false
}

// analysisCacheSize bounds the number of distinct (code, revision) analyses
// kept resident at once, the way the teacher bounds its own in-memory
// caches (consensus/pob's signature and snapshot ARC caches) rather than
// letting them grow without limit across the lifetime of a long-running
// node.
const analysisCacheSize = 1024

// analysisCache memoizes Analysis by code hash, per spec.md §9's guidance
// that analysis be amortized across repeated CALLs to the same contract
// within a block (and, in this package-level cache's case, across blocks
// too — the code of a deployed contract is immutable). Built on the same
// hashicorp/golang-lru ARC cache the teacher reaches for whenever it needs
// a bounded, concurrency-safe cache keyed by hash.
var analysisCache, _ = lru.NewARC(analysisCacheSize)

type analysisCacheKey struct {
	codeHash common.Hash
	revision Revision
}

// analyzeCached memoizes analyze by (code hash, revision): the analysis of
// a given code object against a given revision's jump table never
// changes, so repeated CALLs into the same deployed contract — common
// within a single block, let alone across many — pay the linear analysis
// pass at most once per revision.
func analyzeCached(code []byte, rev Revision, table *JumpTable) *Analysis {
	key := analysisCacheKey{codeHash: crypto.Keccak256Hash(code), revision: rev}
	if v, ok := analysisCache.Get(key); ok {
		return v.(*Analysis)
	}
	a := analyze(code, table)
	analysisCache.Add(key, a)
	return a
}

// analyze performs the single linear pass spec.md §4.3 describes, turning
// raw bytecode into an Analysis against a specific revision's jump table
// (different revisions price, and in rare cases redefine, opcodes, which
// changes the gas/stack numbers baked into BEGINBLOCK markers).
func analyze(code []byte, table *JumpTable) *Analysis {
	a := &Analysis{code: code}

	var (
		blockBeginIdx = -1
		blockGas      uint64
		stackReq      int
		stackGrowth   int
		height        int
	)

	openBlock := func(idx int) {
		blockBeginIdx = idx
		blockGas = 0
		stackReq = 0
		stackGrowth = 0
		height = 0
	}

	closeBlock := func() {
		if blockBeginIdx < 0 {
			return
		}
		a.instructions[blockBeginIdx].block = blockInfo{
			gasCost:        blockGas,
			stackRequired:  stackReq,
			stackMaxGrowth: stackGrowth,
		}
	}

	pc := uint64(0)
	for pc < uint64(len(code)) {
		op := OpCode(code[pc])

		if op == JUMPDEST {
			closeBlock()
			idx := len(a.instructions)
			a.instructions = append(a.instructions, instruction{opcode: JUMPDEST, fn: opBeginBlock})
			a.jumpdests = append(a.jumpdests, jumpdestEntry{offset: pc, index: idx})
			openBlock(idx)
			blockGas += jumpdestGas
			pc++
			continue
		}

		if blockBeginIdx < 0 {
			idx := len(a.instructions)
			a.instructions = append(a.instructions, instruction{opcode: JUMPDEST, fn: opBeginBlock})
			openBlock(idx)
		}

		info := &table[op]

		// Rule 2/3 of spec.md §4.3: accumulate this instruction's constant
		// cost and stack-height effect into the open block before emitting
		// it, tracking the minimum stack height the block needs on entry
		// and the highest the stack ever grows to relative to block entry.
		blockGas += info.constantGas
		if deficit := info.numPop - height; deficit > stackReq {
			stackReq = deficit
		}
		height += info.numPush - info.numPop
		if height > stackGrowth {
			stackGrowth = height
		}

		if op.IsPush() {
			n := op.PushSize()
			idx := len(a.instructions)
			var buf [32]byte
			end := pc + 1 + uint64(n)
			if end > uint64(len(code)) {
				end = uint64(len(code))
			}
			copy(buf[32-n:], code[pc+1:end]) // short reads at code end are zero-padded, spec.md §4.3 rule 5
			if n <= 8 {
				var v uint64
				for _, b := range buf[32-n:] {
					v = v<<8 | uint64(b)
				}
				a.instructions = append(a.instructions, instruction{opcode: op, fn: opPushSmall, smallPush: v})
			} else {
				val := new(uint256.Int).SetBytes(buf[32-n:])
				a.pushPool = append(a.pushPool, *val)
				a.instructions = append(a.instructions, instruction{opcode: op, fn: opPushWide, pushValue: &a.pushPool[len(a.pushPool)-1]})
			}
			pc += 1 + uint64(n)
		} else {
			a.instructions = append(a.instructions, instruction{opcode: op, fn: info.execute})
			pc++
		}

		if op.IsTerminator() {
			closeBlock()
			blockBeginIdx = -1
		}
	}
	closeBlock()

	// Empty code still starts with a (zero-cost) block-begin.
	if len(a.instructions) == 0 {
		a.instructions = append(a.instructions, instruction{opcode: JUMPDEST, fn: opBeginBlock})
	}

	// spec.md §4.3 rule 7: a trailing synthetic STOP so the dispatcher can
	// never step past the end of the instruction stream, even when the
	// final byte of code was mid-block or code was empty altogether.
	a.instructions = append(a.instructions, instruction{opcode: STOP, fn: opStop})

	// pushPool entries were appended one at a time above and may have been
	// reallocated by append; pushValue pointers into earlier slices would
	// then dangle. Guard against that by fixing up pointers in a second
	// pass against the final backing array.
	if len(a.pushPool) > 0 {
		j := 0
		for i := range a.instructions {
			ins := &a.instructions[i]
			if ins.opcode.IsPush() && ins.opcode.PushSize() > 8 {
				ins.pushValue = &a.pushPool[j]
				j++
			}
		}
	}

	return a
}
