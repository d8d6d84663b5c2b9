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

import "errors"

// FailureKind is the exhaustive taxonomy of reasons a call frame can fail.
// A failure is always local to the frame that raised it: it terminates the
// frame, consumes all remaining gas (except REVERT, which is not a
// FailureKind at all — it is a successful termination that happens to
// return a false boolean to the caller), and never propagates across a
// frame boundary as a thrown condition.
type FailureKind int

const (
	_ FailureKind = iota
	OutOfGas
	StackUnderflow
	StackOverflow
	BadJumpDestination
	InvalidInstruction
	StaticModeViolation
	CallDepthExceeded
	OutOfMemory
	PrecompileFailure
)

func (k FailureKind) String() string {
	switch k {
	case OutOfGas:
		return "out of gas"
	case StackUnderflow:
		return "stack underflow"
	case StackOverflow:
		return "stack overflow"
	case BadJumpDestination:
		return "invalid jump destination"
	case InvalidInstruction:
		return "invalid instruction"
	case StaticModeViolation:
		return "write protection"
	case CallDepthExceeded:
		return "max call depth exceeded"
	case OutOfMemory:
		return "out of memory"
	case PrecompileFailure:
		return "precompile error"
	default:
		return "unknown failure"
	}
}

// Failure is the error type every handler and the dispatcher return on
// abnormal termination. It records the FailureKind so callers can compare
// with errors.Is against the Err* sentinels below.
type Failure struct {
	Kind FailureKind
}

func (f *Failure) Error() string { return f.Kind.String() }

func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Kind == f.Kind
}

// newFailure is the single constructor used by handlers; keeping it in one
// place makes it cheap to allocate the sentinel (comparable) Failure value
// rather than a fresh one per call.
func newFailure(kind FailureKind) *Failure { return failureSingletons[kind] }

var failureSingletons = map[FailureKind]*Failure{
	OutOfGas:            {OutOfGas},
	StackUnderflow:      {StackUnderflow},
	StackOverflow:       {StackOverflow},
	BadJumpDestination:  {BadJumpDestination},
	InvalidInstruction:  {InvalidInstruction},
	StaticModeViolation: {StaticModeViolation},
	CallDepthExceeded:   {CallDepthExceeded},
	OutOfMemory:         {OutOfMemory},
	PrecompileFailure:   {PrecompileFailure},
}

// Sentinel errors usable with errors.Is(err, vm.ErrOutOfGas) etc.
var (
	ErrOutOfGas            error = failureSingletons[OutOfGas]
	ErrStackUnderflow      error = failureSingletons[StackUnderflow]
	ErrStackOverflow       error = failureSingletons[StackOverflow]
	ErrBadJumpDestination  error = failureSingletons[BadJumpDestination]
	ErrInvalidInstruction  error = failureSingletons[InvalidInstruction]
	ErrStaticModeViolation error = failureSingletons[StaticModeViolation]
	ErrCallDepthExceeded   error = failureSingletons[CallDepthExceeded]
	ErrOutOfMemory         error = failureSingletons[OutOfMemory]
	ErrPrecompileFailure   error = failureSingletons[PrecompileFailure]
)

// errExecutionReverted is returned by RETURN/REVERT-adjacent plumbing when
// the caller's Go-level call chain needs an error value (e.g. an embedder's
// Call wrapper); it is deliberately not a FailureKind, per spec.md §4.7.
var errExecutionReverted = errors.New("execution reverted")
