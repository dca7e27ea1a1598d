package convolve

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by construction and reconfiguration operations.
// None of these are ever returned from the audio path (ProcessInput).
var (
	// ErrInvalidBlockSize is returned when a block size is not a positive power of two.
	ErrInvalidBlockSize = errors.New("convolve: block size must be a positive power of two")

	// ErrEmptyImpulseResponse is returned when an impulse response has no samples.
	ErrEmptyImpulseResponse = errors.New("convolve: impulse response must not be empty")

	// ErrAllocationFailure is returned when a required buffer or FFT plan could
	// not be constructed.
	ErrAllocationFailure = errors.New("convolve: allocation failure")
)

// panicInvalidPhase guards the split-radix quarter index, an internal
// invariant correct control flow never violates (spec section 4.3.2).
func panicInvalidPhase(quarter int) {
	panic(fmt.Sprintf("convolve: invalid decomposition quarter %d, want 0-3", quarter))
}
