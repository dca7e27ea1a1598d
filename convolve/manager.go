package convolve

import (
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	// defaultBlockSize is used by New when given blockSize <= 0 (spec.md §9
	// open question, resolved against the original's DEFAULT_BUFFER_SIZE).
	defaultBlockSize = 128

	// headPartitions is K, the fixed number of uniform partitions the head
	// branch covers regardless of block size (spec section 4.4).
	headPartitions = 8
)

// Manager owns one UPC/TDC pair, splits an impulse response between them,
// and sums their outputs sample-accurately — spec section 4.4. The zero
// value is not usable; construct with New.
type Manager struct {
	mu sync.Mutex // try-lock exclusion primitive guarding reconfiguration, spec section 5

	blockSize int
	ir        []float32

	upc *upConvolver
	tdc *timeDistributedConvolver // nil when the IR fits entirely in the head

	// out is swapped, never resized in place: rebuild stores a fresh slice
	// so that ProcessInput and OutputBuffer never observe a torn read/write
	// against a buffer being resized concurrently by a reconfiguration.
	out   atomic.Pointer[[]float32]
	cache *kernelCache
}

// New constructs a Manager for the given impulse response and block size.
// blockSize <= 0 defaults to 128. A nil or empty ir defaults to a Dirac
// impulse of length 128, per spec section 6's default-IR contract.
func New(ir []float32, blockSize int) (*Manager, error) {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	if !IsPowerOfTwo(blockSize) {
		return nil, ErrInvalidBlockSize
	}

	if len(ir) == 0 {
		ir = make([]float32, defaultBlockSize)
		Dirac(ir)
	}

	m := &Manager{
		blockSize: blockSize,
		cache:     newKernelCache(),
	}
	if err := m.rebuild(ir); err != nil {
		return nil, err
	}

	return m, nil
}

// rebuild constructs fresh UPC/TDC children from ir at the Manager's current
// block size. Callers must hold mu.
func (m *Manager) rebuild(ir []float32) error {
	irCopy := make([]float32, len(ir))
	copy(irCopy, ir)

	headLen := headPartitions * m.blockSize
	if headLen > len(irCopy) {
		headLen = len(irCopy)
	}

	upc, err := newUPConvolver(irCopy[:headLen], m.blockSize, headPartitions, m.cache)
	if err != nil {
		return err
	}

	var tdc *timeDistributedConvolver
	if len(irCopy) > headLen {
		tdc, err = newTimeDistributedConvolver(irCopy[headLen:], m.blockSize, m.cache)
		if err != nil {
			return err
		}
	}

	m.ir = irCopy
	m.upc = upc
	m.tdc = tdc

	buf := make([]float32, m.blockSize)
	m.out.Store(&buf)

	return nil
}

// SetImpulseResponse installs a new impulse response, rebuilding both
// children from scratch under the write-exclusive lock (spec section 4.4,
// 6). Any in-flight ProcessInput call on another goroutine will instead
// observe a TryLock failure and emit silence rather than block.
func (m *Manager) SetImpulseResponse(ir []float32) error {
	if len(ir) == 0 {
		return ErrEmptyImpulseResponse
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rebuild(ir)
}

// SetBlockSize rebuilds both children for a new block size, clearing all
// history (spec section 3 lifecycle).
func (m *Manager) SetBlockSize(blockSize int) error {
	if !IsPowerOfTwo(blockSize) {
		return ErrInvalidBlockSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.blockSize
	m.blockSize = blockSize
	if err := m.rebuild(m.ir); err != nil {
		m.blockSize = prev
		return err
	}

	return nil
}

// ProcessInput advances the engine by one block of length BlockSize(). On
// the real-time audio path this never blocks: if a reconfiguration is in
// flight it emits a block of silence instead of waiting for it (spec
// section 5's safety valve). block's length must match the currently
// configured block size; a mismatch is a programmer error and panics,
// mirroring the teacher's own ProcessBlock length check.
func (m *Manager) ProcessInput(block []float32) {
	if !m.mu.TryLock() {
		if out := m.out.Load(); out != nil {
			buf := *out
			for i := range buf {
				buf[i] = 0
			}
		}
		return
	}
	defer m.mu.Unlock()

	if len(block) != m.blockSize {
		panic(fmt.Sprintf("convolve: input block length %d does not match configured block size %d", len(block), m.blockSize))
	}

	m.upc.processInput(block)
	upcOut := m.upc.outputBuffer()

	out := *m.out.Load()

	if m.tdc != nil {
		m.tdc.processInput(block)
		tdcOut := m.tdc.outputBuffer()
		for i := range out {
			out[i] = upcOut[i] + tdcOut[i]
		}
	} else {
		copy(out, upcOut)
	}
}

// OutputBuffer borrows the block most recently produced by ProcessInput.
// The returned slice is reused on the next call; callers that need to keep
// the data must copy it. Safe to call concurrently with a reconfiguration:
// rebuild never mutates an already-published buffer, only swaps in a new
// one.
func (m *Manager) OutputBuffer() []float32 {
	out := m.out.Load()
	if out == nil {
		return nil
	}

	return *out
}

// BlockSize returns the currently configured block size.
func (m *Manager) BlockSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.blockSize
}

// Latency returns the tail branch's fixed warm-up delay in samples, or 0 if
// the impulse response fits entirely in the head branch.
func (m *Manager) Latency() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tdc == nil {
		return 0
	}

	return m.tdc.latency()
}
