package convolve

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// kernelCache memoizes algo-fft plans by transform size, so constructing a
// Manager's UPC and TDC at the same block size never pays to build the same
// plan twice. It is only ever touched at construction and reconfiguration
// time, never from ProcessInput, so its mutex never contends with the audio
// thread (spec section 5).
type kernelCache struct {
	mu    sync.Mutex
	plans map[int]*algofft.Plan[complex64]
}

func newKernelCache() *kernelCache {
	return &kernelCache{plans: make(map[int]*algofft.Plan[complex64])}
}

// plan returns the cached complex64 FFT plan of length n, building one on
// first use.
func (c *kernelCache) plan(n int) (*algofft.Plan[complex64], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.plans[n]; ok {
		return p, nil
	}

	p, err := algofft.NewPlan32(n)
	if err != nil {
		return nil, fmt.Errorf("%w: FFT plan of size %d: %v", ErrAllocationFailure, n, err)
	}

	c.plans[n] = p

	return p, nil
}
