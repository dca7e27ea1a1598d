// Package convolve implements a real-time partitioned convolution engine: a
// Uniform-Partition FFT Convolver (UPConvolver) handles the impulse response
// "head" at one block of latency, a TimeDistributedConvolver handles the
// "tail" with its FFT work amortized across four-block super-steps, and a
// Manager splits an impulse response between the two and sums their outputs
// sample-accurately.
//
// The package has no I/O of its own: callers hand it []float32 blocks and an
// impulse response, and borrow the produced output block back. Everything
// that negotiates sample rate, channel count, or file formats lives outside
// this package.
package convolve
