// Package conv provides block-synchronous FFT convolution engines for
// multi-channel audio processing.
//
// Three engines are provided, all built on the FFT contracts in package
// fft:
//
//   - [MatrixConvolver]: applies a dense filter matrix H[out][in] to a
//     multi-channel input block, summing over input channels per output
//     channel.
//   - [MultiChannelConvolver]: one independent filter per channel, no
//     cross-channel summation. Half the multiply-accumulate work of the
//     matrix convolver for the same channel count; the right choice for
//     per-speaker equalization or per-microphone calibration.
//   - [TimeVaryingConvolver]: partitioned convolution against a bank of
//     pre-analyzed impulse responses, selectable per block by index, with
//     a linear crossfade across the previous two selections so switching
//     never clicks.
//
// # Modes
//
// The matrix and multi-channel convolvers support two algorithmic modes:
//
//   - Non-partitioned: one large FFT sized to the whole filter
//     (the smallest multiple of the hop size covering hop+filterLen-1)
//     with a classic overlap-add accumulator per output channel.
//   - Uniformly partitioned: the filter is split into hop-sized segments,
//     each zero-padded to 2×hop and transformed once; a ring of the last
//     numPartitions input spectra per channel is multiply-accumulated
//     against all segments each hop. The FFT cost per block is bounded by
//     the hop size, independent of filter length.
//
// Requesting partitioned mode with a filter shorter than one hop yields
// fewer than two partitions and no benefit, so construction silently
// falls back to non-partitioned mode; Partitioned() reports the mode in
// effect.
//
// # Processing model
//
// Each engine is created with a fixed topology (channel counts, hop size,
// filter set) and consumes exactly one hop of input per channel per call,
// producing one hop of output per channel. Filters are copied and
// transformed at construction; replacing them means creating a new
// instance. ProcessBlock never allocates (with a power-of-two FFT size)
// and never blocks, so it is safe to call from a real-time audio thread.
// Instances are not safe for concurrent use.
package conv
