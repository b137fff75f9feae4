// Package fft defines the real and complex FFT contracts used by the
// convolution engines, together with two interchangeable backends.
//
// The RealFFT contract is a real-to-half-complex transform of even size N
// producing N/2+1 bins: bin 0 is DC, bin N/2 is Nyquist, both with zero
// imaginary part. The forward transform is unscaled; the inverse carries
// the 1/N factor, so Inverse(Forward(x)) recovers x within floating-point
// tolerance.
//
// Two backends are provided:
//
//   - Plan backend: algo-fft plans, power-of-two sizes only, allocation-free
//     per transform.
//   - Bluestein backend: go-dsp's chirp-z FFT, any even size, allocates
//     per transform.
//
// NewReal and NewComplex auto-select between them based on the requested
// size. Engines are cheap enough to create per consumer; the convolvers in
// package conv each own private engine instances sized to their padded
// block length and never share them across instances.
package fft
