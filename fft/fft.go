package fft

import "errors"

// Errors returned by engine constructors and transform calls.
var (
	ErrInvalidSize    = errors.New("fft: invalid transform size")
	ErrLengthMismatch = errors.New("fft: buffer length mismatch")
)

// RealFFT is a real-to-half-complex discrete Fourier transform of fixed
// even size N.
//
// Forward produces the one-sided spectrum of N/2+1 bins. Bin 0 (DC) and
// bin N/2 (Nyquist) have zero imaginary parts. The forward transform is
// unscaled; Inverse includes the 1/N factor, so a forward/inverse round
// trip reproduces the input.
//
// Implementations are pure transforms: no state is carried between calls
// beyond owned scratch buffers, and a single instance must not be used
// concurrently from multiple goroutines.
type RealFFT interface {
	// Len returns the transform size N.
	Len() int

	// SpectrumLen returns the one-sided bin count, N/2+1.
	SpectrumLen() int

	// Forward computes the one-sided spectrum of src (length N) into dst
	// (length N/2+1).
	Forward(dst []complex128, src []float64) error

	// Inverse reconstructs the time-domain signal (length N) from the
	// one-sided spectrum src (length N/2+1), scaling by 1/N.
	Inverse(dst []float64, src []complex128) error
}

// ComplexFFT is a complex-to-complex transform of fixed size N with the
// same scaling convention as RealFFT: unscaled forward, 1/N inverse.
type ComplexFFT interface {
	// Len returns the transform size N.
	Len() int

	// Forward computes the DFT of src into dst, both of length N.
	Forward(dst, src []complex128) error

	// Inverse computes the scaled inverse DFT of src into dst, both of
	// length N.
	Inverse(dst, src []complex128) error
}

// NewReal creates a real FFT engine of even size n, selecting the plan
// backend for power-of-two sizes and the Bluestein backend otherwise.
func NewReal(n int) (RealFFT, error) {
	if isPowerOfTwo(n) {
		return NewRealPlan(n)
	}
	return NewRealBluestein(n)
}

// NewComplex creates a complex FFT engine of size n, selecting the plan
// backend for power-of-two sizes and the Bluestein backend otherwise.
func NewComplex(n int) (ComplexFFT, error) {
	if isPowerOfTwo(n) {
		return NewComplexPlan(n)
	}
	return NewComplexBluestein(n)
}

// isPowerOfTwo returns true if n is a power of 2.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
