package fft

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	dspfft "github.com/mjibson/go-dsp/fft"
)

// complexPlan wraps an algo-fft complex plan. Power-of-two sizes only;
// transforms are allocation-free.
type complexPlan struct {
	n    int
	plan *algofft.Plan[complex128]
}

// NewComplexPlan creates a plan-backed complex FFT engine.
// n must be a power of two.
func NewComplexPlan(n int) (ComplexFFT, error) {
	if n < 1 || !isPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: plan backend needs a power of two, got %d", ErrInvalidSize, n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("fft: complex plan creation for size %d: %w", n, err)
	}

	return &complexPlan{n: n, plan: plan}, nil
}

func (c *complexPlan) Len() int { return c.n }

func (c *complexPlan) Forward(dst, src []complex128) error {
	if len(src) != c.n || len(dst) != c.n {
		return fmt.Errorf("%w: want length %d, got src[%d] dst[%d]",
			ErrLengthMismatch, c.n, len(src), len(dst))
	}

	if err := c.plan.Forward(dst, src); err != nil {
		return fmt.Errorf("fft: forward transform: %w", err)
	}

	return nil
}

func (c *complexPlan) Inverse(dst, src []complex128) error {
	if len(src) != c.n || len(dst) != c.n {
		return fmt.Errorf("%w: want length %d, got src[%d] dst[%d]",
			ErrLengthMismatch, c.n, len(src), len(dst))
	}

	if err := c.plan.Inverse(dst, src); err != nil {
		return fmt.Errorf("fft: inverse transform: %w", err)
	}

	return nil
}

// complexBluestein wraps go-dsp's chirp-z FFT for arbitrary sizes.
// Each transform allocates.
type complexBluestein struct {
	n int
}

// NewComplexBluestein creates an arbitrary-size complex FFT engine.
func NewComplexBluestein(n int) (ComplexFFT, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: complex FFT needs size >= 1, got %d", ErrInvalidSize, n)
	}

	return &complexBluestein{n: n}, nil
}

func (c *complexBluestein) Len() int { return c.n }

func (c *complexBluestein) Forward(dst, src []complex128) error {
	if len(src) != c.n || len(dst) != c.n {
		return fmt.Errorf("%w: want length %d, got src[%d] dst[%d]",
			ErrLengthMismatch, c.n, len(src), len(dst))
	}

	copy(dst, dspfft.FFT(src))

	return nil
}

func (c *complexBluestein) Inverse(dst, src []complex128) error {
	if len(src) != c.n || len(dst) != c.n {
		return fmt.Errorf("%w: want length %d, got src[%d] dst[%d]",
			ErrLengthMismatch, c.n, len(src), len(dst))
	}

	copy(dst, dspfft.IFFT(src))

	return nil
}
