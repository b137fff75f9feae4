package fft

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	dspfft "github.com/mjibson/go-dsp/fft"
)

// realPlan wraps an algo-fft real plan. Power-of-two sizes only;
// transforms are allocation-free.
type realPlan struct {
	n    int
	bins int
	plan *algofft.PlanRealT[float64, complex128]
}

// NewRealPlan creates a plan-backed real FFT engine.
// n must be a power of two and >= 2.
func NewRealPlan(n int) (RealFFT, error) {
	if n < 2 || !isPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: plan backend needs a power of two >= 2, got %d", ErrInvalidSize, n)
	}

	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, fmt.Errorf("fft: real plan creation for size %d: %w", n, err)
	}

	return &realPlan{n: n, bins: n/2 + 1, plan: plan}, nil
}

func (r *realPlan) Len() int { return r.n }

func (r *realPlan) SpectrumLen() int { return r.bins }

func (r *realPlan) Forward(dst []complex128, src []float64) error {
	if len(src) != r.n || len(dst) != r.bins {
		return fmt.Errorf("%w: forward wants src[%d] dst[%d], got src[%d] dst[%d]",
			ErrLengthMismatch, r.n, r.bins, len(src), len(dst))
	}

	if err := r.plan.Forward(dst, src); err != nil {
		return fmt.Errorf("fft: forward transform: %w", err)
	}

	return nil
}

func (r *realPlan) Inverse(dst []float64, src []complex128) error {
	if len(src) != r.bins || len(dst) != r.n {
		return fmt.Errorf("%w: inverse wants src[%d] dst[%d], got src[%d] dst[%d]",
			ErrLengthMismatch, r.bins, r.n, len(src), len(dst))
	}

	if err := r.plan.Inverse(dst, src); err != nil {
		return fmt.Errorf("fft: inverse transform: %w", err)
	}

	return nil
}

// realBluestein wraps go-dsp's chirp-z FFT, which handles arbitrary
// lengths. Each transform allocates; use the plan backend on hot paths
// when the size permits.
type realBluestein struct {
	n    int
	bins int
	full []complex128 // full-spectrum scratch for the inverse
}

// NewRealBluestein creates an arbitrary-even-size real FFT engine.
// n must be even and >= 2.
func NewRealBluestein(n int) (RealFFT, error) {
	if n < 2 || n%2 != 0 {
		return nil, fmt.Errorf("%w: real FFT needs an even size >= 2, got %d", ErrInvalidSize, n)
	}

	return &realBluestein{n: n, bins: n/2 + 1, full: make([]complex128, n)}, nil
}

func (r *realBluestein) Len() int { return r.n }

func (r *realBluestein) SpectrumLen() int { return r.bins }

func (r *realBluestein) Forward(dst []complex128, src []float64) error {
	if len(src) != r.n || len(dst) != r.bins {
		return fmt.Errorf("%w: forward wants src[%d] dst[%d], got src[%d] dst[%d]",
			ErrLengthMismatch, r.n, r.bins, len(src), len(dst))
	}

	spec := dspfft.FFTReal(src)
	copy(dst, spec[:r.bins])

	// DC and Nyquist are real by contract; clear rounding residue.
	dst[0] = complex(real(dst[0]), 0)
	dst[r.bins-1] = complex(real(dst[r.bins-1]), 0)

	return nil
}

func (r *realBluestein) Inverse(dst []float64, src []complex128) error {
	if len(src) != r.bins || len(dst) != r.n {
		return fmt.Errorf("%w: inverse wants src[%d] dst[%d], got src[%d] dst[%d]",
			ErrLengthMismatch, r.bins, r.n, len(src), len(dst))
	}

	// Rebuild the full Hermitian spectrum from the one-sided half.
	half := r.n / 2
	r.full[0] = complex(real(src[0]), 0)
	r.full[half] = complex(real(src[half]), 0)

	for k := 1; k < half; k++ {
		r.full[k] = src[k]
		r.full[r.n-k] = complex(real(src[k]), -imag(src[k]))
	}

	t := dspfft.IFFT(r.full)
	for i := range dst {
		dst[i] = real(t[i])
	}

	return nil
}
