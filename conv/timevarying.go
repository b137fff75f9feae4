package conv

import (
	"fmt"

	"github.com/cwbudde/algo-convolver/fft"
)

// TimeVaryingConvolver performs uniformly partitioned convolution of a
// single input channel against a bank of multi-output impulse responses,
// selectable per block by index. Every IR in the bank is analyzed up
// front, trading memory for zero re-analysis latency on switches.
//
// To keep switches click-free the output is a linear crossfade between
// the convolution results of the two most recent selections: the IR
// chosen one block ago fades in while the IR chosen two blocks ago fades
// out. The audible result therefore lags the selection by one block. The
// current block's convolution is computed only to seed the overlap carry
// for the next call, which keeps the cost bounded at three convolutions
// per block worst case (and one when the index is stable). This delayed
// double-crossfade is intentional and load-bearing; see the package
// documentation.
type TimeVaryingConvolver struct {
	hopSize       int
	numOut        int
	filterLen     int
	numIRs        int
	fftSize       int
	bins          int
	numPartitions int

	rfft fft.RealFFT

	filterFD [][][][]complex128 // [ir][out][partition][bin]
	history  [][]complex128     // [partition][bin], newest at slot 0

	fadeIn  []float64 // hop
	fadeOut []float64 // hop

	// Per-output overlap carries for the fade-in and fade-out streams.
	carry     [][]float64 // [out][hop], tail of the newest-IR result
	carryLast [][]float64 // [out][hop], tail of the previous-IR result

	posIdxLast  int
	posIdxLast2 int

	// Scratch.
	padded  []float64    // fftSize
	accFD   []complex128 // bin
	zN      []float64    // fftSize, result for the current selection
	zNLast  []float64    // fftSize, result for the previous selection
	zNLast2 []float64    // fftSize, result for the selection before that
}

// NewTimeVaryingConvolver creates a time-varying convolver for the given
// hop size and IR bank, starting from initialIR. hopSize must be at least
// 2 (the fade ramps need two points); initialIR must be a valid bank
// index.
func NewTimeVaryingConvolver(hopSize int, bank IRBank, initialIR int) (*TimeVaryingConvolver, error) {
	if hopSize < 2 {
		return nil, fmt.Errorf("%w: hop size %d, need >= 2", ErrInvalidBlockSize, hopSize)
	}
	if bank.Length() == 0 {
		return nil, ErrEmptyFilter
	}
	if initialIR < 0 || initialIR >= bank.NumIRs() {
		return nil, fmt.Errorf("%w: initial index %d, bank holds %d", ErrIRIndexOutOfRange, initialIR, bank.NumIRs())
	}

	t := &TimeVaryingConvolver{
		hopSize:       hopSize,
		numOut:        bank.NumOutputs(),
		filterLen:     bank.Length(),
		numIRs:        bank.NumIRs(),
		fftSize:       2 * hopSize,
		bins:          hopSize + 1,
		numPartitions: ceilDiv(bank.Length(), hopSize),
		posIdxLast:    initialIR,
		posIdxLast2:   initialIR,
	}

	rfft, err := fft.NewReal(t.fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: FFT engine for size %d: %w", t.fftSize, err)
	}
	t.rfft = rfft

	pad := make([]float64, t.fftSize)

	t.filterFD = make([][][][]complex128, t.numIRs)
	for ir := range t.filterFD {
		t.filterFD[ir] = make([][][]complex128, t.numOut)
		for out := range t.filterFD[ir] {
			taps := bank.Taps(ir, out)
			parts := make([][]complex128, t.numPartitions)

			for k := range parts {
				spec := make([]complex128, t.bins)

				seg := taps[k*hopSize : min((k+1)*hopSize, len(taps))]
				clear(pad)
				copy(pad, seg)
				if err := t.rfft.Forward(spec, pad); err != nil {
					return nil, fmt.Errorf("conv: IR analysis (ir=%d, out=%d, partition=%d): %w", ir, out, k, err)
				}

				parts[k] = spec
			}

			t.filterFD[ir][out] = parts
		}
	}

	t.history = make([][]complex128, t.numPartitions)
	for k := range t.history {
		t.history[k] = make([]complex128, t.bins)
	}

	t.fadeIn = make([]float64, hopSize)
	t.fadeOut = make([]float64, hopSize)
	for n := range t.fadeIn {
		t.fadeIn[n] = float64(n) / float64(hopSize-1)
		t.fadeOut[n] = 1 - t.fadeIn[n]
	}

	t.carry = make([][]float64, t.numOut)
	t.carryLast = make([][]float64, t.numOut)
	for out := range t.carry {
		t.carry[out] = make([]float64, hopSize)
		t.carryLast[out] = make([]float64, hopSize)
	}

	t.padded = make([]float64, t.fftSize)
	t.accFD = make([]complex128, t.bins)
	t.zN = make([]float64, t.fftSize)
	t.zNLast = make([]float64, t.fftSize)
	t.zNLast2 = make([]float64, t.fftSize)

	return t, nil
}

// ProcessBlock convolves one hop of input against the IR selected by
// irIndex. input must hold HopSize samples; output must be NumOutputs
// rows of HopSize samples. The selection may change on every call; the
// audible output always blends the two most recent selections.
func (t *TimeVaryingConvolver) ProcessBlock(output [][]float64, input []float64, irIndex int) error {
	if irIndex < 0 || irIndex >= t.numIRs {
		return fmt.Errorf("%w: index %d, bank holds %d", ErrIRIndexOutOfRange, irIndex, t.numIRs)
	}
	if len(input) != t.hopSize {
		return fmt.Errorf("%w: input must hold %d samples, got %d", ErrLengthMismatch, t.hopSize, len(input))
	}
	if !checkShape(output, t.numOut, t.hopSize) {
		return fmt.Errorf("%w: output must be %d×%d", ErrLengthMismatch, t.numOut, t.hopSize)
	}

	rotateNewestFirst(t.history)

	clear(t.padded)
	copy(t.padded, input)
	if err := t.rfft.Forward(t.history[0], t.padded); err != nil {
		return fmt.Errorf("conv: input transform: %w", err)
	}

	for out := range output {
		if err := t.convolveInto(t.zN, irIndex, out); err != nil {
			return err
		}

		// Recompute only the streams whose IR actually differs.
		if irIndex != t.posIdxLast {
			if err := t.convolveInto(t.zNLast, t.posIdxLast, out); err != nil {
				return err
			}
		} else {
			copy(t.zNLast, t.zN)
		}

		if t.posIdxLast != t.posIdxLast2 {
			if err := t.convolveInto(t.zNLast2, t.posIdxLast2, out); err != nil {
				return err
			}
		} else {
			copy(t.zNLast2, t.zNLast)
		}

		carry := t.carry[out]
		carryLast := t.carryLast[out]
		for n := range t.hopSize {
			output[out][n] = t.fadeIn[n]*(t.zNLast[n]+carry[n]) + t.fadeOut[n]*(t.zNLast2[n]+carryLast[n])
		}

		// Seed next block's carries: each stream continues with the tail
		// of the result computed against the IR it will represent then.
		copy(carry, t.zN[t.hopSize:])
		copy(carryLast, t.zNLast[t.hopSize:])
	}

	t.posIdxLast2 = t.posIdxLast
	t.posIdxLast = irIndex

	return nil
}

// convolveInto multiply-accumulates the spectral history against the
// partition spectra of (ir, out) and inverse-transforms the sum into dst
// (fftSize samples).
func (t *TimeVaryingConvolver) convolveInto(dst []float64, ir, out int) error {
	clear(t.accFD)

	parts := t.filterFD[ir][out]
	for k := range parts {
		accumulateProduct(t.accFD, parts[k], t.history[k])
	}

	if err := t.rfft.Inverse(dst, t.accFD); err != nil {
		return fmt.Errorf("conv: output transform (ir=%d, out=%d): %w", ir, out, err)
	}

	return nil
}

// Reset clears all signal state and rewinds the selection history to the
// given IR index, keeping the analyzed bank.
func (t *TimeVaryingConvolver) Reset(irIndex int) error {
	if irIndex < 0 || irIndex >= t.numIRs {
		return fmt.Errorf("%w: index %d, bank holds %d", ErrIRIndexOutOfRange, irIndex, t.numIRs)
	}

	for _, spec := range t.history {
		clear(spec)
	}
	for out := range t.carry {
		clear(t.carry[out])
		clear(t.carryLast[out])
	}
	t.posIdxLast = irIndex
	t.posIdxLast2 = irIndex

	return nil
}

// HopSize returns the per-call block size in samples.
func (t *TimeVaryingConvolver) HopSize() int { return t.hopSize }

// NumOutputs returns the output channel count.
func (t *TimeVaryingConvolver) NumOutputs() int { return t.numOut }

// NumIRs returns the number of impulse responses in the bank.
func (t *TimeVaryingConvolver) NumIRs() int { return t.numIRs }

// FilterLen returns the IR length in taps.
func (t *TimeVaryingConvolver) FilterLen() int { return t.filterLen }

// FFTSize returns the internal transform size (always 2×HopSize).
func (t *TimeVaryingConvolver) FFTSize() int { return t.fftSize }

// NumPartitions returns the per-IR partition count.
func (t *TimeVaryingConvolver) NumPartitions() int { return t.numPartitions }
