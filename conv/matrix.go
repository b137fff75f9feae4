package conv

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-convolver/fft"
)

// MatrixConvolver convolves a multi-channel input block with a dense
// filter matrix, summing over input channels per output channel:
//
//	y[out] = Σ_in  h[out][in] * x[in]
//
// Two modes are supported (see the package documentation): non-partitioned
// overlap-add over one filter-sized FFT, and uniformly partitioned
// convolution with a 2×hop FFT whose per-block cost is independent of the
// filter length.
//
// Topology is fixed at construction. ProcessBlock consumes one hop of
// input per channel and produces one hop of output per channel, does not
// allocate, and is not safe for concurrent use.
type MatrixConvolver struct {
	hopSize     int
	numIn       int
	numOut      int
	filterLen   int
	partitioned bool

	rfft    fft.RealFFT
	fftSize int
	bins    int

	// Non-partitioned mode: one spectrum per (out, in) pair and a
	// fftSize-long overlap-add accumulator per output channel.
	filterFD [][][]complex128 // [out][in][bin]
	overlap  [][]float64      // [out][fftSize]

	// Partitioned mode: one spectrum per (out, in, partition), a ring of
	// the last numPartitions input spectra per input channel (newest at
	// slot 0), and a hop-long overlap carry per output channel.
	numPartitions int
	partFD        [][][][]complex128 // [out][in][partition][bin]
	history       [][][]complex128   // [in][partition][bin]
	carry         [][]float64        // [out][hop]

	// Scratch, sized at construction.
	padded []float64      // fftSize
	inFD   [][]complex128 // [in][bin], non-partitioned forward results
	accFD  []complex128   // bin accumulator
	yTime  []float64      // fftSize
}

// NewMatrixConvolver creates a matrix convolver for the given hop size
// and filter matrix. When partitioned is true but the filter is shorter
// than one hop, partitioning yields fewer than two segments and no
// benefit, so the convolver silently falls back to non-partitioned mode;
// Partitioned reports the mode in effect.
func NewMatrixConvolver(hopSize int, filters FilterMatrix, partitioned bool) (*MatrixConvolver, error) {
	if hopSize <= 0 {
		return nil, fmt.Errorf("%w: hop size %d", ErrInvalidBlockSize, hopSize)
	}
	if filters.Length() == 0 {
		return nil, ErrEmptyFilter
	}

	if partitioned && hopSize > filters.Length() {
		partitioned = false
	}

	m := &MatrixConvolver{
		hopSize:     hopSize,
		numIn:       filters.NumInputs(),
		numOut:      filters.NumOutputs(),
		filterLen:   filters.Length(),
		partitioned: partitioned,
	}

	var err error
	if partitioned {
		err = m.initPartitioned(filters)
	} else {
		err = m.initDirect(filters)
	}
	if err != nil {
		return nil, err
	}

	m.padded = make([]float64, m.fftSize)
	m.accFD = make([]complex128, m.bins)
	m.yTime = make([]float64, m.fftSize)

	return m, nil
}

// initDirect sets up non-partitioned overlap-add state: the FFT size is
// the smallest multiple of the hop covering hop+filterLen-1 samples
// (rounded up one more hop if that lands on an odd size, since the real
// FFT needs an even transform).
func (m *MatrixConvolver) initDirect(filters FilterMatrix) error {
	numBlocks := ceilDiv(m.hopSize+m.filterLen-1, m.hopSize)
	if (numBlocks*m.hopSize)%2 != 0 {
		numBlocks++
	}
	m.fftSize = numBlocks * m.hopSize
	m.bins = m.fftSize/2 + 1

	rfft, err := fft.NewReal(m.fftSize)
	if err != nil {
		return fmt.Errorf("conv: FFT engine for size %d: %w", m.fftSize, err)
	}
	m.rfft = rfft

	pad := make([]float64, m.fftSize)

	m.filterFD = make([][][]complex128, m.numOut)
	for out := range m.filterFD {
		m.filterFD[out] = make([][]complex128, m.numIn)
		for in := range m.filterFD[out] {
			spec := make([]complex128, m.bins)

			clear(pad)
			copy(pad, filters.Taps(out, in))
			if err := m.rfft.Forward(spec, pad); err != nil {
				return fmt.Errorf("conv: filter analysis (out=%d, in=%d): %w", out, in, err)
			}

			m.filterFD[out][in] = spec
		}
	}

	m.overlap = make([][]float64, m.numOut)
	for out := range m.overlap {
		m.overlap[out] = make([]float64, m.fftSize)
	}

	m.inFD = make([][]complex128, m.numIn)
	for in := range m.inFD {
		m.inFD[in] = make([]complex128, m.bins)
	}

	return nil
}

// initPartitioned sets up uniformly partitioned state: the filter is cut
// into hop-sized segments, each zero-padded to 2×hop and transformed
// once.
func (m *MatrixConvolver) initPartitioned(filters FilterMatrix) error {
	m.numPartitions = ceilDiv(m.filterLen, m.hopSize)
	m.fftSize = 2 * m.hopSize
	m.bins = m.hopSize + 1

	rfft, err := fft.NewReal(m.fftSize)
	if err != nil {
		return fmt.Errorf("conv: FFT engine for size %d: %w", m.fftSize, err)
	}
	m.rfft = rfft

	pad := make([]float64, m.fftSize)

	m.partFD = make([][][][]complex128, m.numOut)
	for out := range m.partFD {
		m.partFD[out] = make([][][]complex128, m.numIn)
		for in := range m.partFD[out] {
			taps := filters.Taps(out, in)
			parts := make([][]complex128, m.numPartitions)

			for k := range parts {
				spec := make([]complex128, m.bins)

				seg := taps[k*m.hopSize : min((k+1)*m.hopSize, len(taps))]
				clear(pad)
				copy(pad, seg)
				if err := m.rfft.Forward(spec, pad); err != nil {
					return fmt.Errorf("conv: filter analysis (out=%d, in=%d, partition=%d): %w", out, in, k, err)
				}

				parts[k] = spec
			}

			m.partFD[out][in] = parts
		}
	}

	m.history = make([][][]complex128, m.numIn)
	for in := range m.history {
		m.history[in] = make([][]complex128, m.numPartitions)
		for k := range m.history[in] {
			m.history[in][k] = make([]complex128, m.bins)
		}
	}

	m.carry = make([][]float64, m.numOut)
	for out := range m.carry {
		m.carry[out] = make([]float64, m.hopSize)
	}

	return nil
}

// ProcessBlock convolves one hop of multi-channel input into output.
// input must be NumInputs rows of HopSize samples; output must be
// NumOutputs rows of HopSize samples.
func (m *MatrixConvolver) ProcessBlock(output, input [][]float64) error {
	if !checkShape(input, m.numIn, m.hopSize) {
		return fmt.Errorf("%w: input must be %d×%d", ErrLengthMismatch, m.numIn, m.hopSize)
	}
	if !checkShape(output, m.numOut, m.hopSize) {
		return fmt.Errorf("%w: output must be %d×%d", ErrLengthMismatch, m.numOut, m.hopSize)
	}

	if m.partitioned {
		return m.processPartitioned(output, input)
	}
	return m.processDirect(output, input)
}

func (m *MatrixConvolver) processDirect(output, input [][]float64) error {
	for in := range input {
		clear(m.padded)
		copy(m.padded, input[in])
		if err := m.rfft.Forward(m.inFD[in], m.padded); err != nil {
			return fmt.Errorf("conv: input transform (in=%d): %w", in, err)
		}
	}

	for out := range output {
		clear(m.accFD)
		for in := range input {
			accumulateProduct(m.accFD, m.filterFD[out][in], m.inFD[in])
		}

		if err := m.rfft.Inverse(m.yTime, m.accFD); err != nil {
			return fmt.Errorf("conv: output transform (out=%d): %w", out, err)
		}

		// Slide the overlap-add accumulator one hop, retire the oldest
		// samples, and fold in the new fftSize-long contribution.
		ov := m.overlap[out]
		copy(ov, ov[m.hopSize:])
		clear(ov[m.fftSize-m.hopSize:])
		vecmath.AddBlockInPlace(ov, m.yTime)

		copy(output[out], ov[:m.hopSize])
	}

	return nil
}

func (m *MatrixConvolver) processPartitioned(output, input [][]float64) error {
	// Partition k must always multiply the input spectrum from k hops
	// ago, so the ring rotates before the newest block lands in slot 0.
	for in := range input {
		rotateNewestFirst(m.history[in])

		clear(m.padded)
		copy(m.padded, input[in])
		if err := m.rfft.Forward(m.history[in][0], m.padded); err != nil {
			return fmt.Errorf("conv: input transform (in=%d): %w", in, err)
		}
	}

	for out := range output {
		clear(m.accFD)
		for in := range input {
			parts := m.partFD[out][in]
			hist := m.history[in]
			for k := range parts {
				accumulateProduct(m.accFD, parts[k], hist[k])
			}
		}

		if err := m.rfft.Inverse(m.yTime, m.accFD); err != nil {
			return fmt.Errorf("conv: output transform (out=%d): %w", out, err)
		}

		vecmath.AddBlock(output[out], m.yTime[:m.hopSize], m.carry[out])
		copy(m.carry[out], m.yTime[m.hopSize:])
	}

	return nil
}

// Reset clears all signal state (spectral history, overlap accumulators
// and carries), ready for a fresh input stream. The analyzed filters are
// kept.
func (m *MatrixConvolver) Reset() {
	for _, ov := range m.overlap {
		clear(ov)
	}
	for _, ring := range m.history {
		for _, spec := range ring {
			clear(spec)
		}
	}
	for _, c := range m.carry {
		clear(c)
	}
}

// HopSize returns the per-call block size in samples.
func (m *MatrixConvolver) HopSize() int { return m.hopSize }

// NumInputs returns the input channel count.
func (m *MatrixConvolver) NumInputs() int { return m.numIn }

// NumOutputs returns the output channel count.
func (m *MatrixConvolver) NumOutputs() int { return m.numOut }

// FilterLen returns the filter length in taps.
func (m *MatrixConvolver) FilterLen() int { return m.filterLen }

// FFTSize returns the internal transform size.
func (m *MatrixConvolver) FFTSize() int { return m.fftSize }

// NumPartitions returns the filter partition count (0 in non-partitioned
// mode).
func (m *MatrixConvolver) NumPartitions() int { return m.numPartitions }

// Partitioned reports whether the convolver operates in partitioned
// mode. This can be false even when partitioned mode was requested, if
// the filter was shorter than one hop.
func (m *MatrixConvolver) Partitioned() bool { return m.partitioned }
