package conv

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-convolver/fft"
)

// MultiChannelConvolver convolves each channel with its own filter:
//
//	y[ch] = h[ch] * x[ch]
//
// It is the no-cross-talk special case of [MatrixConvolver] (nIn == nOut,
// diagonal filter matrix) and skips the cross-channel summation entirely,
// halving the per-call multiply-accumulate work for the same channel
// count. Both the non-partitioned and the uniformly partitioned modes are
// supported, with the same silent fallback rule.
type MultiChannelConvolver struct {
	hopSize     int
	numCh       int
	filterLen   int
	partitioned bool

	rfft    fft.RealFFT
	fftSize int
	bins    int

	// Non-partitioned mode.
	filterFD [][]complex128 // [ch][bin]
	overlap  [][]float64    // [ch][fftSize]

	// Partitioned mode.
	numPartitions int
	partFD        [][][]complex128 // [ch][partition][bin]
	history       [][][]complex128 // [ch][partition][bin]
	carry         [][]float64      // [ch][hop]

	// Scratch.
	padded []float64    // fftSize
	xFD    []complex128 // bin
	accFD  []complex128 // bin
	yTime  []float64    // fftSize
}

// NewMultiChannelConvolver creates a per-channel convolver for the given
// hop size and filter bank. When partitioned is true but the filter is
// shorter than one hop, the convolver silently falls back to
// non-partitioned mode.
func NewMultiChannelConvolver(hopSize int, filters FilterBank, partitioned bool) (*MultiChannelConvolver, error) {
	if hopSize <= 0 {
		return nil, fmt.Errorf("%w: hop size %d", ErrInvalidBlockSize, hopSize)
	}
	if filters.Length() == 0 {
		return nil, ErrEmptyFilter
	}

	if partitioned && hopSize > filters.Length() {
		partitioned = false
	}

	c := &MultiChannelConvolver{
		hopSize:     hopSize,
		numCh:       filters.NumChannels(),
		filterLen:   filters.Length(),
		partitioned: partitioned,
	}

	var err error
	if partitioned {
		err = c.initPartitioned(filters)
	} else {
		err = c.initDirect(filters)
	}
	if err != nil {
		return nil, err
	}

	c.padded = make([]float64, c.fftSize)
	c.xFD = make([]complex128, c.bins)
	c.accFD = make([]complex128, c.bins)
	c.yTime = make([]float64, c.fftSize)

	return c, nil
}

func (c *MultiChannelConvolver) initDirect(filters FilterBank) error {
	numBlocks := ceilDiv(c.hopSize+c.filterLen-1, c.hopSize)
	if (numBlocks*c.hopSize)%2 != 0 {
		numBlocks++
	}
	c.fftSize = numBlocks * c.hopSize
	c.bins = c.fftSize/2 + 1

	rfft, err := fft.NewReal(c.fftSize)
	if err != nil {
		return fmt.Errorf("conv: FFT engine for size %d: %w", c.fftSize, err)
	}
	c.rfft = rfft

	pad := make([]float64, c.fftSize)

	c.filterFD = make([][]complex128, c.numCh)
	c.overlap = make([][]float64, c.numCh)
	for ch := range c.filterFD {
		spec := make([]complex128, c.bins)

		clear(pad)
		copy(pad, filters.Taps(ch))
		if err := c.rfft.Forward(spec, pad); err != nil {
			return fmt.Errorf("conv: filter analysis (ch=%d): %w", ch, err)
		}

		c.filterFD[ch] = spec
		c.overlap[ch] = make([]float64, c.fftSize)
	}

	return nil
}

func (c *MultiChannelConvolver) initPartitioned(filters FilterBank) error {
	c.numPartitions = ceilDiv(c.filterLen, c.hopSize)
	c.fftSize = 2 * c.hopSize
	c.bins = c.hopSize + 1

	rfft, err := fft.NewReal(c.fftSize)
	if err != nil {
		return fmt.Errorf("conv: FFT engine for size %d: %w", c.fftSize, err)
	}
	c.rfft = rfft

	pad := make([]float64, c.fftSize)

	c.partFD = make([][][]complex128, c.numCh)
	c.history = make([][][]complex128, c.numCh)
	c.carry = make([][]float64, c.numCh)
	for ch := range c.partFD {
		taps := filters.Taps(ch)
		parts := make([][]complex128, c.numPartitions)
		ring := make([][]complex128, c.numPartitions)

		for k := range parts {
			spec := make([]complex128, c.bins)

			seg := taps[k*c.hopSize : min((k+1)*c.hopSize, len(taps))]
			clear(pad)
			copy(pad, seg)
			if err := c.rfft.Forward(spec, pad); err != nil {
				return fmt.Errorf("conv: filter analysis (ch=%d, partition=%d): %w", ch, k, err)
			}

			parts[k] = spec
			ring[k] = make([]complex128, c.bins)
		}

		c.partFD[ch] = parts
		c.history[ch] = ring
		c.carry[ch] = make([]float64, c.hopSize)
	}

	return nil
}

// ProcessBlock convolves one hop per channel. Both input and output must
// be NumChannels rows of HopSize samples; output channel i depends only
// on input channel i.
func (c *MultiChannelConvolver) ProcessBlock(output, input [][]float64) error {
	if !checkShape(input, c.numCh, c.hopSize) {
		return fmt.Errorf("%w: input must be %d×%d", ErrLengthMismatch, c.numCh, c.hopSize)
	}
	if !checkShape(output, c.numCh, c.hopSize) {
		return fmt.Errorf("%w: output must be %d×%d", ErrLengthMismatch, c.numCh, c.hopSize)
	}

	if c.partitioned {
		return c.processPartitioned(output, input)
	}
	return c.processDirect(output, input)
}

func (c *MultiChannelConvolver) processDirect(output, input [][]float64) error {
	for ch := range input {
		clear(c.padded)
		copy(c.padded, input[ch])
		if err := c.rfft.Forward(c.xFD, c.padded); err != nil {
			return fmt.Errorf("conv: input transform (ch=%d): %w", ch, err)
		}

		clear(c.accFD)
		accumulateProduct(c.accFD, c.filterFD[ch], c.xFD)

		if err := c.rfft.Inverse(c.yTime, c.accFD); err != nil {
			return fmt.Errorf("conv: output transform (ch=%d): %w", ch, err)
		}

		ov := c.overlap[ch]
		copy(ov, ov[c.hopSize:])
		clear(ov[c.fftSize-c.hopSize:])
		vecmath.AddBlockInPlace(ov, c.yTime)

		copy(output[ch], ov[:c.hopSize])
	}

	return nil
}

func (c *MultiChannelConvolver) processPartitioned(output, input [][]float64) error {
	for ch := range input {
		rotateNewestFirst(c.history[ch])

		clear(c.padded)
		copy(c.padded, input[ch])
		if err := c.rfft.Forward(c.history[ch][0], c.padded); err != nil {
			return fmt.Errorf("conv: input transform (ch=%d): %w", ch, err)
		}

		clear(c.accFD)
		parts := c.partFD[ch]
		ring := c.history[ch]
		for k := range parts {
			accumulateProduct(c.accFD, parts[k], ring[k])
		}

		if err := c.rfft.Inverse(c.yTime, c.accFD); err != nil {
			return fmt.Errorf("conv: output transform (ch=%d): %w", ch, err)
		}

		vecmath.AddBlock(output[ch], c.yTime[:c.hopSize], c.carry[ch])
		copy(c.carry[ch], c.yTime[c.hopSize:])
	}

	return nil
}

// Reset clears all signal state, keeping the analyzed filters.
func (c *MultiChannelConvolver) Reset() {
	for _, ov := range c.overlap {
		clear(ov)
	}
	for _, ring := range c.history {
		for _, spec := range ring {
			clear(spec)
		}
	}
	for _, carry := range c.carry {
		clear(carry)
	}
}

// HopSize returns the per-call block size in samples.
func (c *MultiChannelConvolver) HopSize() int { return c.hopSize }

// NumChannels returns the channel count.
func (c *MultiChannelConvolver) NumChannels() int { return c.numCh }

// FilterLen returns the filter length in taps.
func (c *MultiChannelConvolver) FilterLen() int { return c.filterLen }

// FFTSize returns the internal transform size.
func (c *MultiChannelConvolver) FFTSize() int { return c.fftSize }

// NumPartitions returns the filter partition count (0 in non-partitioned
// mode).
func (c *MultiChannelConvolver) NumPartitions() int { return c.numPartitions }

// Partitioned reports whether the convolver operates in partitioned mode.
func (c *MultiChannelConvolver) Partitioned() bool { return c.partitioned }
