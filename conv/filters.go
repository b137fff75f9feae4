package conv

import "fmt"

// FilterMatrix is a read-only view over a dense filter matrix stored as a
// flat row-major slice: taps for output channel o, input channel i occupy
// data[(o*numIn+i)*length : (o*numIn+i+1)*length]. The layout is part of
// the public contract; callers typically hand in filter sets produced by
// measurement or rendering tools in exactly this order.
//
// The view does not copy; the convolver constructors copy and transform
// the taps, after which the caller may reuse the backing slice.
type FilterMatrix struct {
	data   []float64
	numOut int
	numIn  int
	length int
}

// NewFilterMatrix wraps data as a numOut × numIn × length filter matrix.
func NewFilterMatrix(data []float64, numOut, numIn, length int) (FilterMatrix, error) {
	if length <= 0 {
		return FilterMatrix{}, fmt.Errorf("%w: filter length %d", ErrEmptyFilter, length)
	}
	if numOut <= 0 || numIn <= 0 {
		return FilterMatrix{}, fmt.Errorf("%w: %d outputs, %d inputs", ErrFilterDimensions, numOut, numIn)
	}
	if len(data) != numOut*numIn*length {
		return FilterMatrix{}, fmt.Errorf("%w: have %d taps, want %d×%d×%d = %d",
			ErrFilterDimensions, len(data), numOut, numIn, length, numOut*numIn*length)
	}

	return FilterMatrix{data: data, numOut: numOut, numIn: numIn, length: length}, nil
}

// NumOutputs returns the output channel count.
func (m FilterMatrix) NumOutputs() int { return m.numOut }

// NumInputs returns the input channel count.
func (m FilterMatrix) NumInputs() int { return m.numIn }

// Length returns the tap count per filter.
func (m FilterMatrix) Length() int { return m.length }

// Taps returns the taps for the (out, in) filter pair as a subslice of
// the backing data.
func (m FilterMatrix) Taps(out, in int) []float64 {
	off := (out*m.numIn + in) * m.length
	return m.data[off : off+m.length]
}

// FilterBank is a read-only view over per-channel filters stored as a
// flat row-major slice: channel ch occupies
// data[ch*length : (ch+1)*length].
type FilterBank struct {
	data   []float64
	numCh  int
	length int
}

// NewFilterBank wraps data as a numCh × length filter bank.
func NewFilterBank(data []float64, numCh, length int) (FilterBank, error) {
	if length <= 0 {
		return FilterBank{}, fmt.Errorf("%w: filter length %d", ErrEmptyFilter, length)
	}
	if numCh <= 0 {
		return FilterBank{}, fmt.Errorf("%w: %d channels", ErrFilterDimensions, numCh)
	}
	if len(data) != numCh*length {
		return FilterBank{}, fmt.Errorf("%w: have %d taps, want %d×%d = %d",
			ErrFilterDimensions, len(data), numCh, length, numCh*length)
	}

	return FilterBank{data: data, numCh: numCh, length: length}, nil
}

// NumChannels returns the channel count.
func (b FilterBank) NumChannels() int { return b.numCh }

// Length returns the tap count per filter.
func (b FilterBank) Length() int { return b.length }

// Taps returns the taps for channel ch as a subslice of the backing data.
func (b FilterBank) Taps(ch int) []float64 {
	off := ch * b.length
	return b.data[off : off+b.length]
}

// IRBank is a read-only view over a bank of multi-output impulse
// responses stored as a flat row-major slice: the taps for IR ir, output
// channel out occupy data[(ir*numOut+out)*length : ...+length]. Used by
// [TimeVaryingConvolver], which pre-analyzes every IR in the bank at
// construction so selection can change per block with no re-analysis
// cost.
type IRBank struct {
	data   []float64
	numIRs int
	numOut int
	length int
}

// NewIRBank wraps data as a numIRs × numOut × length impulse response bank.
func NewIRBank(data []float64, numIRs, numOut, length int) (IRBank, error) {
	if length <= 0 {
		return IRBank{}, fmt.Errorf("%w: filter length %d", ErrEmptyFilter, length)
	}
	if numIRs <= 0 || numOut <= 0 {
		return IRBank{}, fmt.Errorf("%w: %d IRs, %d outputs", ErrFilterDimensions, numIRs, numOut)
	}
	if len(data) != numIRs*numOut*length {
		return IRBank{}, fmt.Errorf("%w: have %d taps, want %d×%d×%d = %d",
			ErrFilterDimensions, len(data), numIRs, numOut, length, numIRs*numOut*length)
	}

	return IRBank{data: data, numIRs: numIRs, numOut: numOut, length: length}, nil
}

// NumIRs returns the number of impulse responses in the bank.
func (b IRBank) NumIRs() int { return b.numIRs }

// NumOutputs returns the output channel count per IR.
func (b IRBank) NumOutputs() int { return b.numOut }

// Length returns the tap count per (IR, output) pair.
func (b IRBank) Length() int { return b.length }

// Taps returns the taps for impulse response ir, output channel out, as a
// subslice of the backing data.
func (b IRBank) Taps(ir, out int) []float64 {
	off := (ir*b.numOut + out) * b.length
	return b.data[off : off+b.length]
}
