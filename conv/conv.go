package conv

import "errors"

// Errors returned by convolver constructors and processing calls.
var (
	ErrInvalidBlockSize  = errors.New("conv: invalid block size")
	ErrEmptyFilter       = errors.New("conv: empty filter")
	ErrFilterDimensions  = errors.New("conv: filter dimensions mismatch")
	ErrLengthMismatch    = errors.New("conv: buffer length mismatch")
	ErrIRIndexOutOfRange = errors.New("conv: impulse response index out of range")
)

// ceilDiv returns ceil(a/b) for positive a, b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// accumulateProduct adds the pointwise product of h and x into acc.
// All three slices have the same length (one-sided spectrum bins).
func accumulateProduct(acc, h, x []complex128) {
	for b := range acc {
		acc[b] += h[b] * x[b]
	}
}

// rotateNewestFirst rotates a spectral history ring one slot so that
// ring[0] is free for the newest block. The oldest spectrum's storage is
// recycled into slot 0; only slice headers move.
func rotateNewestFirst(ring [][]complex128) {
	n := len(ring)
	oldest := ring[n-1]
	copy(ring[1:], ring[:n-1])
	ring[0] = oldest
}

// checkShape verifies that block is nCh rows of hop samples each.
func checkShape(block [][]float64, nCh, hop int) bool {
	if len(block) != nCh {
		return false
	}
	for _, row := range block {
		if len(row) != hop {
			return false
		}
	}
	return true
}
