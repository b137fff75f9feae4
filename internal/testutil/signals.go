// Package testutil provides deterministic signals and tolerance helpers
// for the convolution engine tests.
package testutil

import (
	"math"
	"math/rand/v2"
)

// Impulse returns a unit impulse of the given length: 1 at pos, 0
// elsewhere.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Noise returns reproducible white noise in [-1, 1) from a fixed-seed
// generator.
func Noise(seed uint64, length int) []float64 {
	rng := rand.New(rand.NewPCG(seed, 0))
	out := make([]float64, length)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

// Sine returns a sine wave with the given period in samples.
func Sine(period float64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi / period
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DecayKernel returns an exponentially decaying filter starting at 1.
func DecayKernel(length int, ratio float64) []float64 {
	out := make([]float64, length)
	v := 1.0
	for i := range out {
		out[i] = v
		v *= ratio
	}
	return out
}
