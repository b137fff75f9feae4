package fft_test

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-convolver/fft"
)

func ExampleRealFFT() {
	const n = 8

	engine, _ := fft.NewReal(n)

	// One cycle of a cosine lands entirely in bin 1.
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Cos(2 * math.Pi * float64(i) / n)
	}

	spectrum := make([]complex128, engine.SpectrumLen())
	_ = engine.Forward(spectrum, signal)

	for bin, c := range spectrum {
		fmt.Printf("bin %d: %.1f\n", bin, cmplx.Abs(c))
	}
	// Output:
	// bin 0: 0.0
	// bin 1: 4.0
	// bin 2: 0.0
	// bin 3: 0.0
	// bin 4: 0.0
}

func ExampleNewReal() {
	// Power-of-two sizes use the fast plan backend; any other even size
	// is handled transparently.
	for _, n := range []int{64, 96} {
		engine, err := fft.NewReal(n)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Printf("n=%d bins=%d\n", engine.Len(), engine.SpectrumLen())
	}
	// Output:
	// n=64 bins=33
	// n=96 bins=49
}
