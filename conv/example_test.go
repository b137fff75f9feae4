package conv_test

import (
	"fmt"

	"github.com/cwbudde/algo-convolver/conv"
)

func ExampleMatrixConvolver() {
	// Identity filter: the output block equals the input block.
	filters, _ := conv.NewFilterMatrix([]float64{1, 0, 0, 0}, 1, 1, 4)

	m, _ := conv.NewMatrixConvolver(4, filters, false)

	output := [][]float64{make([]float64, 4)}
	_ = m.ProcessBlock(output, [][]float64{{1, 2, 3, 4}})

	fmt.Printf("%.0f\n", output[0])
	// Output:
	// [1 2 3 4]
}

func ExampleMatrixConvolver_partitioned() {
	// A 100-tap filter at hop 32 is split into ceil(100/32) = 4
	// partitions, each analyzed with a 64-point FFT.
	taps := make([]float64, 100)
	taps[0] = 1

	filters, _ := conv.NewFilterMatrix(taps, 1, 1, 100)
	m, _ := conv.NewMatrixConvolver(32, filters, true)

	fmt.Println("partitioned:", m.Partitioned())
	fmt.Println("partitions:", m.NumPartitions())
	fmt.Println("fft size:", m.FFTSize())
	// Output:
	// partitioned: true
	// partitions: 4
	// fft size: 64
}

func ExampleMultiChannelConvolver() {
	// Per-channel gains: channel 0 passes through, channel 1 is halved.
	filters, _ := conv.NewFilterBank([]float64{1, 0, 0.5, 0}, 2, 2)

	c, _ := conv.NewMultiChannelConvolver(2, filters, false)

	output := [][]float64{make([]float64, 2), make([]float64, 2)}
	_ = c.ProcessBlock(output, [][]float64{{1, 1}, {1, 1}})

	fmt.Printf("%.1f %.1f\n", output[0], output[1])
	// Output:
	// [1.0 1.0] [0.5 0.5]
}

func ExampleTimeVaryingConvolver() {
	// A bank of two single-tap IRs. Switching the selection is audible
	// one block later, crossfaded over a block.
	bank, _ := conv.NewIRBank([]float64{1.0, 0.5}, 2, 1, 1)

	tv, _ := conv.NewTimeVaryingConvolver(4, bank, 0)

	input := []float64{1, 1, 1, 1}
	output := [][]float64{make([]float64, 4)}

	for _, idx := range []int{0, 1, 1, 1} {
		_ = tv.ProcessBlock(output, input, idx)
		fmt.Printf("%.2f\n", output[0])
	}
	// Output:
	// [1.00 1.00 1.00 1.00]
	// [1.00 1.00 1.00 1.00]
	// [1.00 0.83 0.67 0.50]
	// [0.50 0.50 0.50 0.50]
}
