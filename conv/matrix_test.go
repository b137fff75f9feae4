package conv

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-convolver/internal/testutil"
)

// directConvolve computes the full linear convolution of signal and
// kernel directly. O(N*M), reference only.
func directConvolve(signal, kernel []float64) []float64 {
	out := make([]float64, len(signal)+len(kernel)-1)
	for i, s := range signal {
		for j, k := range kernel {
			out[i+j] += s * k
		}
	}
	return out
}

// runSingleChannel feeds signal hop-by-hop through a 1×1 matrix
// convolver and returns the concatenated output. The signal length must
// be a multiple of the hop size.
func runSingleChannel(t *testing.T, m *MatrixConvolver, signal []float64) []float64 {
	t.Helper()

	hop := m.HopSize()
	if len(signal)%hop != 0 {
		t.Fatalf("signal length %d not a multiple of hop %d", len(signal), hop)
	}

	out := make([]float64, 0, len(signal))
	outBlock := [][]float64{make([]float64, hop)}

	for pos := 0; pos < len(signal); pos += hop {
		inBlock := [][]float64{signal[pos : pos+hop]}
		if err := m.ProcessBlock(outBlock, inBlock); err != nil {
			t.Fatalf("ProcessBlock at %d: %v", pos, err)
		}
		out = append(out, outBlock[0]...)
	}

	return out
}

func mustMatrix(t *testing.T, hop int, taps []float64, numOut, numIn int, partitioned bool) *MatrixConvolver {
	t.Helper()

	filters, err := NewFilterMatrix(taps, numOut, numIn, len(taps)/(numOut*numIn))
	if err != nil {
		t.Fatalf("NewFilterMatrix: %v", err)
	}

	m, err := NewMatrixConvolver(hop, filters, partitioned)
	if err != nil {
		t.Fatalf("NewMatrixConvolver: %v", err)
	}

	return m
}

func TestMatrixIdentityPassthrough(t *testing.T) {
	// hop=4, H=[1,0,0,0]: the output block must equal the input block
	// with no added delay, in both modes.
	for _, partitioned := range []bool{false, true} {
		name := "NonPartitioned"
		if partitioned {
			name = "Partitioned"
		}

		t.Run(name, func(t *testing.T) {
			m := mustMatrix(t, 4, []float64{1, 0, 0, 0}, 1, 1, partitioned)

			if m.Partitioned() != partitioned {
				t.Fatalf("Partitioned() = %v, want %v", m.Partitioned(), partitioned)
			}

			got := runSingleChannel(t, m, []float64{1, 2, 3, 4})
			testutil.RequireSliceNearlyEqual(t, got, []float64{1, 2, 3, 4}, 1e-9)
		})
	}
}

func TestMatrixImpulseExtractsFilter(t *testing.T) {
	// A unit impulse must reproduce the filter taps from sample 0
	// (zero startup latency).
	const hop = 16
	kernel := testutil.DecayKernel(50, 0.97)

	for _, partitioned := range []bool{false, true} {
		name := "NonPartitioned"
		if partitioned {
			name = "Partitioned"
		}

		t.Run(name, func(t *testing.T) {
			m := mustMatrix(t, hop, kernel, 1, 1, partitioned)

			signal := testutil.Impulse(4*hop, 0)
			got := runSingleChannel(t, m, signal)

			testutil.RequireSliceNearlyEqual(t, got[:len(kernel)], kernel, 1e-9)
			testutil.RequireSliceNearlyEqual(t, got[len(kernel):], make([]float64, len(got)-len(kernel)), 1e-9)
		})
	}
}

func TestMatrixModeEquivalence(t *testing.T) {
	const (
		hop       = 32
		kernelLen = 96
		numBlocks = 12
	)

	kernel := testutil.Noise(1, kernelLen)
	signal := testutil.Noise(2, numBlocks*hop)

	direct := mustMatrix(t, hop, kernel, 1, 1, false)
	part := mustMatrix(t, hop, kernel, 1, 1, true)

	gotDirect := runSingleChannel(t, direct, signal)
	gotPart := runSingleChannel(t, part, signal)

	testutil.RequireSliceNearlyEqual(t, gotPart, gotDirect, 1e-8)

	// Both must also agree with the time-domain reference.
	want := directConvolve(signal, kernel)[:len(signal)]
	testutil.RequireSliceNearlyEqual(t, gotDirect, want, 1e-8)
}

func TestMatrixCrossChannelSum(t *testing.T) {
	// 2 inputs, 1 output: the output must be the sum of both per-pair
	// convolutions.
	const (
		hop       = 8
		kernelLen = 20
		numBlocks = 8
	)

	h0 := testutil.Noise(3, kernelLen)
	h1 := testutil.Noise(4, kernelLen)
	taps := append(append([]float64{}, h0...), h1...)

	x0 := testutil.Noise(5, numBlocks*hop)
	x1 := testutil.Noise(6, numBlocks*hop)

	for _, partitioned := range []bool{false, true} {
		name := "NonPartitioned"
		if partitioned {
			name = "Partitioned"
		}

		t.Run(name, func(t *testing.T) {
			m := mustMatrix(t, hop, taps, 1, 2, partitioned)

			out := make([]float64, 0, numBlocks*hop)
			outBlock := [][]float64{make([]float64, hop)}

			for pos := 0; pos < numBlocks*hop; pos += hop {
				in := [][]float64{x0[pos : pos+hop], x1[pos : pos+hop]}
				if err := m.ProcessBlock(outBlock, in); err != nil {
					t.Fatalf("ProcessBlock: %v", err)
				}
				out = append(out, outBlock[0]...)
			}

			y0 := directConvolve(x0, h0)
			y1 := directConvolve(x1, h1)
			want := make([]float64, len(out))
			for i := range want {
				want[i] = y0[i] + y1[i]
			}

			testutil.RequireSliceNearlyEqual(t, out, want, 1e-8)
		})
	}
}

func TestMatrixPartitionCount(t *testing.T) {
	// length 100 at hop 32 must yield exactly ceil(100/32) = 4 partitions.
	m := mustMatrix(t, 32, testutil.Noise(7, 100), 1, 1, true)

	if !m.Partitioned() {
		t.Fatal("expected partitioned mode")
	}
	if m.NumPartitions() != 4 {
		t.Errorf("NumPartitions() = %d, want 4", m.NumPartitions())
	}
	if m.FFTSize() != 64 {
		t.Errorf("FFTSize() = %d, want 64", m.FFTSize())
	}
}

func TestMatrixPartitionedFallback(t *testing.T) {
	// hop 256 with a 64-tap filter gives fewer than two partitions, so
	// the partitioned request silently becomes non-partitioned and the
	// output streams must match sample for sample.
	const hop = 256
	kernel := testutil.Noise(8, 64)
	signal := testutil.Noise(9, 8*hop)

	requested := mustMatrix(t, hop, kernel, 1, 1, true)
	reference := mustMatrix(t, hop, kernel, 1, 1, false)

	if requested.Partitioned() {
		t.Fatal("expected silent fallback to non-partitioned mode")
	}
	if requested.NumPartitions() != 0 {
		t.Errorf("NumPartitions() = %d, want 0 after fallback", requested.NumPartitions())
	}

	got := runSingleChannel(t, requested, signal)
	want := runSingleChannel(t, reference, signal)
	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

func TestMatrixLinearity(t *testing.T) {
	const (
		hop       = 16
		kernelLen = 40
		numBlocks = 6
		a, b      = 0.75, -1.5
	)

	kernel := testutil.Noise(10, kernelLen)
	x1 := testutil.Noise(11, numBlocks*hop)
	x2 := testutil.Noise(12, numBlocks*hop)

	mix := make([]float64, len(x1))
	for i := range mix {
		mix[i] = a*x1[i] + b*x2[i]
	}

	for _, partitioned := range []bool{false, true} {
		name := "NonPartitioned"
		if partitioned {
			name = "Partitioned"
		}

		t.Run(name, func(t *testing.T) {
			y1 := runSingleChannel(t, mustMatrix(t, hop, kernel, 1, 1, partitioned), x1)
			y2 := runSingleChannel(t, mustMatrix(t, hop, kernel, 1, 1, partitioned), x2)
			yMix := runSingleChannel(t, mustMatrix(t, hop, kernel, 1, 1, partitioned), mix)

			want := make([]float64, len(yMix))
			for i := range want {
				want[i] = a*y1[i] + b*y2[i]
			}

			testutil.RequireSliceNearlyEqual(t, yMix, want, 1e-8)
		})
	}
}

func TestMatrixReset(t *testing.T) {
	const hop = 8
	kernel := testutil.DecayKernel(24, 0.9)
	signal := testutil.Noise(13, 4*hop)

	for _, partitioned := range []bool{false, true} {
		m := mustMatrix(t, hop, kernel, 1, 1, partitioned)

		first := runSingleChannel(t, m, signal)
		m.Reset()
		second := runSingleChannel(t, m, signal)

		testutil.RequireSliceNearlyEqual(t, second, first, 0)
	}
}

func TestMatrixConstructionErrors(t *testing.T) {
	taps := []float64{1, 0}
	filters, err := NewFilterMatrix(taps, 1, 1, 2)
	if err != nil {
		t.Fatalf("NewFilterMatrix: %v", err)
	}

	if _, err := NewMatrixConvolver(0, filters, false); !errors.Is(err, ErrInvalidBlockSize) {
		t.Errorf("hop=0: got %v, want ErrInvalidBlockSize", err)
	}
	if _, err := NewMatrixConvolver(-4, filters, true); !errors.Is(err, ErrInvalidBlockSize) {
		t.Errorf("hop=-4: got %v, want ErrInvalidBlockSize", err)
	}
}

func TestMatrixProcessBlockShapeErrors(t *testing.T) {
	m := mustMatrix(t, 8, testutil.Noise(14, 16), 2, 1, false)

	in := [][]float64{make([]float64, 8)}
	out := [][]float64{make([]float64, 8), make([]float64, 8)}

	if err := m.ProcessBlock(out, [][]float64{}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("missing input channel: got %v, want ErrLengthMismatch", err)
	}
	if err := m.ProcessBlock(out, [][]float64{make([]float64, 4)}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("short input row: got %v, want ErrLengthMismatch", err)
	}
	if err := m.ProcessBlock(out[:1], in); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("missing output channel: got %v, want ErrLengthMismatch", err)
	}
	if err := m.ProcessBlock(out, in); err != nil {
		t.Errorf("valid shapes: %v", err)
	}
}

func TestMatrixOddFFTSizeRoundsUp(t *testing.T) {
	// hop=6, length=13 would give ceil(18/6)*6 = 18 which is even, but
	// hop=3, length=7 gives ceil(9/3)*3 = 9; the real FFT needs an even
	// size, so the convolver pads one extra hop. Results must still be
	// exact.
	m := mustMatrix(t, 3, testutil.Noise(15, 7), 1, 1, false)

	if m.FFTSize()%2 != 0 {
		t.Fatalf("FFTSize() = %d, want even", m.FFTSize())
	}

	signal := testutil.Noise(16, 30)
	got := runSingleChannel(t, m, signal)
	want := directConvolve(signal, testutil.Noise(15, 7))[:len(signal)]
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-8)
}
