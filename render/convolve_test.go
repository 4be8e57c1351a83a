package render

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvolve(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	noise := func(n int) []float64 {
		x := make([]float64, n)
		for i := range x {
			x[i] = rnd.Float64()*2 - 1
		}
		return x
	}

	tests := []struct {
		name      string
		signalLen int
		kernelLen int
	}{
		{"short_kernel", 500, 8},
		{"threshold_kernel", 300, DIRECT_THRESHOLD},
		{"long_kernel", 1000, 700},
		{"kernel_longer_than_signal", 50, 2000},
		{"single_samples", 1, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			signal, kernel := noise(test.signalLen), noise(test.kernelLen)
			got, err := Convolve(signal, kernel)
			require.NoError(t, err)
			want := direct(signal, kernel)
			if len(kernel) > len(signal) {
				want = direct(kernel, signal)
			}
			require.Len(t, got, test.signalLen+test.kernelLen-1)
			for i := range want {
				assert.InDelta(t, want[i], got[i], 1e-9)
			}
		})
	}
}

func TestConvolveImpulse(t *testing.T) {
	kernel := make([]float64, 200)
	kernel[37] = 0.5
	got, err := Convolve([]float64{1, 2, 3}, kernel)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got[37], 1e-12)
	assert.InDelta(t, 1.0, got[38], 1e-12)
	assert.InDelta(t, 1.5, got[39], 1e-12)
}

func TestConvolveEmpty(t *testing.T) {
	_, err := Convolve(nil, []float64{1})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = Convolve([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNormalize(t *testing.T) {
	x := Normalize([]float64{0.1, -0.4, 0.2})
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	assert.InDelta(t, PEAK_LEVEL, peak, 1e-12)
	assert.InDelta(t, -PEAK_LEVEL, x[1], 1e-12)

	silence := []float64{0, 0, 0}
	assert.Equal(t, []float64{0, 0, 0}, Normalize(silence))
}

func TestMixAndDownmix(t *testing.T) {
	assert := assert.New(t)
	a := [][]float64{{1, 1}, {1}}
	b := [][]float64{{0, 0, 2}, {2, 2}}

	mixed, err := Mix([][][]float64{a, b})
	require.NoError(t, err)
	assert.Equal([]float64{1, 1, 2}, mixed[0])
	assert.Equal([]float64{3, 2}, mixed[1])

	assert.Equal([]float64{2, 1.5, 1}, Average(mixed...))
	down := Downmix(mixed)
	assert.InDelta(PEAK_LEVEL, down[0], 1e-12)
	assert.InDelta(PEAK_LEVEL/2, down[2], 1e-12)

	_, err = Mix([][][]float64{a, {{1}}})
	assert.Error(err)
	_, err = Mix(nil)
	assert.ErrorIs(err, ErrEmptyInput)
}

func TestArraySignal(t *testing.T) {
	out, err := ArraySignal([]float64{1, 0, -1}, [][]float64{{1}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, -1}, out[0])
	assert.Equal(t, []float64{0, 1, 0, -1}, out[1])

	_, err = ArraySignal(nil, [][]float64{{1}})
	assert.ErrorIs(t, err, ErrEmptyInput)
}
