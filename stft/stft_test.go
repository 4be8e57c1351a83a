package stft

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameCount(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 1},
		{100, 1},
		{256, 1},
		{257, 2},
		{384, 2},
		{385, 3},
		{16000, 124},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, FrameCount(test.n, STFT_SIZE, STFT_HOP), "n=%d", test.n)
	}
}

func TestAnalyzeTone(t *testing.T) {
	assert := assert.New(t)
	fs := 16000.0
	f0 := 1000.0 // bin 16
	x := make([]float64, 4096)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * f0 * float64(i) / fs)
	}

	tensor, err := Analyze([][]float64{x, x[:2000]}, STFT_SIZE, STFT_HOP)
	require.NoError(t, err)
	assert.Equal(STFT_SIZE/2+1, tensor.Bins)
	assert.Equal(FrameCount(4096, STFT_SIZE, STFT_HOP), tensor.Frames)
	assert.Equal(2, tensor.Channels)
	assert.InDelta(f0, tensor.BinFrequency(16, fs), 1e-9)

	frame := 5
	peak := 0
	for b := 0; b < tensor.Bins; b++ {
		if cmplx.Abs(tensor.At(b, frame, 0)) > cmplx.Abs(tensor.At(peak, frame, 0)) {
			peak = b
		}
	}
	assert.Equal(16, peak)
	// Periodic Hann has a coherent gain of one half
	assert.InDelta(STFT_SIZE/4, cmplx.Abs(tensor.At(16, frame, 0)), 1e-6)

	// The shorter channel is zero-padded
	last := tensor.Frames - 1
	assert.Zero(cmplx.Abs(tensor.At(16, last, 1)))
	assert.Equal(tensor.At(16, frame, 0), tensor.Snapshot(16, frame)[0])
}

func TestBand(t *testing.T) {
	tensor := NewTensor(STFT_SIZE/2+1, 1, 1, STFT_SIZE)
	lo, hi := tensor.Band(300, 3500, 16000)
	assert.Equal(t, 5, lo)
	assert.Equal(t, 56, hi)

	lo, hi = tensor.Band(-10, 20000, 16000)
	assert.Equal(t, 0, lo)
	assert.Equal(t, STFT_SIZE/2, hi)
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := Analyze(nil, STFT_SIZE, STFT_HOP)
	assert.ErrorIs(t, err, ErrNoChannels)
	_, err = Analyze([][]float64{{}, {}}, STFT_SIZE, STFT_HOP)
	assert.ErrorIs(t, err, ErrNoChannels)
	_, err = Analyze([][]float64{{1}}, 0, STFT_HOP)
	assert.Error(t, err)
}
