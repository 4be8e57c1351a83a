// Package stft computes the short-time Fourier transform shared by every DOA algorithm.
package stft

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	STFT_SIZE = 256
	STFT_HOP  = STFT_SIZE / 2
)

var ErrNoChannels = errors.New("stft: no channels")

// Tensor holds complex STFT coefficients indexed by [bin][frame][channel]
type Tensor struct {
	Bins     int
	Frames   int
	Channels int
	// Size of the analysis window the tensor was computed with
	Size int
	data []complex128
}

func NewTensor(bins, frames, channels, size int) *Tensor {
	return &Tensor{
		Bins:     bins,
		Frames:   frames,
		Channels: channels,
		Size:     size,
		data:     make([]complex128, bins*frames*channels),
	}
}

func (t *Tensor) index(bin, frame, channel int) int {
	return (bin*t.Frames+frame)*t.Channels + channel
}

func (t *Tensor) At(bin, frame, channel int) complex128 {
	return t.data[t.index(bin, frame, channel)]
}

func (t *Tensor) Set(bin, frame, channel int, v complex128) {
	t.data[t.index(bin, frame, channel)] = v
}

// Snapshot is the array vector of one bin in one frame. The slice aliases the tensor.
func (t *Tensor) Snapshot(bin, frame int) []complex128 {
	i := t.index(bin, frame, 0)
	return t.data[i : i+t.Channels]
}

// BinFrequency is the center frequency of bin in Hz
func (t *Tensor) BinFrequency(bin int, fs float64) float64 {
	return float64(bin) * fs / float64(t.Size)
}

// Band returns the inclusive bin range covering [lo, hi] Hz, clamped to the tensor
func (t *Tensor) Band(lo, hi, fs float64) (int, int) {
	first := int(math.Round(lo * float64(t.Size) / fs))
	last := int(math.Round(hi * float64(t.Size) / fs))
	return max(first, 0), min(last, t.Bins-1)
}

// FrameCount is the number of hops needed to cover n samples, at least one
func FrameCount(n, size, hop int) int {
	if n <= size {
		return 1
	}
	return 1 + (n-size+hop-1)/hop
}

// HannWindow returns the periodic Hann window of the given length
func HannWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	return w
}

// Analyze transforms every channel with a Hann window of size samples advanced by hop.
// Channels of different lengths are zero-padded to the longest.
func Analyze(channels [][]float64, size, hop int) (*Tensor, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if size <= 0 || hop <= 0 {
		return nil, fmt.Errorf("stft: invalid size %d or hop %d", size, hop)
	}
	n := 0
	for _, c := range channels {
		n = max(n, len(c))
	}
	if n == 0 {
		return nil, fmt.Errorf("stft: %w", ErrNoChannels)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("stft: creating FFT plan: %w", err)
	}
	window := HannWindow(size)
	frames := FrameCount(n, size, hop)
	t := NewTensor(size/2+1, frames, len(channels), size)

	frame := make([]float64, size)
	buf := make([]complex128, size)
	spectrum := make([]complex128, size)
	for ch, samples := range channels {
		for f := 0; f < frames; f++ {
			clear(frame)
			start := f * hop
			if start < len(samples) {
				copy(frame, samples[start:min(start+size, len(samples))])
			}
			vecmath.MulBlockInPlace(frame, window)
			for i, v := range frame {
				buf[i] = complex(v, 0)
			}
			if err := plan.Forward(spectrum, buf); err != nil {
				return nil, fmt.Errorf("stft: forward FFT: %w", err)
			}
			for b := 0; b < t.Bins; b++ {
				t.Set(b, f, ch, spectrum[b])
			}
		}
	}
	return t, nil
}
