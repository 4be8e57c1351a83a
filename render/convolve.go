// Package render turns dry source signals and room impulse responses into the
// signals heard by a microphone array.
package render

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/floats"
)

var ErrEmptyInput = errors.New("render: empty input")

// Kernels this short are convolved directly
const DIRECT_THRESHOLD = 64

// Convolve returns the full linear convolution of signal and kernel,
// len(signal)+len(kernel)-1 samples long.
func Convolve(signal, kernel []float64) ([]float64, error) {
	if len(signal) == 0 || len(kernel) == 0 {
		return nil, ErrEmptyInput
	}
	if len(kernel) > len(signal) {
		signal, kernel = kernel, signal
	}
	if len(kernel) <= DIRECT_THRESHOLD {
		return direct(signal, kernel), nil
	}
	oa, err := newOverlapAdd(kernel)
	if err != nil {
		return nil, err
	}
	return oa.process(signal)
}

func direct(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		floats.AddScaled(out[i:i+len(b)], x, b)
	}
	return out
}

// overlapAdd convolves a long signal block by block against a fixed kernel
type overlapAdd struct {
	kernelFFT []complex128
	kernelLen int
	blockSize int
	plan      *algofft.Plan[complex128]
	scratch   []complex128
}

func newOverlapAdd(kernel []float64) (*overlapAdd, error) {
	blockSize := max(nextPowerOf2(len(kernel)), 256)
	fftSize := nextPowerOf2(blockSize + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("render: creating FFT plan: %w", err)
	}
	padded := make([]complex128, fftSize)
	for i, v := range kernel {
		padded[i] = complex(v, 0)
	}
	oa := &overlapAdd{
		kernelFFT: make([]complex128, fftSize),
		kernelLen: len(kernel),
		blockSize: blockSize,
		plan:      plan,
		scratch:   make([]complex128, fftSize),
	}
	if err := plan.Forward(oa.kernelFFT, padded); err != nil {
		return nil, fmt.Errorf("render: kernel FFT: %w", err)
	}
	return oa, nil
}

func (oa *overlapAdd) process(input []float64) ([]float64, error) {
	out := make([]float64, len(input)+oa.kernelLen-1)
	for start := 0; start < len(input); start += oa.blockSize {
		end := min(start+oa.blockSize, len(input))

		clear(oa.scratch)
		for i := start; i < end; i++ {
			oa.scratch[i-start] = complex(input[i], 0)
		}
		if err := oa.plan.Forward(oa.scratch, oa.scratch); err != nil {
			return nil, fmt.Errorf("render: forward FFT: %w", err)
		}
		for i := range oa.scratch {
			oa.scratch[i] *= oa.kernelFFT[i]
		}
		if err := oa.plan.Inverse(oa.scratch, oa.scratch); err != nil {
			return nil, fmt.Errorf("render: inverse FFT: %w", err)
		}

		n := end - start + oa.kernelLen - 1
		for i := 0; i < n && start+i < len(out); i++ {
			out[start+i] += real(oa.scratch[i])
		}
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
