package render

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Rendered signals peak at this fraction of full scale
const PEAK_LEVEL = 0.9

// Normalize scales x in place so its largest magnitude is PEAK_LEVEL.
// Silence is left untouched.
func Normalize(x []float64) []float64 {
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		return x
	}
	floats.Scale(PEAK_LEVEL/peak, x)
	return x
}

// Sum adds signals of possibly different lengths, zero-padding the shorter ones
func Sum(signals ...[]float64) []float64 {
	n := 0
	for _, s := range signals {
		n = max(n, len(s))
	}
	out := make([]float64, n)
	for _, s := range signals {
		floats.Add(out[:len(s)], s)
	}
	return out
}

// Average is the sample-wise mean of signals, zero-padded to the longest
func Average(signals ...[]float64) []float64 {
	out := Sum(signals...)
	if len(signals) > 0 {
		floats.Scale(1/float64(len(signals)), out)
	}
	return out
}

// ArraySignal convolves one dry signal with the RIR of every microphone
func ArraySignal(dry []float64, rirs [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rirs))
	for m, rir := range rirs {
		wet, err := Convolve(dry, rir)
		if err != nil {
			return nil, fmt.Errorf("render: mic %d: %w", m, err)
		}
		out[m] = wet
	}
	return out, nil
}

// Mix sums the per-source array signals microphone by microphone.
// Every source must have been rendered for the same number of microphones.
func Mix(sources [][][]float64) ([][]float64, error) {
	if len(sources) == 0 {
		return nil, ErrEmptyInput
	}
	mics := len(sources[0])
	out := make([][]float64, mics)
	for m := range out {
		channel := make([][]float64, len(sources))
		for s, src := range sources {
			if len(src) != mics {
				return nil, fmt.Errorf("render: source %d has %d channels, want %d", s, len(src), mics)
			}
			channel[s] = src[m]
		}
		out[m] = Sum(channel...)
	}
	return out, nil
}

// Downmix averages the microphones of an array signal and peak-normalizes the result
func Downmix(channels [][]float64) []float64 {
	return Normalize(Average(channels...))
}
