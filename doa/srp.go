package doa

import (
	"math/cmplx"

	"github.com/jdginn/go-room-doa/stft"
)

// srpPHAT steers the phase-transformed cross spectra of every microphone pair
func srpPHAT(t *stft.Tensor, arr array, p Params, grid []float64) ([]float64, error) {
	lo, hi, err := p.band(t)
	if err != nil {
		return nil, err
	}
	m := arr.size()

	// Whitened cross spectrum of each pair, summed over frames
	type pairSpectrum struct {
		i, j int
		sum  []complex128
	}
	var pairs []pairSpectrum
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			pairs = append(pairs, pairSpectrum{i: i, j: j, sum: make([]complex128, hi-lo+1)})
		}
	}
	whitened := make([]complex128, m)
	for k := lo; k <= hi; k++ {
		for f := 0; f < t.Frames; f++ {
			for ch, x := range t.Snapshot(k, f) {
				if mag := cmplx.Abs(x); mag > 1e-12 {
					whitened[ch] = x / complex(mag, 0)
				} else {
					whitened[ch] = 0
				}
			}
			for _, pair := range pairs {
				pair.sum[k-lo] += whitened[pair.i] * cmplx.Conj(whitened[pair.j])
			}
		}
	}

	response := make([]float64, len(grid))
	for k := lo; k <= hi; k++ {
		table := arr.steeringTable(t.BinFrequency(k, p.SampleRate), grid, p.SoundSpeed)
		for g, a := range table {
			for _, pair := range pairs {
				response[g] += real(cmplx.Conj(a[pair.i]) * a[pair.j] * pair.sum[k-lo])
			}
		}
	}
	return response, nil
}
