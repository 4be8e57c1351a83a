package doa

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/jdginn/go-room-doa/stft"
)

// Keeps pseudo-spectra finite when a steering vector lies in the signal subspace
const SUBSPACE_FLOOR = 1e-12

func snapshots(t *stft.Tensor, bin int) [][]complex128 {
	s := make([][]complex128, t.Frames)
	for f := range s {
		s[f] = t.Snapshot(bin, f)
	}
	return s
}

// music averages the MUSIC pseudo-spectrum 1/‖Enᴴa‖² over the band
func music(t *stft.Tensor, arr array, p Params, grid []float64) ([]float64, error) {
	if p.NumSources >= arr.size() {
		return nil, fmt.Errorf("%w: %d sources need more than %d microphones", ErrTooManySources, p.NumSources, arr.size())
	}
	lo, hi, err := p.band(t)
	if err != nil {
		return nil, err
	}

	response := make([]float64, len(grid))
	for k := lo; k <= hi; k++ {
		_, noise, err := subspaces(covariance(snapshots(t, k)), p.NumSources)
		if err != nil {
			return nil, fmt.Errorf("bin %d: %w", k, err)
		}
		table := arr.steeringTable(t.BinFrequency(k, p.SampleRate), grid, p.SoundSpeed)
		for g, a := range table {
			response[g] += 1 / math.Max(projection(noise, a), SUBSPACE_FLOOR)
		}
	}
	for g := range response {
		response[g] /= float64(hi - lo + 1)
	}
	return response, nil
}

// projection is the squared norm of a projected onto the span of the orthonormal basis
func projection(basis [][]complex128, a []complex128) float64 {
	sum := 0.0
	for _, e := range basis {
		sum += math.Pow(cmplx.Abs(inner(e, a)), 2)
	}
	return sum
}
