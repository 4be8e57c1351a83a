package doa

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/jdginn/go-room-doa/stft"
)

// referenceBin is the in-band bin carrying the most energy
func referenceBin(t *stft.Tensor, lo, hi int) int {
	best, bestEnergy := lo, -1.0
	for k := lo; k <= hi; k++ {
		e := 0.0
		for f := 0; f < t.Frames; f++ {
			for _, x := range t.Snapshot(k, f) {
				e += cmplx.Abs(x)
			}
		}
		if e > bestEnergy {
			best, bestEnergy = k, e
		}
	}
	return best
}

// tops tests, for every azimuth, how orthogonal the reference signal subspace stays
// to the noise subspaces of the other bins once it is shifted to their frequency and
// the steering vector is projected out. The response is 1/σmin of the stacked products.
func tops(t *stft.Tensor, arr array, p Params, grid []float64) ([]float64, error) {
	m, k := arr.size(), p.NumSources
	if k >= m {
		return nil, fmt.Errorf("%w: %d sources need more than %d microphones", ErrTooManySources, k, m)
	}
	lo, hi, err := p.band(t)
	if err != nil {
		return nil, err
	}
	ref := referenceBin(t, lo, hi)
	signal, _, err := subspaces(covariance(snapshots(t, ref)), k)
	if err != nil {
		return nil, fmt.Errorf("reference bin %d: %w", ref, err)
	}
	if len(signal) < k {
		return nil, fmt.Errorf("reference bin %d: signal subspace has rank %d", ref, len(signal))
	}

	type binSubspace struct {
		freq  float64
		noise [][]complex128
	}
	var bins []binSubspace
	for b := lo; b <= hi; b++ {
		if b == ref {
			continue
		}
		_, noise, err := subspaces(covariance(snapshots(t, b)), k)
		if err != nil {
			return nil, fmt.Errorf("bin %d: %w", b, err)
		}
		bins = append(bins, binSubspace{freq: t.BinFrequency(b, p.SampleRate), noise: noise})
	}
	if len(bins) == 0 {
		return nil, fmt.Errorf("doa: band [%d, %d] has no bins besides the reference", lo, hi)
	}

	fRef := t.BinFrequency(ref, p.SampleRate)
	response := make([]float64, len(grid))
	u := make([][]complex128, k)
	for i := range u {
		u[i] = make([]complex128, m)
	}
	for g, theta := range grid {
		aRef := arr.steering(fRef, theta, p.SoundSpeed)
		gram := mat.NewCDense(k, k, nil)
		for _, bin := range bins {
			a := arr.steering(bin.freq, theta, p.SoundSpeed)
			for s, es := range signal {
				// Shift the reference subspace to this frequency
				for i := range es {
					u[s][i] = es[i] * a[i] / aRef[i]
				}
				// then remove the component along the steering vector
				c := inner(a, u[s]) / complex(float64(m), 0)
				for i := range u[s] {
					u[s][i] -= c * a[i]
				}
			}
			for _, en := range bin.noise {
				d := make([]complex128, k)
				for s := range u {
					d[s] = inner(u[s], en)
				}
				for r := 0; r < k; r++ {
					for c := 0; c < k; c++ {
						gram.Set(r, c, gram.At(r, c)+d[r]*cmplx.Conj(d[c]))
					}
				}
			}
		}
		lambda, err := smallestEigenvalue(gram)
		if err != nil {
			return nil, fmt.Errorf("azimuth %d: %w", g, err)
		}
		response[g] = 1 / math.Sqrt(math.Max(lambda, SUBSPACE_FLOOR))
	}
	return response, nil
}
