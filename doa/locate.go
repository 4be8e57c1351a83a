package doa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jdginn/go-room-doa/stft"
)

var (
	ErrTooFewMicrophones = errors.New("doa: at least two microphones are required")
	ErrTooManySources    = errors.New("doa: too many sources for the array")
)

type Algorithm string

const (
	SRP_PHAT Algorithm = "SRP"
	MUSIC    Algorithm = "MUSIC"
	TOPS     Algorithm = "TOPS"
)

// ALGORITHMS lists every estimator in reporting order
var ALGORITHMS = []Algorithm{SRP_PHAT, MUSIC, TOPS}

type estimator func(t *stft.Tensor, arr array, p Params, grid []float64) ([]float64, error)

var estimators = map[Algorithm]estimator{
	SRP_PHAT: srpPHAT,
	MUSIC:    music,
	TOPS:     tops,
}

// Params configures a DOA run
type Params struct {
	SoundSpeed float64
	SampleRate float64
	// Number of bearings to report per algorithm
	NumSources int
	// Analysis band in Hz
	FreqLo, FreqHi float64
	GridSize       int
	// Radians
	MinSeparation float64
	// Defaults to every algorithm
	Algorithms []Algorithm
}

// DefaultParams returns the engine defaults for K sources
func DefaultParams(soundSpeed, sampleRate float64, numSources int) Params {
	return Params{
		SoundSpeed:    soundSpeed,
		SampleRate:    sampleRate,
		NumSources:    numSources,
		FreqLo:        DOA_FREQ_LO,
		FreqHi:        DOA_FREQ_HI,
		GridSize:      GRID_SIZE,
		MinSeparation: MIN_SEPARATION,
		Algorithms:    ALGORITHMS,
	}
}

func (p Params) validate() error {
	switch {
	case p.SoundSpeed <= 0:
		return fmt.Errorf("doa: sound speed must be positive")
	case p.SampleRate <= 0:
		return fmt.Errorf("doa: sample rate must be positive")
	case p.NumSources < 1:
		return fmt.Errorf("doa: number of sources must be at least 1")
	case p.GridSize < 1:
		return fmt.Errorf("doa: grid size must be positive")
	case p.FreqLo >= p.FreqHi:
		return fmt.Errorf("doa: empty band [%g, %g] Hz", p.FreqLo, p.FreqHi)
	}
	return nil
}

func (p Params) band(t *stft.Tensor) (int, int, error) {
	lo, hi := t.Band(p.FreqLo, p.FreqHi, p.SampleRate)
	if lo > hi {
		return 0, 0, fmt.Errorf("doa: band [%g, %g] Hz has no bins", p.FreqLo, p.FreqHi)
	}
	return lo, hi, nil
}

// Estimate is the outcome of one algorithm. A failed algorithm has Err set and no response.
type Estimate struct {
	Algorithm Algorithm
	// Normalized to [0, 1] over the grid
	Response []float64
	Bearings []float64
	Err      error
	Elapsed  time.Duration
}

type Result struct {
	Grid      []float64
	Estimates []Estimate
}

// Get returns the estimate of one algorithm
func (r *Result) Get(alg Algorithm) (Estimate, bool) {
	for _, e := range r.Estimates {
		if e.Algorithm == alg {
			return e, true
		}
	}
	return Estimate{}, false
}

// Locate runs every requested algorithm concurrently over the same tensor. mics are the
// (x, y) channel positions in the tensor's channel order. A failing algorithm only
// empties its own estimate.
func Locate(ctx context.Context, t *stft.Tensor, mics []Point, p Params, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(mics) < 2 {
		return nil, ErrTooFewMicrophones
	}
	if t.Channels != len(mics) {
		return nil, fmt.Errorf("doa: tensor has %d channels for %d microphones", t.Channels, len(mics))
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	algorithms := p.Algorithms
	if len(algorithms) == 0 {
		algorithms = ALGORITHMS
	}

	arr := newArray(mics)
	grid := Grid(p.GridSize)
	result := &Result{Grid: grid, Estimates: make([]Estimate, len(algorithms))}

	g, ctx := errgroup.WithContext(ctx)
	for i, alg := range algorithms {
		g.Go(func() error {
			est := &result.Estimates[i]
			est.Algorithm = alg
			if err := ctx.Err(); err != nil {
				est.Err = err
				return nil
			}
			start := time.Now()
			response, err := run(alg, t, arr, p, grid)
			est.Elapsed = time.Since(start)
			if err != nil {
				est.Err = err
				logger.Warn("doa algorithm failed", "algorithm", alg, "error", err)
				return nil
			}
			est.Response = Normalize(response)
			est.Bearings = FindPeaks(grid, est.Response, p.NumSources, p.MinSeparation)
			logger.Debug("doa algorithm finished", "algorithm", alg, "bearings", est.Bearings, "elapsed", est.Elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// run calls one estimator, turning a panic into an error
func run(alg Algorithm, t *stft.Tensor, arr array, p Params, grid []float64) (response []float64, err error) {
	est, ok := estimators[alg]
	if !ok {
		return nil, fmt.Errorf("doa: unknown algorithm %q", alg)
	}
	defer func() {
		if r := recover(); r != nil {
			response, err = nil, fmt.Errorf("doa: %s panicked: %v", alg, r)
		}
	}()
	return est(t, arr, p, grid)
}
