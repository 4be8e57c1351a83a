// Package doa estimates the direction of arrival of sound sources from the STFT of a planar
// microphone array.
package doa

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// Points on the azimuth grid, 1 degree apart
	GRID_SIZE = 360
	// Default minimum distance between two reported bearings
	MIN_SEPARATION = 10 * math.Pi / 180

	DOA_FREQ_LO = 300.0
	DOA_FREQ_HI = 3500.0
)

// Grid spreads n azimuths evenly over [0, 2π)
func Grid(n int) []float64 {
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = 2 * math.Pi * float64(i) / float64(n)
	}
	return grid
}

// Normalize rescales response in place to [0, 1]. A flat response becomes all zeros.
func Normalize(response []float64) []float64 {
	if len(response) == 0 {
		return response
	}
	lo, hi := floats.Min(response), floats.Max(response)
	if hi == lo || math.IsNaN(hi-lo) || math.IsInf(hi-lo, 0) {
		for i := range response {
			response[i] = 0
		}
		return response
	}
	floats.AddConst(-lo, response)
	floats.Scale(1/(hi-lo), response)
	return response
}
