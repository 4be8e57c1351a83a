package doa

import (
	"math"
	"sort"
)

// Responses closer than this are treated as equal when ranking peaks
const PEAK_TIE_TOLERANCE = 1e-9

// FindPeaks returns up to k grid angles at local maxima of response, strongest first.
// The grid wraps around. A flat-topped peak is reported at its first index, among
// peaks of equal height the lower grid index wins, and a peak closer than minSeparation to an already accepted one is dropped.
func FindPeaks(grid, response []float64, k int, minSeparation float64) []float64 {
	n := len(response)
	if n == 0 || k <= 0 || len(grid) != n {
		return nil
	}
	var candidates []int
	for i := range response {
		left := response[(i-1+n)%n]
		right := response[(i+1)%n]
		if n == 1 || (response[i] > left && response[i] >= right) {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		va, vb := response[candidates[a]], response[candidates[b]]
		if math.Abs(va-vb) <= PEAK_TIE_TOLERANCE {
			return candidates[a] < candidates[b]
		}
		return va > vb
	})

	var peaks []float64
	for _, c := range candidates {
		if len(peaks) == k {
			break
		}
		ok := true
		for _, p := range peaks {
			if AngularDistance(p, grid[c]) < minSeparation {
				ok = false
				break
			}
		}
		if ok {
			peaks = append(peaks, grid[c])
		}
	}
	return peaks
}
