package doa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func deg(d float64) float64 {
	return d * math.Pi / 180
}

func TestFindPeaks(t *testing.T) {
	grid := Grid(GRID_SIZE)
	response := func(values map[int]float64) []float64 {
		r := make([]float64, GRID_SIZE)
		for i, v := range values {
			r[i] = v
		}
		return r
	}

	tests := []struct {
		name   string
		values map[int]float64
		k      int
		want   []float64
	}{
		{"strongest_first", map[int]float64{12: 1, 11: 0.2, 10: 0.9, 100: 0.5, 350: 0.95}, 3, []float64{deg(12), deg(350), deg(100)}},
		{"capped_at_k", map[int]float64{12: 1, 100: 0.5, 200: 0.7}, 2, []float64{deg(12), deg(200)}},
		{"wraps_around", map[int]float64{0: 1, 359: 0.5}, 1, []float64{0}},
		{"too_close_across_zero", map[int]float64{0: 1, 355: 0.9, 90: 0.1}, 2, []float64{0, deg(90)}},
		{"tie_goes_to_lower_index", map[int]float64{200: 1, 40: 1}, 1, []float64{deg(40)}},
		{"plateau", map[int]float64{5: 1, 6: 1}, 1, []float64{deg(5)}},
		{"plateau_of_three", map[int]float64{1: 1, 2: 1, 3: 1}, 1, []float64{deg(1)}},
		{"flat", map[int]float64{}, 2, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := FindPeaks(grid, response(test.values), test.k, MIN_SEPARATION)
			assert.Len(t, got, len(test.want))
			for i := range test.want {
				assert.InDelta(t, test.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Normalize([]float64{2, 4, 6}))
	assert.Equal(t, []float64{0, 0, 0}, Normalize([]float64{3, 3, 3}))
	assert.Empty(t, Normalize(nil))
}

func TestGrid(t *testing.T) {
	grid := Grid(GRID_SIZE)
	assert.Len(t, grid, GRID_SIZE)
	assert.Zero(t, grid[0])
	assert.InDelta(t, deg(90), grid[90], 1e-12)
	assert.Less(t, grid[GRID_SIZE-1], 2*math.Pi)
}
