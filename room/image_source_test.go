package room

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstOrderImagesInShoebox(t *testing.T) {
	assert := assert.New(t)
	r := shoebox(t, 0.2)
	source := V(1, 1, 1)
	mic := V(3, 2, 1.5)

	arrivals, err := r.Arrivals(source, mic, 1)
	require.NoError(t, err)
	require.Len(t, arrivals, 7)

	images := []Point2D{}
	want := []float64{mic.Sub(source).Length()}
	for _, img := range [][3]float64{{-1, 1, 1}, {9, 1, 1}, {1, -1, 1}, {1, 7, 1}, {1, 1, -1}, {1, 1, 4}} {
		want = append(want, V(img[0], img[1], img[2]).Sub(mic).Length())
		images = append(images, Point2D{img[0], img[1]})
	}
	sort.Float64s(want)

	for i, a := range arrivals {
		assert.InDelta(want[i], a.Distance, 1e-9)
		expected := 1 / a.Distance
		if a.Image.Order() == 1 {
			expected *= math.Sqrt(0.8)
			assert.Len(a.AllReflections, 1)
		}
		assert.InDelta(expected, a.Gain, 1e-12)
	}
	assert.Equal(0, arrivals[0].Image.Order())
}

func TestSecondOrderImageCountInShoebox(t *testing.T) {
	r := shoebox(t, 0.2)
	arrivals, err := r.Arrivals(V(1, 1, 1), V(3, 2, 1.5), 2)
	require.NoError(t, err)

	// 1 direct, 6 first order, 18 second order
	assert.Len(t, arrivals, 25)
	for i := 1; i < len(arrivals); i++ {
		assert.LessOrEqual(t, arrivals[i-1].Distance, arrivals[i].Distance)
	}
}

func TestReflectionPointsLieOnWalls(t *testing.T) {
	r := shoebox(t, 0.2)
	arrivals, err := r.Arrivals(V(1, 1, 1), V(3, 2, 1.5), 3)
	require.NoError(t, err)

	for _, a := range arrivals {
		require.Len(t, a.AllReflections, a.Image.Order())
		for k, p := range a.AllReflections {
			wall := r.Walls[a.Image.Walls[k]]
			assert.InDelta(t, 0, wall.Plane.Distance(p), 1e-6)
		}
	}
}

func TestCoincidentSourceAndMic(t *testing.T) {
	r := shoebox(t, 0.2)
	arrivals, err := r.Arrivals(V(2, 2, 1), V(2, 2, 1), 1)
	require.NoError(t, err)

	direct := arrivals[0]
	assert.Equal(t, MIN_DISTANCE, direct.Distance)
	assert.False(t, math.IsInf(direct.Gain, 0) || math.IsNaN(direct.Gain))
}

func TestOccludedDirectPath(t *testing.T) {
	r, err := NewRoom(Path2D{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 3}, {0, 3}}, 2, Material{Alpha: 0.2}, false)
	require.NoError(t, err)

	arrivals, err := r.Arrivals(V(3.5, 0.5, 1), V(0.5, 2.5, 1), 2)
	require.NoError(t, err)
	for _, a := range arrivals {
		assert.NotZero(t, a.Image.Order(), "direct path through the inner corner must be blocked")
	}
}

func TestArrivalsOutsideRoom(t *testing.T) {
	r := shoebox(t, 0.2)
	_, err := r.Arrivals(V(7, 1, 1), V(2, 2, 1), 1)
	assert.ErrorIs(t, err, ErrOutsideRoom)
}

func TestAirAbsorptionAttenuatesTaps(t *testing.T) {
	dry := shoebox(t, 0.2)
	wet, err := NewRoom(dry.Floor, ROOM_HEIGHT, Material{Alpha: 0.2}, true)
	require.NoError(t, err)

	a1, err := dry.Arrivals(V(1, 1, 1), V(4, 3, 1), 1)
	require.NoError(t, err)
	a2, err := wet.Arrivals(V(1, 1, 1), V(4, 3, 1), 1)
	require.NoError(t, err)
	require.Equal(t, len(a1), len(a2))
	for i := range a1 {
		assert.Less(t, a2[i].Gain, a1[i].Gain)
	}
}
