package room

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircularArray(t *testing.T) {
	assert := assert.New(t)
	a := CircularArray(Point2D{2, 3}, 0.1, 4, 0)

	mics := a.Positions()
	assert.Len(mics, 4)
	want := [][2]float64{{2.1, 3}, {2, 3.1}, {1.9, 3}, {2, 2.9}}
	for i, m := range mics {
		assert.InDelta(want[i][0], m.X, 1e-12)
		assert.InDelta(want[i][1], m.Y, 1e-12)
		assert.Equal(MIC_HEIGHT, m.Z)
	}
	assert.InDelta(0.2, a.Aperture(), 1e-12)

	c := Centroid(mics)
	assert.InDelta(2, c.X, 1e-12)
	assert.InDelta(3, c.Y, 1e-12)
	assert.Equal(a.Reference(), V(2, 3, MIC_HEIGHT))
}

func TestArrayLayoutOffsets(t *testing.T) {
	a := ArrayLayout{Center: Point2D{1, 1}, Radius: 0.5, Offsets: []Point2D{{-1, 0}, {1, 0}}, Height: 1.2}
	mics := a.Positions()
	assert.Equal(t, V(0.5, 1, 1.2), mics[0])
	assert.Equal(t, V(1.5, 1, 1.2), mics[1])
	assert.InDelta(t, 1, a.Aperture(), 1e-12)
	assert.Equal(t, V(0, 0, 0), Centroid(nil))
	assert.False(t, math.IsNaN(Centroid(mics).X))
}
