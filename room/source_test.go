package room

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleSphere(t *testing.T) {
	assert := assert.New(t)
	origin := V(1, 2, 1)

	a := SampleSphere(origin, 500, rand.New(rand.NewSource(7)))
	b := SampleSphere(origin, 500, rand.New(rand.NewSource(7)))
	assert.Equal(a, b)

	total := 0.0
	var mean = V(0, 0, 0)
	for _, shot := range a {
		assert.Equal(origin, shot.Ray.Origin)
		assert.InDelta(1, shot.Ray.Direction.Length(), 1e-12)
		total += shot.Energy
		mean = mean.Add(shot.Ray.Direction)
	}
	assert.InDelta(1, total, 1e-9)
	// Uniform directions roughly cancel out
	assert.Less(mean.MulScalar(1.0/500).Length(), 0.15)

	c := SampleSphere(origin, 500, rand.New(rand.NewSource(8)))
	assert.NotEqual(a, c)
}
