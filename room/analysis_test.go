package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergyOverWindow(t *testing.T) {
	assert := assert.New(t)
	assert.Zero(EnergyOverWindow(nil, C50_WINDOW_MS))

	r := shoebox(t, 0.2)
	arrivals, err := r.Arrivals(V(1, 1, 1), V(3, 2, 1.5), 1)
	require.NoError(t, err)

	direct := arrivals[0].Gain * arrivals[0].Gain
	// Nothing but the direct sound fits in a window shorter than the first reflection
	assert.InDelta(direct, EnergyOverWindow(arrivals, (arrivals[1].Delay()-arrivals[0].Delay())/MS/2), 1e-12)

	total := 0.0
	for _, a := range arrivals {
		total += a.Gain * a.Gain
	}
	assert.InDelta(total, EnergyOverWindow(arrivals, C50_WINDOW_MS), 1e-12)
}
