package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdginn/go-room-doa/room"
)

func TestParseWrittenResponse(t *testing.T) {
	assert := assert.New(t)
	rir := make([]float64, 100)
	rir[10] = 1
	rir[40] = 0.5
	rir[70] = -0.25

	var buf bytes.Buffer
	require.NoError(t, room.WriteRIRText(&buf, rir, 1000))

	peakIndex, interval, samples, err := ParseImpulseResponse(&buf)
	require.NoError(t, err)
	assert.Equal(10, peakIndex)
	assert.InDelta(0.001, interval, 1e-12)
	assert.Len(samples, 100)

	processed := MakeProcessedSamples(peakIndex, interval, samples)
	assert.Len(processed, 90)
	assert.InDelta(0, processed[0].Db, 1e-12)

	maxima := FindLocalMaxima(processed, 6, -30)
	require.Len(t, maxima, 3)
	assert.InDelta(30, maxima[1].TimeMs, 1e-9)
	assert.InDelta(-6.02, maxima[1].Db, 0.01)
	assert.InDelta(60, maxima[2].TimeMs, 1e-9)
	assert.InDelta(-12.04, maxima[2].Db, 0.01)
}

func TestParseErrors(t *testing.T) {
	_, _, _, err := ParseImpulseResponse(strings.NewReader("0.1\n0.2\n"))
	assert.ErrorIs(t, err, ErrNoData)

	_, _, _, err = ParseImpulseResponse(strings.NewReader("* Data start\n0.1\n"))
	assert.Error(t, err)
}

func TestFindLocalMaximaSpans(t *testing.T) {
	samples := []Sample{{0, 0, -40}, {1, 0, -10}, {2, 0, -5}, {3, 0, -12}, {4, 0, -40}, {5, 0, -20}}
	maxima := FindLocalMaxima(samples, 6, -30)
	require.Len(t, maxima, 2)
	assert.Equal(t, 2.0, maxima[0].TimeMs)
	assert.Equal(t, 5.0, maxima[1].TimeMs)
}
