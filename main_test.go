package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdginn/go-room-doa/sim"
	"github.com/jdginn/go-room-doa/wavio"
)

const testScene = `
room:
  corners: [{x: 0, y: 0}, {x: 500, y: 0}, {x: 500, y: 400}, {x: 0, y: 400}]
materials:
  inline: {}
robot:
  position: {x: 250, y: 200}
  radius: 5
microphones:
  - {nx: 1, ny: 0}
  - {nx: 0, ny: 1}
  - {nx: -1, ny: 0}
  - {nx: 0, ny: -1}
sources:
  - name: left
    position: {x: 100, y: 200}
    file: left.wav
  - name: top
    position: {x: 250, y: 60}
    file: top.wav
  - name: parked
    file: parked.wav
simulation:
  rays: 300
  max_order: 1
  seed: 3
  keep_rirs: true
`

func writeScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for i, name := range []string{"left", "top"} {
		x := make([]float64, 4000)
		for n := range x {
			x[n] = 0.5 * math.Sin(2*math.Pi*float64(600+400*i)*float64(n)/16000)
		}
		require.NoError(t, wavio.Save(filepath.Join(dir, name+".wav"), x, 16000))
	}
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScene), 0644))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulateWritesRunDirectory(t *testing.T) {
	assert := assert.New(t)
	runs := filepath.Join(t.TempDir(), "runs")

	require.NoError(t, SimulateCmd{Config: writeScene(t), Runs: runs}.Run(quietLogger()))

	latest := filepath.Join(runs, "latest")
	for _, name := range []string{
		"scene.yaml", "source_left.wav", "source_top.wav", "mixed.wav", "doa.json",
		"arrivals.json", "plan.png", "response.png", "echogram.png", "room.stl",
		"rir_left_0.txt", "rir_top_3.txt",
	} {
		assert.FileExists(filepath.Join(latest, name))
	}
	assert.NoFileExists(filepath.Join(latest, "source_parked.wav"))

	bundle, err := sim.LoadBundle(filepath.Join(latest, "doa.json"))
	require.NoError(t, err)
	assert.Equal([]string{"left", "top"}, bundle.Sources)
	assert.InDelta(math.Pi, bundle.GroundTruth[0], 1e-9)
	assert.InDelta(math.Pi/2, bundle.GroundTruth[1], 1e-9)
	for _, alg := range []string{"SRP", "MUSIC", "TOPS"} {
		assert.NotContains(bundle.Errors, alg)
		assert.NotEmpty(bundle.Estimates[alg], alg)
		assert.LessOrEqual(len(bundle.Estimates[alg]), 2, alg)
	}
}

func TestValidateCommand(t *testing.T) {
	path := writeScene(t)
	assert.NoError(t, ValidateCmd{Config: path}.Run(quietLogger()))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("scale: -1\n"), 0644))
	err := ValidateCmd{Config: bad}.Run(quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCALE")
}

func TestSetupLogger(t *testing.T) {
	assert.True(t, setupLogger("debug", "json").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, setupLogger("warn", "text").Enabled(context.Background(), slog.LevelInfo))
}
