package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogleman/pt/pt"
)

func TestScaleView(t *testing.T) {
	assert := assert.New(t)
	r, err := NewRoom(Path2D{{0, 0}, {5, 0}, {5, 4}, {0, 4}}, ROOM_HEIGHT, Material{Alpha: 0.2}, false)
	require.NoError(t, err)

	view := View{
		Scene: Scene{
			Room:      r,
			Mics:      []pt.Vector{V(-5, 2, 1)}, // XMin = -5
			Reference: V(2.5, 2, 1),
		},
		XSize: 100,
		YSize: 100,
	}
	view.computeScaleAndTranslation()

	// XSize = 10
	// YSize = 4
	assert.EqualValues(10, view.scale)
	assert.EqualValues(5, view.xTranslate)
	assert.EqualValues(0, view.yTranslate)

	p := view.point(V(5, 4, 1))
	assert.InDelta(100, p.X, 1e-9)
	assert.InDelta(40, p.Y, 1e-9)
}

func TestScaleViewWithMargin(t *testing.T) {
	assert := assert.New(t)
	r, err := NewRoom(Path2D{{0, 0}, {5, 0}, {5, 4}, {0, 4}}, ROOM_HEIGHT, Material{Alpha: 0.2}, false)
	require.NoError(t, err)

	view := View{Scene: Scene{Room: r, Reference: V(2.5, 2, 1)}, XSize: 120, YSize: 100, Margin: 10}
	p := view.point(V(0, 0, 0))
	assert.InDelta(10, p.X, 1e-9)
	assert.InDelta(10, p.Y, 1e-9)
	// min((120-20)/5, (100-20)/4)
	assert.EqualValues(20, view.scale)
}

func TestPlotArrivals(t *testing.T) {
	r, err := NewRoom(Path2D{{0, 0}, {5, 0}, {5, 4}, {0, 4}}, ROOM_HEIGHT, Material{Alpha: 0.2}, false)
	require.NoError(t, err)
	source, mic := V(1, 1, 1), V(3, 2, 1)
	arrivals, err := r.Arrivals(source, mic, 1)
	require.NoError(t, err)

	view := View{
		Scene: Scene{
			Room:      r,
			Mics:      []pt.Vector{mic},
			Sources:   []Point{{Position: source, Name: "a", Color: PastelGreen}},
			Reference: mic,
			Bearings:  []Bearing{{Label: "truth", Angle: 1, Color: PastelBlue, Dashed: true}},
		},
		XSize: 200,
		YSize: 160,
	}
	img, err := view.PlotArrivals(arrivals, source, mic)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())
}
