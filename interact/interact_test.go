package interact

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fogleman/pt/pt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdginn/go-room-doa/room"
)

func TestBrowserRendersSelection(t *testing.T) {
	assert := assert.New(t)
	r, err := room.NewRoom(room.Path2D{{0, 0}, {5, 0}, {5, 4}, {0, 4}}, room.ROOM_HEIGHT, room.Material{Alpha: 0.2}, false)
	require.NoError(t, err)
	source, mic := room.V(1, 1, 1), room.V(3, 2, 1)
	arrivals, err := r.Arrivals(source, mic, 1)
	require.NoError(t, err)

	b := &Browser{
		View:   room.View{Scene: room.Scene{Room: r, Mics: []pt.Vector{mic}, Reference: mic}, XSize: 200, YSize: 160},
		Source: source,
		Mic:    mic,
		Output: filepath.Join(t.TempDir(), "plan.png"),
	}
	m := b.model(r, arrivals)
	require.Len(t, m.list.Items(), len(arrivals))
	assert.Contains(m.list.Title, "dB in the first 50 ms")

	first := m.list.Items()[0].(item)
	assert.Equal("direct", first.Description())
	assert.InDelta(0, first.delayMs, 1e-12)
	second := m.list.Items()[1].(item)
	assert.Contains(second.Description(), "order 1")
	assert.Greater(second.delayMs, 0.0)

	var next tea.Model = m
	next, _ = next.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	_, err = os.Stat(b.Output)
	assert.NoError(err, "resizing selects the first arrival")

	require.NoError(t, os.Remove(b.Output))
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(1, next.(model).list.Index())
	assert.FileExists(b.Output)

	_, cmd := next.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(tea.Quit(), cmd())
}
