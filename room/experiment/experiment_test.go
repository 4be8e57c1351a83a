package experiment

import (
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunID(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2024, 3, 9, 17, 4, 5, 0, time.UTC)

	a := RunID(rand.New(rand.NewSource(1)), now)
	b := RunID(rand.New(rand.NewSource(1)), now)
	assert.Equal(a, b)
	assert.Regexp(regexp.MustCompile(`^[a-z]+-[a-z]+-20240309-170405$`), a)
}

func TestCreate(t *testing.T) {
	assert := assert.New(t)
	root := filepath.Join(t.TempDir(), RUNS_DIR)

	dir, err := Create(root)
	require.NoError(t, err)
	assert.DirExists(dir.Path)
	assert.True(filepath.IsAbs(dir.Path))

	target, err := os.Readlink(filepath.Join(root, LATEST_SYMLINK))
	require.NoError(t, err)
	assert.Equal(dir.ID, target)

	src := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(src, []byte("scale: 100\n"), 0644))
	require.NoError(t, dir.CopyConfigFile(src))
	assert.FileExists(dir.File("scene.yaml"))

	require.NoError(t, dir.WriteJSON("out.json", map[string]int{"a": 1}))
	data, err := os.ReadFile(dir.File("out.json"))
	require.NoError(t, err)
	assert.JSONEq(`{"a": 1}`, string(data))
}
