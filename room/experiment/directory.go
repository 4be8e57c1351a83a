package experiment

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

const (
	RUNS_DIR       = "runs"
	LATEST_SYMLINK = "latest"
)

// RunDir holds every output of one simulation
type RunDir struct {
	Path      string // Absolute path
	ID        string
	Timestamp time.Time
}

// Create makes a new run directory under root and points root/latest at it.
// A missing latest link is logged, not returned.
func Create(root string) (*RunDir, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating runs directory: %w", err)
	}

	now := time.Now().UTC()
	rnd := rand.New(rand.NewSource(now.UnixNano()))
	id := RunID(rnd, now)

	absPath, err := filepath.Abs(filepath.Join(root, id))
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	if err := os.Mkdir(absPath, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	latestPath := filepath.Join(root, LATEST_SYMLINK)
	_ = os.Remove(latestPath)
	if err := os.Symlink(id, latestPath); err != nil {
		slog.Warn("failed to create latest symlink", "err", err)
	}

	return &RunDir{Path: absPath, ID: id, Timestamp: now}, nil
}

// File returns the absolute path for a file in the run directory
func (d *RunDir) File(name string) string {
	return filepath.Join(d.Path, name)
}

// CopyConfigFile keeps a copy of the scene config next to the outputs it produced
func (d *RunDir) CopyConfigFile(srcPath string) error {
	content, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := os.WriteFile(d.File(filepath.Base(srcPath)), content, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// WriteJSON saves v as indented JSON in the run directory
func (d *RunDir) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return os.WriteFile(d.File(name), data, 0644)
}
