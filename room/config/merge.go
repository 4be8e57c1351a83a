package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// mergeFromFile reads a JSON object from path into dst. Entries already in dst win.
func mergeFromFile[V any](dst map[string]V, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var fromFile map[string]V
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for name, v := range fromFile {
		if _, exists := dst[name]; !exists {
			dst[name] = v
		}
	}
	return nil
}

// MergeMaterials merges materials from a file with inline materials
func (m *Materials) MergeMaterials() error {
	if m.FromFile == "" {
		return nil
	}
	if m.Inline == nil {
		m.Inline = make(map[string]Material)
	}
	return mergeFromFile(m.Inline, m.FromFile)
}

// MergeSurfaceAssignments merges mesh object assignments from a file with inline assignments
func (sa *SurfaceAssignments) MergeSurfaceAssignments() error {
	if sa.FromFile == "" {
		return nil
	}
	if sa.Inline == nil {
		sa.Inline = make(map[string]string)
	}
	return mergeFromFile(sa.Inline, sa.FromFile)
}

// HasMaterial reports whether a material is defined inline or was merged in
func (m *Materials) HasMaterial(name string) bool {
	_, exists := m.Inline[name]
	return exists
}

// LoadAndMerge loads all external files and merges their contents
func (c *SceneConfig) LoadAndMerge() error {
	// Materials first since surface assignments refer to them
	if err := c.Materials.MergeMaterials(); err != nil {
		return fmt.Errorf("merging materials: %w", err)
	}
	if err := c.SurfaceAssignments.MergeSurfaceAssignments(); err != nil {
		return fmt.Errorf("merging surface assignments: %w", err)
	}
	return nil
}
