package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadOptions configures the behavior of config loading
type LoadOptions struct {
	ValidateImmediately bool
	ResolvePaths        bool
	MergeFiles          bool
}

// LoadFromFile loads a SceneConfig from a YAML file and fills in the defaults
func LoadFromFile(path string, opts LoadOptions) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, filepath.Dir(path), opts)
}

// Parse reads a SceneConfig from YAML. Relative paths are resolved against baseDir.
func Parse(data []byte, baseDir string, opts LoadOptions) (*SceneConfig, error) {
	config := &SceneConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if opts.ResolvePaths {
		resolver := NewPathResolver(baseDir)
		if err := config.ResolvePaths(resolver); err != nil {
			return nil, fmt.Errorf("resolving paths: %w", err)
		}
	}

	if opts.MergeFiles {
		if err := config.LoadAndMerge(); err != nil {
			return nil, fmt.Errorf("merging external files: %w", err)
		}
	}

	config.ApplyDefaults()

	if opts.ValidateImmediately {
		if errs := config.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("validation errors:\n%s", FormatValidationErrors(errs))
		}
	}

	return config, nil
}

// SaveToFile saves a SceneConfig to a YAML file
func SaveToFile(config *SceneConfig, path string) error {
	// Update metadata before saving
	NewMetadataCollector().PopulateMetadata(config)

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ResolvePaths resolves all relative paths in the config to absolute paths
func (c *SceneConfig) ResolvePaths(resolver *PathResolver) error {
	if c.Room.Mesh != "" {
		c.Room.Mesh = resolver.ResolvePath(c.Room.Mesh)
	}

	if c.Materials.FromFile != "" {
		c.Materials.FromFile = resolver.ResolvePath(c.Materials.FromFile)
	}

	if c.SurfaceAssignments.FromFile != "" {
		c.SurfaceAssignments.FromFile = resolver.ResolvePath(c.SurfaceAssignments.FromFile)
	}

	for i := range c.Sources {
		if c.Sources[i].File != "" {
			c.Sources[i].File = resolver.ResolvePath(c.Sources[i].File)
		}
	}

	return nil
}
