package config

import (
	"os"
	"path/filepath"
	"strings"
)

// PathResolver turns paths written in a scene config into absolute paths.
// Relative paths are taken from the config's directory, "~/" from the home directory.
type PathResolver struct {
	baseDir string
}

func NewPathResolver(baseDir string) *PathResolver {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &PathResolver{baseDir: baseDir}
}

func (pr *PathResolver) ResolvePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(pr.baseDir, path)
}

// FileExists reports whether path names a regular file
func (pr *PathResolver) FileExists(path string) bool {
	info, err := os.Stat(pr.ResolvePath(path))
	return err == nil && info.Mode().IsRegular()
}

// MissingSourceFiles lists the placed sources whose audio file cannot be found
func (c *SceneConfig) MissingSourceFiles(resolver *PathResolver) []string {
	var missing []string
	for _, s := range c.Sources {
		if s.Position != nil && (s.File == "" || !resolver.FileExists(s.File)) {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
