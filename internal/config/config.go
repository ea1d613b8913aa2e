// Package config loads the optional per-workspace configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
	"gopkg.in/yaml.v3"
)

// FileName is looked up at each workspace root.
const FileName = ".m2nav.yml"

// Config tunes workspace discovery. All fields are optional.
type Config struct {
	// ExtraRoots are additional search roots, relative to the workspace
	// root unless absolute.
	ExtraRoots []string `yaml:"extra_roots"`
	// Excludes are gitignore-style patterns removed from discovery.
	Excludes []string `yaml:"excludes"`
}

// Load reads the configuration file at root. A missing file yields the
// zero configuration; only a malformed file is an error.
func Load(root string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", FileName, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return c, nil
}

// ExcludeMatcher compiles the exclude patterns, or nil when none are set.
func (c Config) ExcludeMatcher() *ignore.GitIgnore {
	if len(c.Excludes) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(c.Excludes...)
}

// Roots resolves the effective search roots for a workspace folder.
func (c Config) Roots(root string) []string {
	roots := []string{root}
	for _, extra := range c.ExtraRoots {
		if !filepath.IsAbs(extra) {
			extra = filepath.Join(root, extra)
		}
		roots = append(roots, extra)
	}
	return roots
}
