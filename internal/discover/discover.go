// Package discover walks workspace trees for module-marker files and the
// source files scoped to each module.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"m2nav/internal/model"
)

// MarkerFile is the well-known filename that roots a module: a directory
// containing one is a discovered component.
const MarkerFile = "registration.php"

// RequireConfigFile is the per-module RequireJS configuration filename.
const RequireConfigFile = "requirejs-config.js"

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"var":          {},
	"generated":    {},
	"pub":          {},
}

// Workspace is the result of scanning one workspace root.
type Workspace struct {
	// Markers are paths of module-marker files, each defining a module
	// rooted at its directory.
	Markers []string
	// RequireConfigs are paths of RequireJS configuration files.
	RequireConfigs []string
}

// Scan locates every module marker and RequireJS config under root.
// Unreadable directories are skipped, not reported: a workspace with no
// discoverable modules is an empty but valid result. Note that the scan
// deliberately ignores .gitignore — vendor trees are usually gitignored yet
// must be indexed; excludes only carries patterns the user configured.
func Scan(root string, excludes *ignore.GitIgnore) (Workspace, error) {
	var ws Workspace
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if excluded(excludes, root, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded(excludes, root, path) {
			return nil
		}
		switch name {
		case MarkerFile:
			ws.Markers = append(ws.Markers, path)
		case RequireConfigFile:
			ws.RequireConfigs = append(ws.RequireConfigs, path)
		}
		return nil
	})
	if err != nil {
		return Workspace{}, err
	}
	sort.Strings(ws.Markers)
	sort.Strings(ws.RequireConfigs)
	return ws, nil
}

// PHPFiles collects the host-language files scoped to a module root,
// excluding test files. Order is unspecified; callers schedule files
// independently anyway.
func PHPFiles(moduleRoot string, excludes *ignore.GitIgnore) []string {
	var files []string
	_ = filepath.WalkDir(moduleRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == moduleRoot {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if excluded(excludes, moduleRoot, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(name) != ".php" || name == MarkerFile {
			return nil
		}
		if model.IsTestPath(path) || excluded(excludes, moduleRoot, path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files
}

func excluded(excludes *ignore.GitIgnore, root, path string) bool {
	if excludes == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return excludes.MatchesPath(rel)
}
