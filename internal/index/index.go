// Package index owns the shared symbol table and the workspace indexer that
// populates it. The index is the only mutable shared state in the system:
// indexing goroutines are its writers, resolution requests are pure readers,
// and both may run at the same time. Reads against a partially built index
// simply miss; nothing blocks.
package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"m2nav/internal/config"
	"m2nav/internal/discover"
	"m2nav/internal/js"
	"m2nav/internal/model"
	"m2nav/internal/php"
)

// Index is the process-wide symbol table. The zero value is not usable; use
// New. All methods are safe for concurrent use.
type Index struct {
	log *slog.Logger

	mu          sync.RWMutex
	classes     map[string]*php.ClassDecl
	modulePaths map[string]string
	frontThemes map[string]string
	adminThemes map[string]string
	jsAliases   [model.NAreas]map[string]string
	jsMixins    [model.NAreas]map[string][]model.Item
	buffers     map[string]string
	workspaces  []string
}

// New creates an empty index. A nil logger discards.
func New(log *slog.Logger) *Index {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ix := &Index{
		log:         log,
		classes:     make(map[string]*php.ClassDecl),
		modulePaths: make(map[string]string),
		frontThemes: make(map[string]string),
		adminThemes: make(map[string]string),
		buffers:     make(map[string]string),
	}
	for a := range ix.jsAliases {
		ix.jsAliases[a] = make(map[string]string)
		ix.jsMixins[a] = make(map[string][]model.Item)
	}
	return ix
}

// Lookup returns the declaration record for an FQN.
func (ix *Index) Lookup(fqn string) (*php.ClassDecl, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	decl, ok := ix.classes[fqn]
	return decl, ok
}

// ModulePath returns the root directory of a registered module, keyed
// either by component name ("Vendor_Module") or class prefix
// ("Vendor\Module").
func (ix *Index) ModulePath(name string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	path, ok := ix.modulePaths[name]
	return path, ok
}

// ThemePaths lists registered theme directories relevant to an area. Base
// references may resolve into either theme set.
func (ix *Index) ThemePaths(area model.Area) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []string
	if area == model.Frontend || area == model.Base {
		for _, p := range ix.frontThemes {
			out = append(out, p)
		}
	}
	if area == model.Adminhtml || area == model.Base {
		for _, p := range ix.adminThemes {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// ComponentAlias resolves one step of a RequireJS map/paths alias.
func (ix *Index) ComponentAlias(name string, area model.Area) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	val, ok := ix.jsAliases[area][name]
	return val, ok
}

// Mixins returns the components registered as mixins of name in an area.
func (ix *Index) Mixins(name string, area model.Area) []model.Item {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.jsMixins[area][name]
}

// Workspaces returns the roots indexed so far.
func (ix *Index) Workspaces() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]string(nil), ix.workspaces...)
}

// AddWorkspace records a root, reporting whether it was new. Re-adding a
// known root is a no-op so repeated initialization does not double-index.
func (ix *Index) AddWorkspace(root string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, w := range ix.workspaces {
		if w == root {
			return false
		}
	}
	ix.workspaces = append(ix.workspaces, root)
	return true
}

// ClassNames returns every indexed FQN, sorted.
func (ix *Index) ClassNames() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	names := make([]string, 0, len(ix.classes))
	for fqn := range ix.classes {
		names = append(names, fqn)
	}
	sort.Strings(names)
	return names
}

// Stats reports the number of indexed classes and registered modules.
func (ix *Index) Stats() (classes, modules int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.classes), len(ix.modulePaths)
}

// SetFile stores an in-memory overlay for an open document and re-indexes
// it from that content. Classification reads overlays in preference to disk
// so unsaved edits navigate correctly.
func (ix *Index) SetFile(path, content string) {
	ix.mu.Lock()
	ix.buffers[path] = content
	ix.mu.Unlock()
	ix.IndexFile(path)
}

// CloseFile drops the overlay for a document. Index entries derived from it
// stay until the file is re-indexed; staleness is accepted.
func (ix *Index) CloseFile(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.buffers, path)
}

// FileSource returns the overlay content for a path if one is open,
// otherwise the on-disk content.
func (ix *Index) FileSource(path string) ([]byte, error) {
	ix.mu.RLock()
	content, ok := ix.buffers[path]
	ix.mu.RUnlock()
	if ok {
		return []byte(content), nil
	}
	return os.ReadFile(path)
}

// IndexWorkspace discovers and indexes every module under root: module
// markers define components, each component's PHP files are parsed on a
// worker pool, and RequireJS configs are folded into the alias tables. It
// returns when indexing is complete. No single file failure aborts the run;
// an empty or missing root yields an empty index.
func (ix *Index) IndexWorkspace(root string) {
	start := time.Now()

	cfg, err := config.Load(root)
	if err != nil {
		ix.log.Warn("workspace config ignored", "root", root, "err", err)
	}
	excludes := cfg.ExcludeMatcher()

	var files []string
	seen := make(map[string]struct{})
	for _, searchRoot := range cfg.Roots(root) {
		ws, err := discover.Scan(searchRoot, excludes)
		if err != nil {
			ix.log.Warn("workspace scan failed", "root", searchRoot, "err", err)
			continue
		}
		for _, marker := range ws.Markers {
			ix.indexMarker(marker)
			for _, f := range discover.PHPFiles(filepath.Dir(marker), excludes) {
				if _, dup := seen[f]; !dup {
					seen[f] = struct{}{}
					files = append(files, f)
				}
			}
		}
		for _, cfgPath := range ws.RequireConfigs {
			ix.indexRequireConfig(cfgPath)
		}
	}

	ix.indexFiles(files)

	classes, modules := ix.Stats()
	ix.log.Info("workspace indexed",
		"root", root,
		"files", len(files),
		"classes", classes,
		"modules", modules,
		"elapsed", time.Since(start))
}

// IndexFile re-indexes a single file, the hook a caller invokes when
// notified of a change. Files of other kinds are ignored.
func (ix *Index) IndexFile(path string) {
	switch {
	case filepath.Base(path) == discover.MarkerFile:
		ix.indexMarker(path)
	case filepath.Base(path) == discover.RequireConfigFile:
		ix.indexRequireConfig(path)
	case filepath.Ext(path) == ".php" && !model.IsTestPath(path):
		ix.indexPHPFile(path)
	}
}

// indexFiles runs the per-file indexing units on a bounded pool. Files are
// independent; no ordering is guaranteed and none is needed, since the
// symbol table upsert is last-write-wins.
func (ix *Index) indexFiles(files []string) {
	if len(files) == 0 {
		return
	}
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan string, len(files))
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range work {
				ix.indexPHPFile(path)
			}
		}()
	}
	for _, f := range files {
		work <- f
	}
	close(work)
	wg.Wait()
}

func (ix *Index) indexPHPFile(path string) {
	source, err := ix.FileSource(path)
	if err != nil {
		ix.log.Debug("skipping unreadable file", "path", path, "err", err)
		return
	}
	decl := php.Parse(path, source)
	if decl == nil {
		return
	}
	ix.mu.Lock()
	ix.classes[decl.FQN] = decl
	ix.mu.Unlock()
}

func (ix *Index) indexMarker(path string) {
	source, err := ix.FileSource(path)
	if err != nil {
		ix.log.Debug("skipping unreadable marker", "path", path, "err", err)
		return
	}
	dir := filepath.Dir(path)
	for _, reg := range php.Registrations(source) {
		ix.mu.Lock()
		switch reg.Kind {
		case php.ModuleReg:
			ix.modulePaths[reg.Name] = dir
			ix.modulePaths[reg.Prefix] = dir
		case php.LibraryReg:
			ix.modulePaths[reg.Prefix] = dir
		case php.ThemeReg:
			switch {
			case strings.HasPrefix(reg.Name, "adminhtml/"):
				ix.adminThemes[reg.Name] = dir
			default:
				ix.frontThemes[reg.Name] = dir
			}
		}
		ix.mu.Unlock()
	}
}

// appendMixin keeps mixin registration idempotent under re-indexing of the
// same config file.
func appendMixin(mixins []model.Item, item model.Item) []model.Item {
	for _, m := range mixins {
		if m == item {
			return mixins
		}
	}
	return append(mixins, item)
}

func (ix *Index) indexRequireConfig(path string) {
	source, err := ix.FileSource(path)
	if err != nil {
		ix.log.Debug("skipping unreadable config", "path", path, "err", err)
		return
	}
	area := model.AreaOf(path)
	for _, entry := range js.ConfigEntries(source) {
		ix.mu.Lock()
		switch entry.Kind {
		case js.Alias:
			ix.jsAliases[area][entry.Key] = entry.Val
		case js.Mixin:
			if item := js.TextToComponent(entry.Val, ""); item != nil {
				ix.jsMixins[area][entry.Key] = appendMixin(ix.jsMixins[area][entry.Key], item)
			}
		}
		ix.mu.Unlock()
	}
}
