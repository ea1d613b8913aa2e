// Package nav is the surface a protocol front end calls: workspace
// initialization, definition requests, and open-document notifications.
package nav

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"m2nav/internal/index"
	"m2nav/internal/js"
	"m2nav/internal/lang"
	"m2nav/internal/model"
	"m2nav/internal/resolve"
	"m2nav/internal/xml"
)

// Server holds the shared index and serves resolution requests against it.
// Requests may run while indexing is still in flight; a definition asked
// for before its file is indexed simply resolves to nothing.
type Server struct {
	ix  *index.Index
	log *slog.Logger
}

// New creates a server around an empty index. A nil logger discards.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{ix: index.New(log), log: log}
}

// Index exposes the underlying index, mainly so embedders and tests can run
// indexing synchronously.
func (s *Server) Index() *index.Index {
	return s.ix
}

// Initialize starts indexing each workspace folder in the background and
// returns immediately. Folders already initialized are skipped, so a
// workspace-membership change can re-call this with the full folder list.
func (s *Server) Initialize(folders []string) {
	for _, folder := range folders {
		if s.ix.AddWorkspace(folder) {
			go s.ix.IndexWorkspace(folder)
		}
	}
}

// Definition classifies the token at pos in the given document and resolves
// it to declaration locations. Nil means no navigable token.
func (s *Server) Definition(path string, pos model.Position) []model.Location {
	source, err := s.ix.FileSource(path)
	if err != nil {
		s.log.Debug("definition request for unreadable file", "path", path, "err", err)
		return nil
	}

	var item model.Item
	switch lang.ForExtension(strings.ToLower(filepath.Ext(path))) {
	case lang.XML:
		item = xml.ItemAt(source, pos, path)
	case lang.JS:
		item = js.ItemAt(s.ix, source, path, pos)
	}
	return resolve.Definitions(s.ix, item, path)
}

// SetFile records the in-editor content of an open document and re-indexes
// it, so navigation follows unsaved edits.
func (s *Server) SetFile(path, content string) {
	s.ix.SetFile(path, content)
}

// CloseFile drops the in-editor overlay for a document.
func (s *Server) CloseFile(path string) {
	s.ix.CloseFile(path)
}
