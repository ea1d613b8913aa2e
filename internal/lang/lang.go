// Package lang provides the grammar registry for the three source dialects
// m2nav understands, together with their embedded structural pattern sets.
package lang

import (
	"embed"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
)

//go:embed queries/*.scm
var queryFS embed.FS

// Language holds tree-sitter configuration for one source dialect and a
// cache of its compiled pattern sets.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	mu      sync.Mutex
	queries map[string]*sitter.Query
}

// PHP covers host-language source files.
var PHP = &Language{
	Name:       "php",
	Extensions: []string{".php"},
	lang:       php.GetLanguage(),
}

// XML covers the configuration dialect. It is parsed with the HTML grammar:
// the grammar is tolerant of malformed input, which is exactly what a
// best-effort extractor wants, and XML tag structure is a subset of what it
// accepts.
var XML = &Language{
	Name:       "xml",
	Extensions: []string{".xml"},
	lang:       html.GetLanguage(),
}

// JS covers RequireJS script files.
var JS = &Language{
	Name:       "js",
	Extensions: []string{".js"},
	lang:       javascript.GetLanguage(),
}

var all = []*Language{PHP, XML, JS}

// ForExtension returns the language for a file extension, or nil if the
// extension is not a dialect m2nav parses.
func ForExtension(ext string) *Language {
	for _, l := range all {
		for _, e := range l.Extensions {
			if e == ext {
				return l
			}
		}
	}
	return nil
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Query returns the compiled pattern set stored at queries/<name>.scm.
// Compiled queries are cached and safe to share across goroutines.
func (l *Language) Query(name string) (*sitter.Query, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if q, ok := l.queries[name]; ok {
		return q, nil
	}
	data, err := queryFS.ReadFile(fmt.Sprintf("queries/%s.scm", name))
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	q, err := sitter.NewQuery(data, l.lang)
	if err != nil {
		return nil, fmt.Errorf("compiling query %s: %w", name, err)
	}
	if l.queries == nil {
		l.queries = make(map[string]*sitter.Query)
	}
	l.queries[name] = q
	return q, nil
}

// MustQuery is Query for pattern sets that ship with the binary; a failure
// to compile one is a programming error.
func (l *Language) MustQuery(name string) *sitter.Query {
	q, err := l.Query(name)
	if err != nil {
		panic(err)
	}
	return q
}
