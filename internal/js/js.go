// Package js understands the RequireJS side of a workspace: the alias and
// mixin tables declared in requirejs-config.js files, and the dependency
// strings inside define([...]) arrays.
package js

import (
	"path/filepath"
	"strings"
	"unicode"

	"m2nav/internal/lang"
	"m2nav/internal/match"
	"m2nav/internal/model"
)

// EntryKind distinguishes the two kinds of requirejs-config declarations
// the index keeps.
type EntryKind int

const (
	// Alias maps a component name to another component (map and paths
	// sections behave identically for navigation).
	Alias EntryKind = iota
	// Mixin attaches an extra component to a target component.
	Mixin
)

// ConfigEntry is one declaration extracted from a requirejs-config.js file.
type ConfigEntry struct {
	Kind EntryKind
	Key  string
	Val  string
}

// ConfigEntries extracts the map, paths and mixins declarations from a
// requirejs-config.js source. Malformed files yield whatever partial
// declarations still parse.
func ConfigEntries(source []byte) []ConfigEntry {
	tree, err := match.Parse(lang.JS, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	q, err := lang.JS.Query("js_require_config")
	if err != nil {
		return nil
	}

	var entries []ConfigEntry
	for _, m := range match.All(q, tree.RootNode(), source) {
		key, val := m.Node("key"), m.Node("val")
		if key == nil || val == nil {
			continue
		}
		kind := Alias
		if m.Pattern == 2 {
			kind = Mixin
		}
		entries = append(entries, ConfigEntry{
			Kind: kind,
			Key:  match.QuotedText(key, source),
			Val:  match.QuotedText(val, source),
		})
	}
	return entries
}

// Lookup is the part of the symbol index classification needs: alias
// resolution scoped to a view area.
type Lookup interface {
	ComponentAlias(name string, area model.Area) (string, bool)
}

// ItemAt classifies the define() dependency string at pos, if any. Aliases
// from the document's area are followed before classification.
func ItemAt(look Lookup, source []byte, docPath string, pos model.Position) model.Item {
	tree, err := match.Parse(lang.JS, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	q, err := lang.JS.Query("js_define")
	if err != nil {
		return nil
	}

	var text string
	found := false
	match.Each(q, tree.RootNode(), source, func(m match.Match) bool {
		if n := m.Node("dep"); n != nil && match.NodeContains(n, pos) {
			text = match.QuotedText(n, source)
			found = true
			return false
		}
		return true
	})
	if !found || text == "" {
		return nil
	}

	area := model.AreaOf(docPath)
	// Alias chains are followed to a fixed point; the depth guard keeps a
	// config cycle from hanging a request.
	for i := 0; i < 16; i++ {
		target, ok := look.ComponentAlias(text, area)
		if !ok || target == text {
			break
		}
		text = target
	}

	return TextToComponent(text, filepath.Dir(docPath))
}

// TextToComponent classifies a resolved component string. dir is the
// directory of the referencing file, kept for relative components.
func TextToComponent(text, dir string) model.Item {
	if text == "" {
		return nil
	}
	head := text
	if i := strings.IndexByte(text, '/'); i >= 0 {
		head = text[:i]
	}
	switch {
	case strings.HasPrefix(head, "."):
		return model.RelComponent{Path: text, Dir: dir}
	case head != text && strings.Count(head, "_") == 1 && startsUpper(head):
		mod, path, _ := strings.Cut(text, "/")
		return model.ModComponent{Module: mod, Path: path}
	default:
		return model.Component{Name: text}
	}
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
