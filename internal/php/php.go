// Package php extracts declarations from host-language source files: the
// namespace, the class or interface, its public methods and constants, and
// the component registrations found in module-marker files.
package php

import (
	"strings"

	"m2nav/internal/lang"
	"m2nav/internal/match"
	"m2nav/internal/model"
)

// ClassDecl is the indexed record for one declared class or interface.
// Spans cover name tokens, not declaration bodies. Method and constant
// names are not required to be unique within a file; the last declaration
// seen wins.
type ClassDecl struct {
	FQN     string
	File    string
	Span    model.Span
	Methods map[string]model.Span
	Consts  map[string]model.Span
}

// Parse extracts the declaration record from one PHP file. It returns nil
// when the file does not declare both a namespace and a class or interface;
// only such files are indexable, because the FQN is the concatenation of
// the two.
func Parse(path string, source []byte) *ClassDecl {
	tree, err := match.Parse(lang.PHP, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	q, err := lang.PHP.Query("php_class")
	if err != nil {
		return nil
	}

	var ns, cls string
	var clsSpan model.Span
	haveCls := false
	methods := make(map[string]model.Span)
	consts := make(map[string]model.Span)

	for _, m := range match.All(q, tree.RootNode(), source) {
		switch m.Pattern {
		case 0: // namespace
			if n := m.Node("namespace"); n != nil {
				ns = match.Text(n, source)
			}
		case 1, 2: // class, interface
			if n := m.Node("class"); n != nil {
				cls = match.Text(n, source)
				clsSpan = match.SpanOf(n)
				haveCls = true
			}
		case 3: // public method
			if n := m.Node("name"); n != nil {
				if name := match.Text(n, source); name != "" {
					methods[name] = match.SpanOf(n)
				}
			}
		case 4: // class constant
			if n := m.Node("const"); n != nil {
				if name := match.Text(n, source); name != "" {
					consts[name] = match.SpanOf(n)
				}
			}
		}
	}

	if ns == "" || !haveCls || cls == "" {
		return nil
	}

	return &ClassDecl{
		FQN:     ns + "\\" + cls,
		File:    path,
		Span:    clsSpan,
		Methods: methods,
		Consts:  consts,
	}
}

// RegKind classifies a component registration by its name shape.
type RegKind int

const (
	ModuleReg  RegKind = iota // Vendor_Module
	LibraryReg                // vendor/package (composer style)
	ThemeReg                  // area/Vendor/theme
)

// Registration is one component registered by a module-marker file.
type Registration struct {
	Kind RegKind
	// Name is the component name as registered.
	Name string
	// Prefix is the class FQN prefix the component provides, for modules
	// and libraries ("Vendor\Module"). Empty for themes.
	Prefix string
}

// Registrations extracts every component registered by a marker file's
// register() call. Malformed or unrecognized names are skipped.
func Registrations(source []byte) []Registration {
	tree, err := match.Parse(lang.PHP, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	q, err := lang.PHP.Query("php_registration")
	if err != nil {
		return nil
	}

	var regs []Registration
	for _, m := range match.All(q, tree.RootNode(), source) {
		n := m.Node("component")
		if n == nil {
			continue
		}
		if reg, ok := classifyComponent(match.QuotedText(n, source)); ok {
			regs = append(regs, reg)
		}
	}
	return regs
}

func classifyComponent(name string) (Registration, bool) {
	switch strings.Count(name, "/") {
	case 2:
		return Registration{Kind: ThemeReg, Name: name}, true
	case 1:
		vendor, pkg, _ := strings.Cut(name, "/")
		prefix := pascal(vendor) + "\\"
		if head, rest, found := strings.Cut(pkg, "-"); found {
			prefix += pascal(head) + "\\" + pascal(rest)
		} else {
			prefix += pascal(pkg)
		}
		return Registration{Kind: LibraryReg, Name: name, Prefix: prefix}, true
	}
	if strings.Count(name, "_") == 1 {
		vendor, mod, _ := strings.Cut(name, "_")
		return Registration{Kind: ModuleReg, Name: name, Prefix: vendor + "\\" + mod}, true
	}
	return Registration{}, false
}

// pascal converts a kebab- or snake-case word to PascalCase, the way
// composer package names map onto class namespaces.
func pascal(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
