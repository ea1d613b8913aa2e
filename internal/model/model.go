// Package model defines core data structures for m2nav.
package model

import "fmt"

// Position is a zero-based line/column cursor position.
type Position struct {
	Line int
	Col  int
}

// Span is the range covered by a single token or node.
// End.Col points one past the last unit of the token.
type Span struct {
	Start Position
	End   Position
}

// Contains reports whether pos falls inside the span. The start column is
// inclusive; the end column is exclusive of one trailing unit, so a cursor
// at End.Col-1 is inside and a cursor at End.Col is not.
func (s Span) Contains(pos Position) bool {
	if pos.Line < s.Start.Line || pos.Line > s.End.Line {
		return false
	}
	if pos.Line == s.Start.Line && pos.Col < s.Start.Col {
		return false
	}
	if pos.Line == s.End.Line && s.End.Col-1 < pos.Col {
		return false
	}
	return true
}

// Location is the resolved target of a reference: the exact span of the
// declaration's name token inside File. A zero Span means "top of file"
// (used for whole-file targets such as templates and script modules).
type Location struct {
	File string
	Span Span
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Span.Start.Line, l.Span.Start.Col)
}

// Item is the classification of a cursor position: what semantic entity the
// token under the cursor refers to. A nil Item means no relevant token. The
// variant set is closed; every consumer switches over all of them.
type Item interface {
	isItem()
}

// PlainText is a bare identifier or string with no structural attribution
// from the surrounding tag shape.
type PlainText struct {
	Text string
}

// Class references a PHP class or interface by fully-qualified name.
type Class struct {
	FQN string
}

// Method references a public method of a class.
type Method struct {
	FQN  string
	Name string
}

// Const references a class constant (`FQN::NAME`).
type Const struct {
	FQN  string
	Name string
}

// Template references a .phtml template by module-qualified path, e.g.
// `Vendor_Module::path/file.phtml`, tagged with the area of the document
// that referenced it.
type Template struct {
	Module string
	Path   string
	Area   Area
}

// Component references a plain RequireJS module, e.g. `jquery`.
type Component struct {
	Name string
}

// ModComponent references a script inside a Magento module, e.g.
// `Vendor_Module/js/view` splits into Module and Path.
type ModComponent struct {
	Module string
	Path   string
}

// RelComponent references a script relative to the requiring file's
// directory, e.g. `./model/shipping`.
type RelComponent struct {
	Path string
	Dir  string
}

func (PlainText) isItem()    {}
func (Class) isItem()        {}
func (Method) isItem()       {}
func (Const) isItem()        {}
func (Template) isItem()     {}
func (Component) isItem()    {}
func (ModComponent) isItem() {}
func (RelComponent) isItem() {}
