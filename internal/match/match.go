// Package match runs structural pattern sets over parsed syntax trees. It is
// the one place that touches tree-sitter query cursors; every dialect's
// extractor goes through it.
package match

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"m2nav/internal/lang"
	"m2nav/internal/model"
)

// Capture is one named node captured by a pattern.
type Capture struct {
	Name string
	Node *sitter.Node
}

// Match is one occurrence of a pattern in the tree. Pattern is the index of
// the pattern within its set, in source order of the .scm file.
type Match struct {
	Pattern  int
	Captures []Capture
}

// Node returns the first capture with the given name, or nil.
func (m Match) Node(name string) *sitter.Node {
	for _, c := range m.Captures {
		if c.Name == name {
			return c.Node
		}
	}
	return nil
}

// Parse parses source with a fresh parser for the given language. The
// parsers recover from errors, so a malformed file still yields a
// best-effort tree.
func Parse(l *lang.Language, source []byte) (*sitter.Tree, error) {
	return l.NewParser().ParseCtx(context.Background(), nil, source)
}

// Each streams every match of the pattern set over the subtree rooted at
// root, applying the set's predicates. Iteration stops when fn returns
// false. Matching never fails: a broken tree simply yields fewer matches.
func Each(q *sitter.Query, root *sitter.Node, source []byte, fn func(Match) bool) {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			return
		}
		m = qc.FilterPredicates(m, source)
		if len(m.Captures) == 0 {
			continue
		}
		out := Match{Pattern: int(m.PatternIndex)}
		for _, c := range m.Captures {
			out.Captures = append(out.Captures, Capture{
				Name: q.CaptureNameForId(c.Index),
				Node: c.Node,
			})
		}
		if !fn(out) {
			return
		}
	}
}

// All collects every match of the pattern set.
func All(q *sitter.Query, root *sitter.Node, source []byte) []Match {
	var out []Match
	Each(q, root, source, func(m Match) bool {
		out = append(out, m)
		return true
	})
	return out
}

// Text returns the source text of a node.
func Text(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// Unquote strips one layer of matching string quotes.
func Unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// QuotedText returns the text of a string-literal node without its quotes.
func QuotedText(n *sitter.Node, source []byte) string {
	return Unquote(strings.TrimSpace(Text(n, source)))
}

// SpanOf converts a node's extent to a Span.
func SpanOf(n *sitter.Node) model.Span {
	return model.Span{
		Start: model.Position{Line: int(n.StartPoint().Row), Col: int(n.StartPoint().Column)},
		End:   model.Position{Line: int(n.EndPoint().Row), Col: int(n.EndPoint().Column)},
	}
}

// NodeContains reports whether pos falls inside the node's span, using the
// span boundary rule.
func NodeContains(n *sitter.Node, pos model.Position) bool {
	return SpanOf(n).Contains(pos)
}
