// Package xml classifies cursor positions inside configuration files. The
// files are XML dialects (di.xml, events.xml, layout files) but are parsed
// with the tolerant HTML grammar; broken markup yields fewer matches, never
// an error.
package xml

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"m2nav/internal/lang"
	"m2nav/internal/match"
	"m2nav/internal/model"
)

// ItemAt classifies the token at pos inside a configuration document.
// docPath is used only to derive the view area for template references.
//
// A bare attribute value under the cursor is ambiguous between "this is the
// entity name itself" and "unrelated text" until cross-checked against the
// enclosing tag's own attributes, so tag-level captures take precedence over
// the plain token whenever the token matches one of the tag's identifying
// values.
func ItemAt(source []byte, pos model.Position, docPath string) model.Item {
	tree, err := match.Parse(lang.XML, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	q, err := lang.XML.Query("xml_item")
	if err != nil {
		return nil
	}

	var token string
	var entity, member, template string

	match.Each(q, tree.RootNode(), source, func(m match.Match) bool {
		if n := m.Node("value"); n != nil && match.NodeContains(n, pos) {
			token = match.Text(n, source)
		}
		if n := m.Node("tag"); n != nil && match.NodeContains(n, pos) {
			attrs := tagAttributes(n, source)
			if v, ok := attrs["class"]; ok {
				entity = v
			} else if v, ok := attrs["instance"]; ok {
				entity = v
			}
			if v, ok := attrs["method"]; ok {
				member = v
			}
			if v, ok := attrs["template"]; ok {
				template = v
			}
		}
		return true
	})

	token = trimLeadingSeparator(token)

	if template != "" && (token == "" || token == template) {
		if item, ok := templateItem(template, docPath); ok {
			return item
		}
	}
	entity = trimLeadingSeparator(entity)
	if entity != "" && (token == "" || token == entity || token == member) {
		return entityItem(entity, member)
	}
	if token != "" {
		return model.PlainText{Text: token}
	}
	return nil
}

// trimLeadingSeparator strips exactly one leading global-namespace marker.
func trimLeadingSeparator(s string) string {
	return strings.TrimPrefix(s, "\\")
}

func entityItem(entity, member string) model.Item {
	if member != "" {
		return model.Method{FQN: entity, Name: member}
	}
	if cls, constant, found := strings.Cut(entity, "::"); found {
		return model.Const{FQN: cls, Name: constant}
	}
	return model.Class{FQN: entity}
}

// templateItem splits a `Vendor_Module::path/file.phtml` template value.
// Values without the module qualifier are left to the plain-token path.
func templateItem(value, docPath string) (model.Item, bool) {
	mod, path, found := strings.Cut(value, "::")
	if !found || mod == "" || path == "" {
		return nil, false
	}
	return model.Template{Module: mod, Path: path, Area: model.AreaOf(docPath)}, true
}

// tagAttributes collects the attribute name/value pairs of a start or
// self-closing tag node.
func tagAttributes(tag *sitter.Node, source []byte) map[string]string {
	attrs := make(map[string]string)
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		attr := tag.NamedChild(i)
		if attr.Type() != "attribute" {
			continue
		}
		nameNode := attr.NamedChild(0)
		if nameNode == nil {
			continue
		}
		quoted := attr.NamedChild(1)
		if quoted == nil {
			continue
		}
		valueNode := quoted.NamedChild(0)
		if valueNode == nil {
			continue
		}
		attrs[match.Text(nameNode, source)] = match.Text(valueNode, source)
	}
	return attrs
}
