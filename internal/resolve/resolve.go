// Package resolve maps classified references to declaration locations. It
// is a pure reader of the index: every call is a function of current index
// contents, and a miss of any kind is an empty result, never an error.
package resolve

import (
	"os"
	"path/filepath"

	"m2nav/internal/index"
	"m2nav/internal/model"
)

// Definitions resolves a classified reference to its declaration locations.
// from is the path of the referencing document; it scopes area-dependent
// lookups. A nil item or an unresolvable reference yields nil.
func Definitions(ix *index.Index, item model.Item, from string) []model.Location {
	switch it := item.(type) {
	case nil:
		return nil
	case model.PlainText:
		// A bare token is only navigable when it happens to be an FQN.
		return classLocation(ix, it.Text)
	case model.Class:
		return classLocation(ix, it.FQN)
	case model.Method:
		decl, ok := ix.Lookup(it.FQN)
		if !ok {
			return nil
		}
		return []model.Location{{File: decl.File, Span: memberSpan(decl.Span, decl.Methods, it.Name)}}
	case model.Const:
		decl, ok := ix.Lookup(it.FQN)
		if !ok {
			return nil
		}
		return []model.Location{{File: decl.File, Span: memberSpan(decl.Span, decl.Consts, it.Name)}}
	case model.Template:
		return templateLocations(ix, it)
	case model.Component:
		return componentLocations(ix, it)
	case model.ModComponent:
		return modComponentLocations(ix, it, model.AreaOf(from))
	case model.RelComponent:
		return fileLocation(filepath.Join(it.Dir, it.Path) + ".js")
	default:
		return nil
	}
}

func classLocation(ix *index.Index, fqn string) []model.Location {
	decl, ok := ix.Lookup(fqn)
	if !ok {
		return nil
	}
	return []model.Location{{File: decl.File, Span: decl.Span}}
}

// memberSpan narrows a class hit to a member's name span. A missing member
// degrades to the class span: navigation lands on the class rather than
// failing outright.
func memberSpan(classSpan model.Span, members map[string]model.Span, name string) model.Span {
	if s, ok := members[name]; ok {
		return s
	}
	return classSpan
}

// templateLocations probes the candidate paths a module-qualified template
// may live at: the module's own view/<area>/templates tree, then any
// registered theme overrides for the area.
func templateLocations(ix *index.Index, t model.Template) []model.Location {
	var out []model.Location
	if modPath, ok := ix.ModulePath(t.Module); ok {
		for _, areaDir := range t.Area.PathCandidates() {
			out = append(out, fileLocation(filepath.Join(modPath, "view", areaDir, "templates", t.Path))...)
		}
	}
	for _, themePath := range ix.ThemePaths(t.Area) {
		out = append(out, fileLocation(filepath.Join(themePath, t.Module, "templates", t.Path))...)
	}
	return out
}

// componentLocations probes workspace-level script libraries for a plain
// component name.
func componentLocations(ix *index.Index, c model.Component) []model.Location {
	var out []model.Location
	for _, ws := range ix.Workspaces() {
		out = append(out, fileLocation(filepath.Join(ws, "lib", "web", c.Name)+".js")...)
	}
	return out
}

// modComponentLocations probes a module's web directories for a script,
// along with any mixins registered against it in the referencing area.
func modComponentLocations(ix *index.Index, c model.ModComponent, area model.Area) []model.Location {
	items := []model.Item{c}
	items = append(items, ix.Mixins(c.Module+"/"+c.Path, area)...)

	var out []model.Location
	for _, item := range items {
		mc, ok := item.(model.ModComponent)
		if !ok {
			continue
		}
		modPath, ok := ix.ModulePath(mc.Module)
		if !ok {
			continue
		}
		for _, areaDir := range area.PathCandidates() {
			out = append(out, fileLocation(filepath.Join(modPath, "view", areaDir, "web", mc.Path)+".js")...)
		}
	}
	return out
}

// fileLocation turns an existing regular file into a whole-file location.
func fileLocation(path string) []model.Location {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	return []model.Location{{File: path}}
}
