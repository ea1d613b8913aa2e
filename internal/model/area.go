package model

import (
	"path/filepath"
	"strings"
)

// Area is the Magento view area a file belongs to.
type Area int

const (
	Frontend Area = iota
	Adminhtml
	Base
)

// NAreas sizes area-indexed tables.
const NAreas = 3

func (a Area) String() string {
	switch a {
	case Frontend:
		return "frontend"
	case Adminhtml:
		return "adminhtml"
	default:
		return "base"
	}
}

// PathCandidates returns the view subdirectories to probe when resolving a
// file for this area, most specific first. Base-area references may live in
// any of the three.
func (a Area) PathCandidates() []string {
	switch a {
	case Frontend:
		return []string{"frontend", "base"}
	case Adminhtml:
		return []string{"adminhtml", "base"}
	default:
		return []string{"frontend", "adminhtml", "base"}
	}
}

// AreaOf derives the area of a file from its path: anything under
// view/<area> or design/<area> belongs to that area, everything else is base.
func AreaOf(path string) Area {
	switch {
	case HasPathComponents(path, "view", "base"),
		HasPathComponents(path, "design", "base"):
		return Base
	case HasPathComponents(path, "view", "frontend"),
		HasPathComponents(path, "design", "frontend"):
		return Frontend
	case HasPathComponents(path, "view", "adminhtml"),
		HasPathComponents(path, "design", "adminhtml"):
		return Adminhtml
	default:
		return Base
	}
}

// HasPathComponents reports whether the path contains the given components
// consecutively, in order.
func HasPathComponents(path string, parts ...string) bool {
	comps := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) == 0 || len(comps) < len(parts) {
		return false
	}
outer:
	for i := 0; i+len(parts) <= len(comps); i++ {
		for j, p := range parts {
			if comps[i+j] != p {
				continue outer
			}
		}
		return true
	}
	return false
}

// IsTestPath reports whether a PHP file is part of a test suite and should
// be excluded from indexing.
func IsTestPath(path string) bool {
	if strings.HasSuffix(filepath.Base(path), "Test.php") {
		return true
	}
	return HasPathComponents(path, "dev", "tests")
}
