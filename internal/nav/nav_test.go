package nav

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"m2nav/internal/model"
)

const navRegistration = `<?php
\Magento\Framework\Component\ComponentRegistrar::register(
    \Magento\Framework\Component\ComponentRegistrar::MODULE,
    'Foo_Bar',
    __DIR__
);
`

const navModel = `<?php

namespace Foo\Bar;

class Model
{
    public function doSomething()
    {
    }
}
`

func writeNavFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func navWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeNavFile(t, root, "app/code/Foo/Bar/registration.php", navRegistration)
	writeNavFile(t, root, "app/code/Foo/Bar/Model.php", navModel)
	return root
}

// cursor locates the `|` marker, returning the cleaned source and position.
func cursor(t *testing.T, source string) (string, model.Position) {
	t.Helper()
	for i, line := range strings.Split(source, "\n") {
		if j := strings.IndexByte(line, '|'); j >= 0 {
			return strings.Replace(source, "|", "", 1), model.Position{Line: i, Col: j}
		}
	}
	t.Fatal("fixture has no | cursor marker")
	return "", model.Position{}
}

func TestDefinitionOnXMLDocument(t *testing.T) {
	t.Parallel()

	root := navWorkspace(t)
	s := New(nil)
	s.Index().AddWorkspace(root)
	s.Index().IndexWorkspace(root)

	source, pos := cursor(t, `<config>
    <observer instance="Foo\Bar\Model" method="doSome|thing"/>
</config>`)
	xmlPath := filepath.Join(root, "app", "code", "Foo", "Bar", "etc", "events.xml")
	s.SetFile(xmlPath, source)

	locs := s.Definition(xmlPath, pos)
	if len(locs) != 1 {
		t.Fatalf("locs = %v", locs)
	}
	wantFile := filepath.Join(root, "app", "code", "Foo", "Bar", "Model.php")
	if locs[0].File != wantFile {
		t.Errorf("File = %q, want %q", locs[0].File, wantFile)
	}
	// The declaration span must cover exactly the method name.
	want := model.Span{Start: model.Position{Line: 6, Col: 20}, End: model.Position{Line: 6, Col: 31}}
	if locs[0].Span != want {
		t.Errorf("Span = %v, want %v", locs[0].Span, want)
	}
}

func TestDefinitionOnJSDocument(t *testing.T) {
	t.Parallel()

	root := navWorkspace(t)
	target := writeNavFile(t, root, "app/code/Foo/Bar/view/frontend/web/js/thing.js", "define([], function () {});")

	s := New(nil)
	s.Index().AddWorkspace(root)
	s.Index().IndexWorkspace(root)

	source, pos := cursor(t, `define(['Foo_Bar/js/th|ing'], function (thing) {});`)
	jsPath := filepath.Join(root, "app", "code", "Foo", "Bar", "view", "frontend", "web", "js", "page.js")
	s.SetFile(jsPath, source)

	locs := s.Definition(jsPath, pos)
	if len(locs) != 1 || locs[0].File != target {
		t.Errorf("locs = %v, want %q", locs, target)
	}
}

func TestDefinitionBeforeIndexingCompletes(t *testing.T) {
	t.Parallel()

	s := New(nil)
	source, pos := cursor(t, `<config>
    <plugin class="Foo\Bar\Mo|del"/>
</config>`)
	path := filepath.Join(t.TempDir(), "di.xml")
	s.SetFile(path, source)

	if locs := s.Definition(path, pos); locs != nil {
		t.Errorf("locs = %v, want nil against an empty index", locs)
	}
}

func TestDefinitionUnreadableFile(t *testing.T) {
	t.Parallel()

	s := New(nil)
	if locs := s.Definition(filepath.Join(t.TempDir(), "missing.xml"), model.Position{}); locs != nil {
		t.Errorf("locs = %v", locs)
	}
}

func TestDefinitionIgnoresOtherExtensions(t *testing.T) {
	t.Parallel()

	s := New(nil)
	path := filepath.Join(t.TempDir(), "notes.txt")
	s.SetFile(path, `Foo\Bar\Model`)
	if locs := s.Definition(path, model.Position{}); locs != nil {
		t.Errorf("locs = %v", locs)
	}
}

func TestInitializeIndexesInBackground(t *testing.T) {
	t.Parallel()

	root := navWorkspace(t)
	s := New(nil)
	s.Initialize([]string{root})

	deadline := time.Now().Add(10 * time.Second)
	for {
		if _, ok := s.Index().Lookup(`Foo\Bar\Model`); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("background indexing never completed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Re-initializing with the same folder must not re-index.
	s.Initialize([]string{root})
	if got := s.Index().Workspaces(); len(got) != 1 {
		t.Errorf("Workspaces = %v, want one root", got)
	}
}

func TestCloseFileFallsBackToDisk(t *testing.T) {
	t.Parallel()

	root := navWorkspace(t)
	s := New(nil)
	s.Index().AddWorkspace(root)
	s.Index().IndexWorkspace(root)

	xmlPath := writeNavFile(t, root, "app/code/Foo/Bar/etc/di.xml", `<config>
    <plugin class="Foo\Bar\Model"/>
</config>`)

	// Overlay shadows the disk content.
	s.SetFile(xmlPath, `<config/>`)
	pos := model.Position{Line: 1, Col: 25}
	if locs := s.Definition(xmlPath, pos); locs != nil {
		t.Errorf("overlay ignored: %v", locs)
	}

	s.CloseFile(xmlPath)
	if locs := s.Definition(xmlPath, pos); len(locs) != 1 {
		t.Errorf("disk content not used after close: %v", locs)
	}
}
