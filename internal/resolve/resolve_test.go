package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"m2nav/internal/index"
	"m2nav/internal/model"
)

const modelSource = `<?php

namespace Foo\Bar;

class Model
{
    const SOME_FLAG = 1;

    public function doSomething()
    {
        return self::SOME_FLAG;
    }
}
`

func indexed(t *testing.T) (*index.Index, string) {
	t.Helper()
	ix := index.New(nil)
	path := filepath.Join(t.TempDir(), "Model.php")
	ix.SetFile(path, modelSource)
	return ix, path
}

func TestClassDefinition(t *testing.T) {
	t.Parallel()

	ix, path := indexed(t)
	locs := Definitions(ix, model.Class{FQN: `Foo\Bar\Model`}, "etc/di.xml")
	if len(locs) != 1 {
		t.Fatalf("locs = %v", locs)
	}
	if locs[0].File != path {
		t.Errorf("File = %q, want %q", locs[0].File, path)
	}
	want := model.Span{Start: model.Position{Line: 4, Col: 6}, End: model.Position{Line: 4, Col: 11}}
	if locs[0].Span != want {
		t.Errorf("Span = %v, want %v", locs[0].Span, want)
	}
}

func TestPlainTextResolvesWhenItNamesAClass(t *testing.T) {
	t.Parallel()

	ix, path := indexed(t)
	locs := Definitions(ix, model.PlainText{Text: `Foo\Bar\Model`}, "etc/di.xml")
	if len(locs) != 1 || locs[0].File != path {
		t.Errorf("locs = %v", locs)
	}
	if locs := Definitions(ix, model.PlainText{Text: "some_event"}, "etc/events.xml"); locs != nil {
		t.Errorf("unrelated text resolved: %v", locs)
	}
}

func TestMethodDefinition(t *testing.T) {
	t.Parallel()

	ix, _ := indexed(t)
	locs := Definitions(ix, model.Method{FQN: `Foo\Bar\Model`, Name: "doSomething"}, "etc/di.xml")
	if len(locs) != 1 {
		t.Fatalf("locs = %v", locs)
	}
	want := model.Span{Start: model.Position{Line: 8, Col: 20}, End: model.Position{Line: 8, Col: 31}}
	if locs[0].Span != want {
		t.Errorf("Span = %v, want %v", locs[0].Span, want)
	}
}

func TestMissingMemberFallsBackToClassSpan(t *testing.T) {
	t.Parallel()

	ix, path := indexed(t)
	classSpan := model.Span{Start: model.Position{Line: 4, Col: 6}, End: model.Position{Line: 4, Col: 11}}

	locs := Definitions(ix, model.Method{FQN: `Foo\Bar\Model`, Name: "noSuchMethod"}, "etc/di.xml")
	if len(locs) != 1 || locs[0].File != path || locs[0].Span != classSpan {
		t.Errorf("method fallback = %v, want class span at %v", locs, classSpan)
	}

	locs = Definitions(ix, model.Const{FQN: `Foo\Bar\Model`, Name: "NO_SUCH"}, "etc/di.xml")
	if len(locs) != 1 || locs[0].Span != classSpan {
		t.Errorf("const fallback = %v", locs)
	}
}

func TestConstDefinition(t *testing.T) {
	t.Parallel()

	ix, _ := indexed(t)
	locs := Definitions(ix, model.Const{FQN: `Foo\Bar\Model`, Name: "SOME_FLAG"}, "etc/di.xml")
	if len(locs) != 1 {
		t.Fatalf("locs = %v", locs)
	}
	if locs[0].Span.Start.Line != 6 {
		t.Errorf("const span = %v, want line 6", locs[0].Span)
	}
}

func TestUnknownClassYieldsNothing(t *testing.T) {
	t.Parallel()

	ix := index.New(nil)
	if locs := Definitions(ix, model.Class{FQN: `No\Such\Class`}, "etc/di.xml"); locs != nil {
		t.Errorf("locs = %v", locs)
	}
	if locs := Definitions(ix, nil, "etc/di.xml"); locs != nil {
		t.Errorf("nil item resolved: %v", locs)
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTemplateDefinition(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	modDir := filepath.Join(root, "vendor", "foo", "module-bar")
	tpl := filepath.Join(modDir, "view", "frontend", "templates", "cart", "totals.phtml")
	write(t, tpl)

	ix := index.New(nil)
	marker := filepath.Join(modDir, "registration.php")
	write(t, marker)
	ix.SetFile(marker, `<?php
\Magento\Framework\Component\ComponentRegistrar::register(
    \Magento\Framework\Component\ComponentRegistrar::MODULE, 'Foo_Bar', __DIR__);
`)

	item := model.Template{Module: "Foo_Bar", Path: "cart/totals.phtml", Area: model.Frontend}
	locs := Definitions(ix, item, "view/frontend/layout/default.xml")
	if len(locs) != 1 || locs[0].File != tpl {
		t.Errorf("locs = %v, want %q", locs, tpl)
	}
}

func TestTemplateProbesBaseFallback(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	modDir := filepath.Join(root, "mod")
	front := filepath.Join(modDir, "view", "frontend", "templates", "a.phtml")
	base := filepath.Join(modDir, "view", "base", "templates", "a.phtml")
	write(t, front)
	write(t, base)

	ix := index.New(nil)
	marker := filepath.Join(modDir, "registration.php")
	write(t, marker)
	ix.SetFile(marker, `<?php
\Magento\Framework\Component\ComponentRegistrar::register(
    \Magento\Framework\Component\ComponentRegistrar::MODULE, 'Foo_Bar', __DIR__);
`)

	item := model.Template{Module: "Foo_Bar", Path: "a.phtml", Area: model.Frontend}
	locs := Definitions(ix, item, "view/frontend/layout/default.xml")
	if len(locs) != 2 {
		t.Errorf("locs = %v, want the frontend and base candidates", locs)
	}
}

func TestTemplateThemeOverride(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	themeDir := filepath.Join(root, "theme")
	override := filepath.Join(themeDir, "Foo_Bar", "templates", "cart", "totals.phtml")
	write(t, override)

	ix := index.New(nil)
	marker := filepath.Join(themeDir, "registration.php")
	write(t, marker)
	ix.SetFile(marker, `<?php
\Magento\Framework\Component\ComponentRegistrar::register(
    \Magento\Framework\Component\ComponentRegistrar::THEME, 'frontend/Acme/default', __DIR__);
`)

	item := model.Template{Module: "Foo_Bar", Path: "cart/totals.phtml", Area: model.Frontend}
	locs := Definitions(ix, item, "view/frontend/layout/default.xml")
	if len(locs) != 1 || locs[0].File != override {
		t.Errorf("locs = %v, want %q", locs, override)
	}
}

func TestComponentDefinition(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	lib := filepath.Join(root, "lib", "web", "jquery.js")
	write(t, lib)

	ix := index.New(nil)
	ix.AddWorkspace(root)

	locs := Definitions(ix, model.Component{Name: "jquery"}, "view/frontend/web/js/page.js")
	if len(locs) != 1 || locs[0].File != lib {
		t.Errorf("locs = %v, want %q", locs, lib)
	}
}

func TestModComponentDefinitionWithMixin(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	modDir := filepath.Join(root, "mod")
	target := filepath.Join(modDir, "view", "frontend", "web", "js", "thing.js")
	mixin := filepath.Join(modDir, "view", "frontend", "web", "js", "thing-mixin.js")
	write(t, target)
	write(t, mixin)

	ix := index.New(nil)
	marker := filepath.Join(modDir, "registration.php")
	write(t, marker)
	ix.SetFile(marker, `<?php
\Magento\Framework\Component\ComponentRegistrar::register(
    \Magento\Framework\Component\ComponentRegistrar::MODULE, 'Foo_Bar', __DIR__);
`)
	cfg := filepath.Join(modDir, "view", "frontend", "requirejs-config.js")
	write(t, cfg)
	ix.SetFile(cfg, `var config = {
    config: {
        mixins: {
            'Foo_Bar/js/thing': { 'Foo_Bar/js/thing-mixin': true }
        }
    }
};`)

	item := model.ModComponent{Module: "Foo_Bar", Path: "js/thing"}
	locs := Definitions(ix, item, "view/frontend/templates/page.phtml")
	if len(locs) != 2 {
		t.Fatalf("locs = %v, want target and mixin", locs)
	}
	if locs[0].File != target || locs[1].File != mixin {
		t.Errorf("locs = %v, want [%s %s]", locs, target, mixin)
	}
}

func TestRelComponentDefinition(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	side := filepath.Join(dir, "sidecar.js")
	write(t, side)

	ix := index.New(nil)
	item := model.RelComponent{Path: "./sidecar", Dir: dir}
	locs := Definitions(ix, item, filepath.Join(dir, "page.js"))
	if len(locs) != 1 || locs[0].File != side {
		t.Errorf("locs = %v, want %q", locs, side)
	}
}

func TestMissingFilesResolveToNothing(t *testing.T) {
	t.Parallel()

	ix := index.New(nil)
	ix.AddWorkspace(t.TempDir())
	if locs := Definitions(ix, model.Component{Name: "absent"}, "web/js/page.js"); locs != nil {
		t.Errorf("locs = %v", locs)
	}
	item := model.Template{Module: "No_Module", Path: "a.phtml", Area: model.Frontend}
	if locs := Definitions(ix, item, "view/frontend/layout/x.xml"); locs != nil {
		t.Errorf("locs = %v", locs)
	}
}
