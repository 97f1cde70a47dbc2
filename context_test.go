package pagekit

import (
	"testing"
)

func TestMergeProps(t *testing.T) {
	pc := &PageContext{}

	pc.mergeProps(map[string]any{"a": 1})
	pc.mergeProps(map[string]any{"b": 2})
	pc.mergeProps(nil)

	if got, want := pc.Props["a"], 1; got != want {
		t.Errorf("Props[a] = %v, want %v", got, want)
	}
	if got, want := pc.Props["b"], 2; got != want {
		t.Errorf("Props[b] = %v, want %v", got, want)
	}

	// Later stages may overwrite user keys.
	pc.mergeProps(map[string]any{"a": 3})
	if got, want := pc.Props["a"], 3; got != want {
		t.Errorf("Props[a] = %v, want %v", got, want)
	}
}

func TestPageExportsLegacyView(t *testing.T) {
	g := newTestGlobal(t, GlobalOptions{Files: testSiteFiles()})
	pc := renderURL(t, g, "/movie/1")

	// The legacy view only covers page-definition files.
	legacy := pc.PageExports()
	if got, want := legacy["Page"], "MovieView"; got != want {
		t.Errorf("PageExports()[Page] = %v, want %v", got, want)
	}
	if _, ok := legacy["render"]; ok {
		t.Error("PageExports() should not expose server-file exports")
	}

	if got, want := pc.Exports["Page"], "MovieView"; got != want {
		t.Errorf("Exports[Page] = %v, want %v", got, want)
	}
}
