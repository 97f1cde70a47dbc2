package pagekit

import (
	"context"
	"strings"
	"testing"

	"github.com/pagekit-dev/pagekit/pkg/assets"
	"github.com/pagekit-dev/pagekit/pkg/pagefiles"
)

func testManifest() *assets.Manifest {
	m := assets.NewManifest()
	m.Set("/pages/_default.page.client", assets.ManifestEntry{
		File:    "assets/entry.abc123.js",
		IsEntry: true,
		CSS:     []string{"assets/entry.abc123.css"},
	})
	for _, src := range []string{"/pages/index.page", "/pages/movie.page", "/pages/_error.page"} {
		m.Set(src, assets.ManifestEntry{File: "assets/page.js"})
	}
	return m
}

func TestPrerenderPage(t *testing.T) {
	g := newTestGlobal(t, GlobalOptions{Files: testSiteFiles(), Manifest: testManifest()})

	pc := g.NewPrerenderContext("/movie/42", "/pages/movie")
	result, err := g.PrerenderPage(context.Background(), pc)
	if err != nil {
		t.Fatalf("PrerenderPage() error: %v", err)
	}
	for _, want := range []string{
		"page:/pages/movie",
		`src="/assets/entry.abc123.js"`,
		`href="/assets/entry.abc123.css"`,
	} {
		if !strings.Contains(result.DocumentHTML, want) {
			t.Errorf("DocumentHTML missing %q:\n%s", want, result.DocumentHTML)
		}
	}
	// No client routing: nothing to fetch on navigation.
	if result.PageContextSerialized != "" {
		t.Errorf("PageContextSerialized = %q, want empty without client routing", result.PageContextSerialized)
	}
}

func TestPrerenderPageClientRouting(t *testing.T) {
	files := testSiteFiles()
	files = append(files, pagefiles.NewLoaded("/pages/movie.page.server", pagefiles.FileTypePageServer,
		pagefiles.Exports{"clientRouting": true}))
	g := newTestGlobal(t, GlobalOptions{Files: files, Manifest: testManifest()})

	pc := g.NewPrerenderContext("/movie/42", "/pages/movie")
	result, err := g.PrerenderPage(context.Background(), pc)
	if err != nil {
		t.Fatalf("PrerenderPage() error: %v", err)
	}
	if !strings.Contains(result.PageContextSerialized, `"_pageId":"/pages/movie"`) {
		t.Errorf("PageContextSerialized = %q, want serialized context", result.PageContextSerialized)
	}
}

func TestPrerenderPageRequiresHTML(t *testing.T) {
	files := []*pagefiles.PageFile{
		pagefiles.NewLoaded("/pages/index.page", pagefiles.FileTypePage, pagefiles.Exports{}),
		pagefiles.NewLoaded("/pages/_default.page.server", pagefiles.FileTypePageServer,
			pagefiles.Exports{
				"render": HookFunc(func(ctx context.Context, pc *PageContext) (any, error) {
					return nil, nil
				}),
			}),
		pagefiles.NewLoaded("/pages/_default.page.client", pagefiles.FileTypePageClient, pagefiles.Exports{}),
	}
	m := assets.NewManifest()
	m.Set("/pages/_default.page.client", assets.ManifestEntry{File: "assets/entry.js", IsEntry: true})
	m.Set("/pages/index.page", assets.ManifestEntry{File: "assets/page.js"})
	g := newTestGlobal(t, GlobalOptions{Files: files, Manifest: m})

	pc := g.NewPrerenderContext("/", "/pages/index")
	_, err := g.PrerenderPage(context.Background(), pc)
	if !hasCode(err, "P007") {
		t.Fatalf("PrerenderPage() error = %v, want P007", err)
	}
}

func TestPrerenderPageRequiresPrerenderContext(t *testing.T) {
	g := newTestGlobal(t, GlobalOptions{Files: testSiteFiles(), Manifest: testManifest()})
	if _, err := g.PrerenderPage(context.Background(), &PageContext{URL: "/"}); err == nil {
		t.Fatal("PrerenderPage() with a live context should be a usage error")
	}
}

func TestRenderStatic404Page(t *testing.T) {
	g := newTestGlobal(t, GlobalOptions{Files: testSiteFiles(), Manifest: testManifest()})

	result, err := g.RenderStatic404Page(context.Background())
	if err != nil {
		t.Fatalf("RenderStatic404Page() error: %v", err)
	}
	if !strings.Contains(result.DocumentHTML, "page:/pages/_error") {
		t.Errorf("DocumentHTML should be the error page:\n%s", result.DocumentHTML)
	}
}

func TestRenderStatic404PageWithoutErrorPage(t *testing.T) {
	g := newTestGlobal(t, GlobalOptions{Files: testSiteFilesNoErrorPage(), Manifest: testManifest()})
	result, err := g.RenderStatic404Page(context.Background())
	if err != nil {
		t.Fatalf("RenderStatic404Page() error: %v", err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil without an error page", result)
	}
}

func TestLoadOnBeforePrerenderHook(t *testing.T) {
	hook := HookFunc(func(ctx context.Context, pc *PageContext) (any, error) { return nil, nil })

	t.Run("none defined", func(t *testing.T) {
		g := newTestGlobal(t, GlobalOptions{Files: testSiteFiles()})
		got, err := g.LoadOnBeforePrerenderHook(context.Background())
		if err != nil || got != nil {
			t.Errorf("got %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("one defined", func(t *testing.T) {
		files := append(testSiteFiles(),
			pagefiles.NewLoaded("/pages/admin/_default.page.server", pagefiles.FileTypePageServer,
				pagefiles.Exports{"onBeforePrerender": hook}))
		g := newTestGlobal(t, GlobalOptions{Files: files})
		got, err := g.LoadOnBeforePrerenderHook(context.Background())
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if got == nil || got.FilePath != "/pages/admin/_default.page.server" {
			t.Errorf("got %+v, want hook from /pages/admin/_default.page.server", got)
		}
	})

	t.Run("duplicates are a usage error", func(t *testing.T) {
		files := append(testSiteFiles(),
			pagefiles.NewLoaded("/pages/a/_default.page.server", pagefiles.FileTypePageServer,
				pagefiles.Exports{"onBeforePrerender": hook}),
			pagefiles.NewLoaded("/pages/b/_default.page.server", pagefiles.FileTypePageServer,
				pagefiles.Exports{"onBeforePrerender": hook}))
		g := newTestGlobal(t, GlobalOptions{Files: files})
		_, err := g.LoadOnBeforePrerenderHook(context.Background())
		if err == nil {
			t.Fatal("error = nil, want usage error for duplicate hooks")
		}
		for _, want := range []string{"/pages/a/_default.page.server", "/pages/b/_default.page.server"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q missing %q", err, want)
			}
		}
	})
}

func TestMarkContextProvided(t *testing.T) {
	files := testSiteFiles()
	g := newTestGlobal(t, GlobalOptions{Files: files, Manifest: testManifest()})

	pc := g.NewPrerenderContext("/movie/42", "/pages/movie")
	pc.MarkContextProvided(map[string]any{"pageProps": map[string]any{"title": "Provided"}})
	result, err := g.PrerenderPage(context.Background(), pc)
	if err != nil {
		t.Fatalf("PrerenderPage() error: %v", err)
	}
	// The default onBeforeRender would have set title to "Hello"; the
	// provided context suppresses it.
	if got, want := pc.Props["pageProps"].(map[string]any)["title"], "Provided"; got != want {
		t.Errorf("title = %v, want %v", got, want)
	}
	_ = result
}
