package assets

import (
	"context"
	"strings"
	"testing"
)

func TestInferMediaType(t *testing.T) {
	tests := []struct {
		href        string
		mediaType   string
		preloadType PreloadType
		known       bool
	}{
		{"/main.css", "text/css", PreloadStyle, true},
		{"/app.js", "text/javascript", PreloadScript, true},
		{"/logo.svg", "image/svg+xml", PreloadImage, true},
		{"/photo.JPEG", "image/jpeg", PreloadImage, true},
		{"/font.woff2", "font/woff2", PreloadFont, true},
		{"/styles.css?direct", "text/css", PreloadStyle, true},
		{"/data.bin", "", "", false},
		{"/no-extension", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			mt, known := InferMediaType(tt.href)
			if known != tt.known {
				t.Fatalf("InferMediaType(%q) known = %v, want %v", tt.href, known, tt.known)
			}
			if mt.MediaType != tt.mediaType || mt.PreloadType != tt.preloadType {
				t.Errorf("InferMediaType(%q) = %+v, want {%s %s}", tt.href, mt, tt.mediaType, tt.preloadType)
			}
		})
	}
}

func TestSortForHTTPPush(t *testing.T) {
	pageAssets := []PageAsset{
		{Src: "/entry.js", AssetType: AssetScript},
		{Src: "/unknown.bin", AssetType: AssetPreload},
		{Src: "/img.png", AssetType: AssetPreload, PreloadType: PreloadImage},
		{Src: "/font.woff2", AssetType: AssetPreload, PreloadType: PreloadFont},
		{Src: "/lazy.js", AssetType: AssetPreload, PreloadType: PreloadScript},
		{Src: "/main.css", AssetType: AssetStyle},
	}

	sortForHTTPPush(pageAssets)

	want := []string{"/main.css", "/font.woff2", "/img.png", "/entry.js", "/lazy.js", "/unknown.bin"}
	for i, asset := range pageAssets {
		if asset.Src != want[i] {
			t.Errorf("position %d = %q, want %q", i, asset.Src, want[i])
		}
	}
}

func TestSortIsStable(t *testing.T) {
	pageAssets := []PageAsset{
		{Src: "/a.css", AssetType: AssetStyle},
		{Src: "/b.css", AssetType: AssetStyle},
		{Src: "/c.css", AssetType: AssetStyle},
	}
	sortForHTTPPush(pageAssets)
	for i, want := range []string{"/a.css", "/b.css", "/c.css"} {
		if pageAssets[i].Src != want {
			t.Errorf("position %d = %q, want %q (stable order)", i, pageAssets[i].Src, want)
		}
	}
}

type fakeDevServer struct {
	assets []string
}

func (f *fakeDevServer) ResolveClientEntry(entry string) (string, error) {
	return "/@fs/project" + entry, nil
}

func (f *fakeDevServer) CollectAssets(ctx context.Context, dependencies []string) ([]string, error) {
	return f.assets, nil
}

func TestPlanDev(t *testing.T) {
	p := &Planner{
		BaseURL:   "/",
		DevServer: &fakeDevServer{assets: []string{"/pages/about.css", "/pages/inlined.css?inline", "/pages/logo.png"}},
	}

	got, err := p.Plan(context.Background(), []string{"/pages/about.page.go"}, []string{"/entry-client.js"}, false)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	srcs := make([]string, len(got))
	for i, a := range got {
		srcs[i] = a.Src
	}

	// The ?inline stylesheet is dropped; the regular one gets ?direct.
	want := []string{"/pages/about.css?direct", "/pages/logo.png", "/@fs/project/entry-client.js"}
	if len(srcs) != len(want) {
		t.Fatalf("Plan() = %v, want %v", srcs, want)
	}
	for i := range want {
		if srcs[i] != want[i] {
			t.Errorf("Plan()[%d] = %q, want %q", i, srcs[i], want[i])
		}
	}
}

func TestPlanProd(t *testing.T) {
	m := NewManifest()
	m.Set("/entry-client.js", ManifestEntry{File: "assets/entry.abc123.js", IsEntry: true})
	m.Set("/pages/about.page.go", ManifestEntry{
		File:    "assets/about.def456.js",
		Imports: []string{"/shared/layout.go"},
		CSS:     []string{"assets/about.789.css"},
	})
	m.Set("/shared/layout.go", ManifestEntry{
		File:   "assets/layout.fff000.js",
		CSS:    []string{"assets/layout.111.css"},
		Assets: []string{"assets/bg.222.png"},
	})

	p := &Planner{BaseURL: "/", IsProduction: true, Manifest: m}
	got, err := p.Plan(context.Background(), []string{"/pages/about.page.go"}, []string{"/entry-client.js"}, false)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	srcs := make([]string, len(got))
	for i, a := range got {
		srcs[i] = a.Src
	}
	want := []string{
		"/assets/about.789.css",
		"/assets/layout.111.css",
		"/assets/bg.222.png",
		"/assets/entry.abc123.js",
	}
	if len(srcs) != len(want) {
		t.Fatalf("Plan() = %v, want %v", srcs, want)
	}
	for i := range want {
		if srcs[i] != want[i] {
			t.Errorf("Plan()[%d] = %q, want %q", i, srcs[i], want[i])
		}
	}
}

func TestPlanProdMissingEntry(t *testing.T) {
	p := &Planner{IsProduction: true, Manifest: NewManifest()}
	_, err := p.Plan(context.Background(), nil, []string{"/entry-client.js"}, false)
	if err == nil {
		t.Fatal("Plan() expected error for missing manifest entry")
	}
	if !strings.Contains(err.Error(), "entry-client.js") {
		t.Errorf("error %q should name the missing entry", err)
	}
}

func TestPlanProdNonEntryPoint(t *testing.T) {
	m := NewManifest()
	m.Set("/entry-client.js", ManifestEntry{File: "assets/entry.js"})
	p := &Planner{IsProduction: true, Manifest: m}
	_, err := p.Plan(context.Background(), nil, []string{"/entry-client.js"}, false)
	if err == nil {
		t.Fatal("Plan() expected error for non-entry manifest entry")
	}
}

func TestBasePrefixing(t *testing.T) {
	m := NewManifest()
	m.Set("/entry-client.js", ManifestEntry{File: "assets/entry.abc.js", IsEntry: true})
	p := &Planner{BaseURL: "/app/", IsProduction: true, Manifest: m}
	got, err := p.Plan(context.Background(), nil, []string{"/entry-client.js"}, false)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if got[0].Src != "/app/assets/entry.abc.js" {
		t.Errorf("Src = %q, want %q", got[0].Src, "/app/assets/entry.abc.js")
	}
}

func TestBaseAssetsOverride(t *testing.T) {
	m := NewManifest()
	m.Set("/entry-client.js", ManifestEntry{File: "assets/entry.abc.js", IsEntry: true})
	p := &Planner{BaseURL: "/app/", BaseAssets: "https://cdn.example.com/", IsProduction: true, Manifest: m}
	got, err := p.Plan(context.Background(), nil, []string{"/entry-client.js"}, false)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if got[0].Src != "https://cdn.example.com/assets/entry.abc.js" {
		t.Errorf("Src = %q, want CDN-prefixed URL", got[0].Src)
	}
}
