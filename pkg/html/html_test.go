package html

import (
	"strings"
	"testing"

	"github.com/pagekit-dev/pagekit/pkg/assets"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello", "hello"},
		{"script tag", `<script>alert("x")</script>`, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;"},
		{"ampersand", "a&b", "a&amp;b"},
		{"single quote", "it's", "it&#39;s"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.input).String(); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDangerouslySkipEscape(t *testing.T) {
	s := DangerouslySkipEscape("<h1>raw</h1>")
	if s.String() != "<h1>raw</h1>" {
		t.Errorf("String() = %q, want raw HTML untouched", s.String())
	}
	if s.IsZero() {
		t.Error("IsZero() = true for a produced value, want false")
	}
}

func TestZeroSanitizedIsInvalid(t *testing.T) {
	var s Sanitized
	if !s.IsZero() {
		t.Error("IsZero() = false for the zero value, want true")
	}
}

func TestInjectf(t *testing.T) {
	got := Injectf("<title>%s</title><div>%s</div>",
		`a<b>`, DangerouslySkipEscape("<p>trusted</p>"))
	want := "<title>a&lt;b&gt;</title><div><p>trusted</p></div>"
	if got.String() != want {
		t.Errorf("Injectf() = %q, want %q", got.String(), want)
	}
}

func TestInjectAssets(t *testing.T) {
	document := "<html><head><title>t</title></head><body><h1>About</h1></body></html>"
	pageAssets := []assets.PageAsset{
		{Src: "/main.css", AssetType: assets.AssetStyle, MediaType: "text/css"},
		{Src: "/font.woff2", AssetType: assets.AssetPreload, MediaType: "font/woff2", PreloadType: assets.PreloadFont},
		{Src: "/entry.js", AssetType: assets.AssetScript, MediaType: "text/javascript"},
	}

	got := InjectAssets(document, pageAssets, `{"pageContext":{"_pageId":"/pages/about"}}`)

	checks := []string{
		`<link rel="stylesheet" type="text/css" href="/main.css"></head>`,
		`<link rel="preload" href="/font.woff2" as="font" type="font/woff2" crossorigin>`,
		`<script type="module" src="/entry.js"></script>`,
		`<script id="pagekit_pageContext" type="application/json">{"pageContext":{"_pageId":"/pages/about"}}</script></body>`,
		"<h1>About</h1>",
	}
	for _, want := range checks {
		if !strings.Contains(got, want) {
			t.Errorf("InjectAssets() missing %q in:\n%s", want, got)
		}
	}
}

func TestInjectAssetsNoHeadOrBody(t *testing.T) {
	pageAssets := []assets.PageAsset{
		{Src: "/main.css", AssetType: assets.AssetStyle},
		{Src: "/entry.js", AssetType: assets.AssetScript},
	}
	got := InjectAssets("<h1>bare</h1>", pageAssets, "")
	if !strings.HasPrefix(got, `<link rel="stylesheet"`) {
		t.Errorf("head tags should be prepended, got %q", got)
	}
	if !strings.HasSuffix(got, `</script>`) {
		t.Errorf("body tags should be appended, got %q", got)
	}
}

func TestInjectAssetsEmptyContext(t *testing.T) {
	got := InjectAssets("<html><body></body></html>", nil, "")
	if strings.Contains(got, PageContextScriptID) {
		t.Error("no page context script should be injected for an empty payload")
	}
}
