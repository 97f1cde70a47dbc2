package pagekit

import (
	"context"
	"strings"
	"testing"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/html"
	"github.com/pagekit-dev/pagekit/pkg/pagefiles"
)

func TestFindHook(t *testing.T) {
	all := pagefiles.ExportsAll{
		"onBeforeRender": {
			{Value: HookFunc(func(ctx context.Context, pc *PageContext) (any, error) { return nil, nil }),
				FilePath: "/pages/a.page.server"},
			{Value: HookFunc(func(ctx context.Context, pc *PageContext) (any, error) { return nil, nil }),
				FilePath: "/pages/_default.page.server"},
		},
	}

	h, err := findHook(all, "onBeforeRender")
	if err != nil {
		t.Fatalf("findHook() error: %v", err)
	}
	// Page-specific contribution wins.
	if got, want := h.filePath, "/pages/a.page.server"; got != want {
		t.Errorf("filePath = %q, want %q", got, want)
	}

	h, err = findHook(all, "render")
	if err != nil || h != nil {
		t.Errorf("findHook(missing) = %v, %v; want nil, nil", h, err)
	}
}

func TestFindHookWrongType(t *testing.T) {
	all := pagefiles.ExportsAll{
		"render": {{Value: 42, FilePath: "/pages/a.page.server"}},
	}
	_, err := findHook(all, "render")
	if !errors.IsUsage(err) {
		t.Fatalf("findHook(non-func) error = %v, want usage error", err)
	}
	if !strings.Contains(err.Error(), "/pages/a.page.server") {
		t.Errorf("error should name the offending file: %v", err)
	}
}

func TestHookPanicRecovered(t *testing.T) {
	h := &hook{
		name:     "onBeforeRender",
		filePath: "/pages/a.page.server",
		fn: func(ctx context.Context, pc *PageContext) (any, error) {
			panic("nil map write")
		},
	}
	_, err := h.call(context.Background(), &PageContext{})
	if err == nil {
		t.Fatal("call() error = nil, want recovered panic")
	}
	if errors.IsUsage(err) {
		t.Error("a panicking hook is a user-code error, not a usage error")
	}
	for _, want := range []string{"panicked", "nil map write", "/pages/a.page.server"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestAssertHookResult(t *testing.T) {
	h := &hook{name: "onBeforeRender", filePath: "/pages/a.page.server"}

	t.Run("nil result", func(t *testing.T) {
		m, err := assertHookResult(h, nil, []string{"pageContext"})
		if m != nil || err != nil {
			t.Errorf("got %v, %v; want nil, nil", m, err)
		}
	})

	t.Run("allowed keys", func(t *testing.T) {
		m, err := assertHookResult(h, map[string]any{"pageContext": map[string]any{}}, []string{"pageContext"})
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if _, ok := m["pageContext"]; !ok {
			t.Error("pageContext key missing from result")
		}
	})

	t.Run("unexpected key names offender and allowed set", func(t *testing.T) {
		_, err := assertHookResult(h, map[string]any{"pageContxt": map[string]any{}}, []string{"pageContext"})
		if !errors.IsUsage(err) {
			t.Fatalf("error = %v, want usage error", err)
		}
		for _, want := range []string{"pageContxt", "pageContext", "onBeforeRender"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q missing %q", err, want)
			}
		}
	})

	t.Run("non-map result", func(t *testing.T) {
		_, err := assertHookResult(h, "nope", []string{"pageContext"})
		if !errors.IsUsage(err) {
			t.Errorf("error = %v, want usage error", err)
		}
	})
}

func TestAssertRenderResult(t *testing.T) {
	h := &hook{name: "render", filePath: "/pages/_default.page.server"}

	t.Run("bare sanitized value", func(t *testing.T) {
		pc := &PageContext{}
		got, err := assertRenderResult(h, pc, html.DangerouslySkipEscape("<html></html>"))
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if got.documentHTML.String() != "<html></html>" {
			t.Errorf("documentHTML = %q", got.documentHTML.String())
		}
	})

	t.Run("map shape with pageContext additions", func(t *testing.T) {
		pc := &PageContext{}
		got, err := assertRenderResult(h, pc, map[string]any{
			"documentHtml": html.DangerouslySkipEscape("<html></html>"),
			"pageContext":  map[string]any{"redirectTo": "/login"},
		})
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if got.documentHTML.IsZero() {
			t.Error("documentHTML is zero, want document")
		}
		if got, want := pc.Props["redirectTo"], "/login"; got != want {
			t.Errorf("Props[redirectTo] = %v, want %v", got, want)
		}
	})

	t.Run("plain string is forbidden", func(t *testing.T) {
		_, err := assertRenderResult(h, &PageContext{}, "<html></html>")
		if !hasCode(err, "P006") {
			t.Errorf("error = %v, want P006", err)
		}
	})

	t.Run("plain string documentHtml is forbidden", func(t *testing.T) {
		_, err := assertRenderResult(h, &PageContext{}, map[string]any{"documentHtml": "<html></html>"})
		if !hasCode(err, "P006") {
			t.Errorf("error = %v, want P006", err)
		}
	})

	t.Run("nil means decline", func(t *testing.T) {
		got, err := assertRenderResult(h, &PageContext{}, nil)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if !got.documentHTML.IsZero() {
			t.Error("documentHTML should be zero when the hook declines")
		}
	})
}

func TestBuildClientContext(t *testing.T) {
	pc := &PageContext{
		pageID:       "/pages/movie",
		Props:        map[string]any{"pageProps": map[string]any{"title": "T"}, "secret": "hidden"},
		passToClient: []string{"pageProps", "routeParams"},
	}
	pc.buildClientContext()

	if got, want := pc.clientContext["_pageId"], "/pages/movie"; got != want {
		t.Errorf("_pageId = %v, want %v", got, want)
	}
	if _, ok := pc.clientContext["pageProps"]; !ok {
		t.Error("whitelisted pageProps missing from client context")
	}
	if _, ok := pc.clientContext["secret"]; ok {
		t.Error("non-whitelisted prop leaked to client context")
	}
	// Whitelisted but unset props cross the wire as the undefined sentinel
	// so the client sees the configured shape.
	serialized, err := pc.serializeClientContext()
	if err != nil {
		t.Fatalf("serializeClientContext() error: %v", err)
	}
	if !strings.Contains(serialized, `"routeParams":"!undefined"`) {
		t.Errorf("serialized context missing undefined marker: %s", serialized)
	}
}
