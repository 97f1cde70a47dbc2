package pagekit

import (
	"context"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/pagefiles"
)

// PrerenderResult is one pre-rendered page, ready to be written to disk.
type PrerenderResult struct {
	// DocumentHTML is the complete HTML document, assets injected.
	DocumentHTML string

	// PageContextSerialized is the `.pageContext.json` payload. Empty when
	// the page does not use the client router and therefore never fetches
	// its context.
	PageContextSerialized string
}

// NewPrerenderContext builds a page context for pre-rendering. The page is
// already known (pre-rendering enumerates pages instead of routing URLs).
func (g *GlobalContext) NewPrerenderContext(url, pageID string) *PageContext {
	return &PageContext{
		URL:            url,
		URLNormalized:  url,
		global:         g,
		pageID:         pageID,
		isPreRendering: true,
	}
}

// MarkContextProvided records that an onBeforePrerender hook already
// supplied this page's context, suppressing the per-page onBeforeRender
// run.
func (pc *PageContext) MarkContextProvided(props map[string]any) {
	pc.contextAlreadyProvided = true
	pc.mergeProps(props)
}

// PrerenderPage renders one page to static HTML. Unlike live rendering
// there is no skipping: the render() hook must produce a document.
// Errors are returned to the caller; a pre-render build fails loudly.
func (g *GlobalContext) PrerenderPage(ctx context.Context, pc *PageContext) (*PrerenderResult, error) {
	if pc == nil || !pc.isPreRendering {
		return nil, errors.Usage("PrerenderPage() requires a page context built with NewPrerenderContext()")
	}
	pc.global = g

	if err := g.renderPageForID(ctx, pc, 200); err != nil {
		return nil, err
	}
	if pc.HTTPResponse == nil {
		return nil, errors.New("P007").
			WithDetail("The render() hook returned no documentHtml while pre-rendering page " + pc.pageID + ".")
	}

	result := &PrerenderResult{DocumentHTML: pc.HTTPResponse.Body}
	if usesClientRouter(pc) {
		serialized, err := pc.serializeClientContext()
		if err != nil {
			return nil, err
		}
		result.PageContextSerialized = serialized
	}
	return result, nil
}

// usesClientRouter reports whether the page opts into client-side routing
// and will therefore fetch `.pageContext.json` on navigation.
func usesClientRouter(pc *PageContext) bool {
	if pc.usesClientRouter {
		return true
	}
	v, ok := pc.Exports["clientRouting"].(bool)
	return ok && v
}

// RenderStatic404Page pre-renders the error page at a placeholder URL for
// `dist/client/404.html`. Returns nil when no error page exists.
func (g *GlobalContext) RenderStatic404Page(ctx context.Context) (*PrerenderResult, error) {
	if g.errorPageID == "" {
		return nil, nil
	}
	pc := g.NewPrerenderContext("/fake-404-url", g.errorPageID)
	pc.Is404 = true
	return g.PrerenderPage(ctx, pc)
}

// OnBeforePrerenderHook is the build-wide prerender hook with provenance.
type OnBeforePrerenderHook struct {
	FilePath string
	Func     HookFunc
}

// LoadOnBeforePrerenderHook finds the build-wide onBeforePrerender hook
// among the shared default server files. At most one may exist across the
// build; duplicates are a usage error. Returns nil when none is defined.
func (g *GlobalContext) LoadOnBeforePrerenderHook(ctx context.Context) (*OnBeforePrerenderHook, error) {
	var found *OnBeforePrerenderHook
	for _, f := range pagefiles.FindDefaultFiles(g.Files.ByType(pagefiles.FileTypePageServer)) {
		exports, err := f.Load(ctx)
		if err != nil {
			return nil, errors.UserCode(err)
		}
		v, ok := exports["onBeforePrerender"]
		if !ok {
			continue
		}
		fn, ok := asHookFunc(v)
		if !ok {
			return nil, errors.Usage(
				"the onBeforePrerender() hook defined by %s should be a pagekit.HookFunc, got %T", f.FilePath, v)
		}
		if found != nil {
			return nil, errors.Usage(
				"onBeforePrerender() is defined by both %s and %s, but only one onBeforePrerender() hook is allowed per build",
				found.FilePath, f.FilePath)
		}
		found = &OnBeforePrerenderHook{FilePath: f.FilePath, Func: fn}
	}
	return found, nil
}

// PageExportsFor loads and aggregates the page- and server-file exports of
// one page, without requiring a client file. Used by the pre-render build
// to read prerender() and doNotPrerender declarations.
func (g *GlobalContext) PageExportsFor(ctx context.Context, pageID string) (*pagefiles.PageExports, error) {
	pageFile := pagefiles.FindPageFile(g.Files.ByType(pagefiles.FileTypePage), pageID)
	pageDefault := pagefiles.FindDefaultFile(g.Files.ByType(pagefiles.FileTypePage), pageID)
	serverFile := pagefiles.FindPageFile(g.Files.ByType(pagefiles.FileTypePageServer), pageID)
	serverDefault := pagefiles.FindDefaultFile(g.Files.ByType(pagefiles.FileTypePageServer), pageID)

	var files []*pagefiles.PageFile
	for _, f := range []*pagefiles.PageFile{pageFile, serverFile, pageDefault, serverDefault} {
		if f == nil {
			continue
		}
		if _, err := f.Load(ctx); err != nil {
			return nil, errors.UserCode(err)
		}
		files = append(files, f)
	}
	return pagefiles.GetExports(files)
}
