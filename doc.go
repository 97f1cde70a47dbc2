// Package pagekit renders pages server-side and serializes page context
// for client-side navigation.
//
// Pagekit is the rendering core of a web meta-framework: given an incoming
// URL it routes to a page, loads the page's files, runs the user's
// lifecycle hooks (onBeforeRender, render), injects client assets, and
// produces either an HTML document or a serialized page-context payload.
//
// The entry point is a GlobalContext built once at startup from the
// discovered page files:
//
//	global, err := pagekit.NewGlobalContext(ctx, pagekit.GlobalOptions{Files: files, Config: cfg})
//	...
//	pc, err := global.RenderPage(ctx, &pagekit.PageContext{URL: r.URL.RequestURI()})
//	if pc.HTTPResponse == nil {
//	    // Not handled by pagekit: pass through to static files or a 404.
//	}
//
// For static builds, PrerenderPage produces the HTML and serialized
// context of one page without a live request.
package pagekit
