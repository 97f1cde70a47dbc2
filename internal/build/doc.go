// Package build pre-renders a site to static files.
//
// The Prerenderer enumerates the site's pages, determines the URLs each
// page should be rendered at (its static route, or the URLs its prerender
// export provides), runs the build-wide onBeforePrerender hook once, and
// writes an HTML document per URL into the output directory. Pages that
// use the client router additionally get a `.pageContext.json` next to
// their document, and the error page is rendered to `404.html`.
package build
