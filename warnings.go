package pagekit

import (
	"sync"
)

// warned tracks one-time warnings. Warnings are advisory: they never alter
// control flow, and repeating them every request would drown the log.
var (
	warnedMu sync.Mutex
	warned   = make(map[string]bool)
)

func warnOnce(key string) bool {
	warnedMu.Lock()
	defer warnedMu.Unlock()
	if warned[key] {
		return false
	}
	warned[key] = true
	return true
}

// warnMissingErrorPage reminds the developer to add an `_error.page` file.
// Development only.
func (g *GlobalContext) warnMissingErrorPage() {
	if g.IsProduction {
		return
	}
	if !warnOnce("missing-error-page") {
		return
	}
	g.Logger.Warn("no error page found; create one to report 404 and 500 pages to your users",
		"docs", "https://pagekit.dev/docs/error-page")
}

// warnUnmatchedRoute logs a URL no route claimed, listing the registered
// routes. Development only, once per URL.
func (g *GlobalContext) warnUnmatchedRoute(urlNormalized string) {
	if g.IsProduction {
		return
	}
	if !warnOnce("unmatched-route:" + urlNormalized) {
		return
	}
	var routes []string
	for _, route := range g.Routes {
		if route.Func != nil {
			routes = append(routes, route.PageID+" (route function)")
			continue
		}
		routes = append(routes, route.Pattern+" -> "+route.PageID)
	}
	g.Logger.Warn("URL matched no route", "url", urlNormalized, "routes", routes)
}
