package pagekit

import (
	"io"
	"net/http"
)

// App serves pages over HTTP: every request goes through the rendering
// pipeline, and requests the pipeline declines (nil response) fall through
// to the next handler.
type App struct {
	global *GlobalContext
	next   http.Handler
}

// AppOption configures an App.
type AppOption func(*App)

// WithNextHandler sets the handler for requests no page claims, typically
// a static file server. Defaults to a plain 404.
func WithNextHandler(h http.Handler) AppOption {
	return func(a *App) { a.next = h }
}

// NewApp wraps a GlobalContext into an http.Handler.
func NewApp(global *GlobalContext, opts ...AppOption) *App {
	a := &App{
		global: global,
		next:   http.NotFoundHandler(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, err := a.global.RenderPage(r.Context(), &PageContext{URL: r.URL.RequestURI()})
	if err != nil {
		// Argument errors only; the pipeline guards everything else.
		a.global.Logger.Error("render request failed", "url", r.URL.RequestURI(), "error", err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if pc.HTTPResponse == nil {
		a.next.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", pc.HTTPResponse.ContentType+"; charset=utf-8")
	w.WriteHeader(pc.HTTPResponse.StatusCode)
	io.WriteString(w, pc.HTTPResponse.Body)
}
