package routing

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// RouteFunc is a user-supplied route: it inspects the URL and either
// claims it with extracted parameters or declines.
type RouteFunc func(url string) (params map[string]string, ok bool, err error)

// PageRoute binds one page to its route definition.
type PageRoute struct {
	// PageID is the page this route leads to.
	PageID string

	// Pattern is a chi-style route string ("/movie/{id}"). Empty when
	// Func is set.
	Pattern string

	// Func is a user route function taking precedence over patterns.
	Func RouteFunc

	// IsFilesystem marks a pattern derived from the file's location
	// rather than declared in a `.page.route` file.
	IsFilesystem bool
}

// FilesystemRoute derives the route pattern of a page from its position
// under the pages root: "/pages/movie/index" becomes "/movie".
func FilesystemRoute(pageID, pagesRoot string) string {
	route := strings.TrimPrefix(pageID, strings.TrimSuffix(pagesRoot, "/"))
	route = strings.TrimSuffix(route, "/index")
	if route == "" {
		route = "/"
	}
	return route
}

// FilesystemRouter is the default Router: route functions first, then
// chi pattern matching over declared route strings and filesystem routes.
type FilesystemRouter struct {
	routes        []PageRoute
	funcs         []PageRoute
	mux           *chi.Mux
	patternToPage map[string]string
}

var matchAll = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

// New builds a FilesystemRouter from the given page routes.
func New(routes []PageRoute) (*FilesystemRouter, error) {
	r := &FilesystemRouter{
		routes:        routes,
		mux:           chi.NewRouter(),
		patternToPage: make(map[string]string),
	}
	for _, route := range routes {
		if route.Func != nil {
			r.funcs = append(r.funcs, route)
			continue
		}
		if route.Pattern == "" || !strings.HasPrefix(route.Pattern, "/") {
			return nil, errors.Usage("the route of page %s should start with \"/\", got %q", route.PageID, route.Pattern)
		}
		if existing, ok := r.patternToPage[route.Pattern]; ok {
			return nil, errors.Usage("pages %s and %s both route to %q", existing, route.PageID, route.Pattern)
		}
		r.patternToPage[route.Pattern] = route.PageID
		r.mux.Get(route.Pattern, matchAll)
	}
	return r, nil
}

// Route implements Router.
func (r *FilesystemRouter) Route(ctx context.Context, req *Request) (*Result, error) {
	// Route functions take precedence over pattern matching.
	for _, route := range r.funcs {
		params, ok, err := route.Func(req.URL)
		if err != nil {
			return nil, err
		}
		if ok {
			if params == nil {
				params = make(map[string]string)
			}
			return &Result{PageID: route.PageID, RouteParams: params}, nil
		}
	}

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, req.Pathname) {
		return &Result{}, nil
	}
	pageID, ok := r.patternToPage[rctx.RoutePattern()]
	if !ok {
		return &Result{}, nil
	}
	params := make(map[string]string)
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return &Result{PageID: pageID, RouteParams: params}, nil
}

// Routes returns the registered routes sorted by pattern, for diagnostics
// such as the dev-mode unmatched-route warning.
func (r *FilesystemRouter) Routes() []PageRoute {
	out := make([]PageRoute, len(r.routes))
	copy(out, r.routes)
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}
