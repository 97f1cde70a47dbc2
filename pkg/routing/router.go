package routing

import "context"

// Request carries the routable view of a page context.
type Request struct {
	// URL is the normalized URL (origin- and base-path-stripped).
	URL string

	// Pathname is the URL path without the query string.
	Pathname string
}

// Result is the outcome of routing one request.
type Result struct {
	// PageID is the matched page, or "" when no route matched.
	PageID string

	// RouteParams holds the extracted route parameters. Never nil for a
	// match.
	RouteParams map[string]string
}

// Router matches a request to a page. Implementations may run user code
// (route functions) and may therefore return an error.
type Router interface {
	Route(ctx context.Context, req *Request) (*Result, error)
}
