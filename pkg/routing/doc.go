// Package routing defines the router contract consumed by the rendering
// pipeline and provides the default filesystem router.
//
// The pipeline only depends on the contract: given a request, a router
// yields the matched page and its route parameters, or no match. The
// default implementation derives one route per page from its position in
// the pages directory, lets `.page.route` files override the pattern with
// a chi-style route string or a route function, and delegates pattern
// matching to chi's muxer.
package routing
