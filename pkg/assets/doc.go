// Package assets plans the ordered list of client assets for a page.
//
// In development, dependencies resolve to live dev-server module URLs and
// the browser fetches them lazily. In production they resolve through the
// build manifest, including transitive static imports. The resulting assets
// are sorted by HTTP early-push priority and base-path-prefixed.
package assets
