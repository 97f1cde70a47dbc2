// Package pagefiles models the physical files a page is composed of and
// selects the files that apply to a given page.
//
// A page is a logical route-addressable unit composed of cooperating files:
// the page definition, server hooks, client hooks, and an optional route
// file. Shared `_default.*` files apply to every page that has no
// page-specific override; the closest default by filesystem proximity wins.
// Export aggregation merges the named exports of all contributing files
// into a single table with full provenance per export.
package pagefiles
