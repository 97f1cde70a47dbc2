// Package errors provides structured errors for the Pagekit rendering core.
//
// Errors carry a code, a category, and optional fix suggestions with
// documentation links. Three categories matter at runtime boundaries:
//
//   - CategoryUsage: programmer misuse (bad hook return shape, missing
//     required page files, malformed RenderPage arguments). Fatal at the
//     call site and never retried.
//   - CategoryUserCode: a user-supplied hook threw. Caught at the routing
//     and rendering boundaries, logged once, converted to a best-effort
//     error response.
//   - CategoryTransport: fetch failures, wrong content types, missing
//     error pages. Degrade to the most conservative safe response.
//
// Use IsUsage and IsFetch to classify errors at catch sites.
package errors
