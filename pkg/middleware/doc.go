// Package middleware provides HTTP middleware for pagekit applications:
// Prometheus metrics and OpenTelemetry tracing around page rendering.
//
// Both middlewares wrap any http.Handler, typically a *pagekit.App:
//
//	app := pagekit.NewApp(global)
//	handler := middleware.Prometheus()(middleware.OpenTelemetry()(app))
//	http.ListenAndServe(":3000", handler)
package middleware
