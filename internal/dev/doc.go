// Package dev implements the development-mode server internals: module URL
// resolution, the asset dependency graph, file watching, and hot-reload
// push over WebSocket.
//
// A Server satisfies the renderer's dev-server contract: it resolves client
// entries to browser-loadable URLs ("@pagekit/" virtual modules and /@fs
// project files), reports the assets a page's modules pull in, and rewrites
// served URLs in stack traces back to project paths. A Watcher feeds
// debounced file changes into ApplyChanges, which decides between a CSS hot
// swap and a full reload and broadcasts it through the ReloadServer.
package dev
