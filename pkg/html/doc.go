// Package html provides the sanitized-HTML contract between user render
// hooks and the rendering core.
//
// A render hook must not return a plain Go string: plain strings may carry
// unescaped user input. Instead it returns a Sanitized value, produced
// either by escaping (Escape, Injectf) or by explicitly vouching for a
// trusted string (DangerouslySkipEscape):
//
//	func render(pc *pagekit.PageContext) (any, error) {
//	    title := pc.Props["title"].(string)
//	    return html.Injectf("<html><head><title>%s</title></head><body>%s</body></html>",
//	        title, html.DangerouslySkipEscape(appHTML)), nil
//	}
//
// The package also injects the planned asset tags and the serialized page
// context into a rendered document.
package html
