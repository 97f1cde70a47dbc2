package html

import (
	"strings"

	"github.com/pagekit-dev/pagekit/pkg/assets"
)

// PageContextScriptID is the id of the script tag carrying the serialized
// page context in the initial document. The client reads it back during
// hydration.
const PageContextScriptID = "pagekit_pageContext"

// InjectAssets inserts the planned asset tags into a rendered document:
// stylesheets and preload hints into <head>, script entries and the
// serialized page context (when non-empty) at the end of <body>.
//
// Documents without a <head> or <body> still work: head tags fall back to
// the start of the document and body tags to its end.
func InjectAssets(document string, pageAssets []assets.PageAsset, pageContextSerialized string) string {
	var head, body strings.Builder

	for _, asset := range pageAssets {
		switch asset.AssetType {
		case assets.AssetStyle:
			head.WriteString(`<link rel="stylesheet" type="text/css" href="` + escapeAttr(asset.Src) + `">`)
		case assets.AssetScript:
			body.WriteString(`<script type="module" src="` + escapeAttr(asset.Src) + `"></script>`)
		case assets.AssetPreload:
			head.WriteString(preloadTag(asset))
		}
	}

	if pageContextSerialized != "" {
		body.WriteString(`<script id="` + PageContextScriptID + `" type="application/json">`)
		// The serializer escapes "<" so the payload cannot close the tag.
		body.WriteString(pageContextSerialized)
		body.WriteString(`</script>`)
	}

	document = injectAtHeadEnd(document, head.String())
	document = injectAtBodyEnd(document, body.String())
	return document
}

func preloadTag(asset assets.PageAsset) string {
	var b strings.Builder
	b.WriteString(`<link rel="preload" href="` + escapeAttr(asset.Src) + `"`)
	if asset.PreloadType != "" {
		b.WriteString(` as="` + escapeAttr(string(asset.PreloadType)) + `"`)
	}
	if asset.MediaType != "" {
		b.WriteString(` type="` + escapeAttr(asset.MediaType) + `"`)
	}
	// Fonts require crossorigin even for same-origin requests.
	if asset.PreloadType == assets.PreloadFont {
		b.WriteString(` crossorigin`)
	}
	b.WriteString(`>`)
	return b.String()
}

func injectAtHeadEnd(document, tags string) string {
	if tags == "" {
		return document
	}
	if i := strings.Index(document, "</head>"); i >= 0 {
		return document[:i] + tags + document[i:]
	}
	if i := strings.Index(document, "<body"); i >= 0 {
		return document[:i] + tags + document[i:]
	}
	return tags + document
}

func injectAtBodyEnd(document, tags string) string {
	if tags == "" {
		return document
	}
	if i := strings.Index(document, "</body>"); i >= 0 {
		return document[:i] + tags + document[i:]
	}
	return document + tags
}
