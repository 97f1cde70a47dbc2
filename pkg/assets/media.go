package assets

import "strings"

// PreloadType categorizes an asset for <link rel="preload"> hints.
type PreloadType string

const (
	PreloadScript PreloadType = "script"
	PreloadStyle  PreloadType = "style"
	PreloadImage  PreloadType = "image"
	PreloadFont   PreloadType = "font"
)

// MediaType pairs a canonical MIME type with its preload category.
type MediaType struct {
	MediaType   string
	PreloadType PreloadType
}

// mediaTypes maps file extensions to their media classification.
var mediaTypes = map[string]MediaType{
	".css":   {MediaType: "text/css", PreloadType: PreloadStyle},
	".scss":  {MediaType: "text/css", PreloadType: PreloadStyle},
	".sass":  {MediaType: "text/css", PreloadType: PreloadStyle},
	".less":  {MediaType: "text/css", PreloadType: PreloadStyle},
	".styl":  {MediaType: "text/css", PreloadType: PreloadStyle},
	".js":    {MediaType: "text/javascript", PreloadType: PreloadScript},
	".mjs":   {MediaType: "text/javascript", PreloadType: PreloadScript},
	".png":   {MediaType: "image/png", PreloadType: PreloadImage},
	".webp":  {MediaType: "image/webp", PreloadType: PreloadImage},
	".jpg":   {MediaType: "image/jpeg", PreloadType: PreloadImage},
	".jpeg":  {MediaType: "image/jpeg", PreloadType: PreloadImage},
	".gif":   {MediaType: "image/gif", PreloadType: PreloadImage},
	".svg":   {MediaType: "image/svg+xml", PreloadType: PreloadImage},
	".ttf":   {MediaType: "font/ttf", PreloadType: PreloadFont},
	".woff":  {MediaType: "font/woff", PreloadType: PreloadFont},
	".woff2": {MediaType: "font/woff2", PreloadType: PreloadFont},
}

// InferMediaType classifies an asset URL by file extension. The second
// return value is false for unknown extensions; callers treat those as a
// generic preload asset with no media type.
func InferMediaType(href string) (MediaType, bool) {
	// Strip any query suffix (dev-server URLs carry ?direct etc.).
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	dot := strings.LastIndexByte(href, '.')
	if dot < 0 {
		return MediaType{}, false
	}
	mt, ok := mediaTypes[strings.ToLower(href[dot:])]
	return mt, ok
}
