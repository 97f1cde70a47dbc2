package pagekit

import (
	"net/url"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// PageContextURLSuffix is the reserved suffix marking a data request: a
// request for serialized page context only, used for client-side
// navigation.
const PageContextURLSuffix = ".pageContext.json"

// urlAnalysis is the result of normalizing a raw incoming URL.
type urlAnalysis struct {
	// urlLogical is the caller's URL with the data-request suffix
	// stripped; origin, when present, is preserved.
	urlLogical string

	// urlNormalized additionally strips the base path.
	urlNormalized string

	// isDataRequest reports the reserved data-request suffix.
	isDataRequest bool

	// hasBasePath is false when the URL is outside the deployment's mount
	// point; the caller must short-circuit with a nil response.
	hasBasePath bool
}

// analyzeURL normalizes a raw URL: data-request suffix stripped and
// recorded, origin removed, base path checked and stripped.
func analyzeURL(rawURL, basePath string) (*urlAnalysis, error) {
	isDataRequest := isPageContextURL(rawURL)
	if isDataRequest {
		rawURL = removePageContextURLSuffix(rawURL)
	}
	urlLogical := rawURL

	stripped, err := removeOrigin(rawURL)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(stripped, "/") {
		return nil, errors.Usage("the URL %q should start with \"/\"", stripped)
	}

	hasBasePath := startsWithBasePath(stripped, basePath)
	urlNormalized := stripped
	if hasBasePath {
		urlNormalized = removeBasePath(stripped, basePath)
	}

	return &urlAnalysis{
		urlLogical:    urlLogical,
		urlNormalized: urlNormalized,
		isDataRequest: isDataRequest,
		hasBasePath:   hasBasePath,
	}, nil
}

func isPageContextURL(rawURL string) bool {
	pathname := rawURL
	if i := strings.IndexAny(pathname, "?#"); i >= 0 {
		pathname = pathname[:i]
	}
	return strings.HasSuffix(pathname, PageContextURLSuffix)
}

func removePageContextURLSuffix(rawURL string) string {
	i := strings.IndexAny(rawURL, "?#")
	pathname, rest := rawURL, ""
	if i >= 0 {
		pathname, rest = rawURL[:i], rawURL[i:]
	}
	pathname = strings.TrimSuffix(pathname, PageContextURLSuffix)
	if pathname == "" {
		pathname = "/"
	}
	return pathname + rest
}

// removeOrigin strips any scheme and host, keeping path, query, and hash.
func removeOrigin(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "/") {
		return rawURL, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("P002").
			WithDetail("pageContext.URL should be a URL or an absolute path, got " + rawURL)
	}
	out := parsed.Path
	if out == "" {
		out = "/"
	}
	if parsed.RawQuery != "" {
		out += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		out += "#" + parsed.Fragment
	}
	return out, nil
}

func startsWithBasePath(pathname, basePath string) bool {
	if basePath == "" || basePath == "/" {
		return true
	}
	basePath = strings.TrimSuffix(basePath, "/")
	if !strings.HasPrefix(pathname, basePath) {
		return false
	}
	rest := pathname[len(basePath):]
	return rest == "" || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "?")
}

func removeBasePath(pathname, basePath string) string {
	if basePath == "" || basePath == "/" {
		return pathname
	}
	basePath = strings.TrimSuffix(basePath, "/")
	rest := strings.TrimPrefix(pathname, basePath)
	if rest == "" || strings.HasPrefix(rest, "?") {
		rest = "/" + rest
	}
	return rest
}

// URLParsed is the parsed view of the normalized URL.
type URLParsed struct {
	// Pathname is the URL path without query or hash.
	Pathname string

	// Search holds the parsed query parameters.
	Search url.Values

	// Hash is the fragment without the leading "#".
	Hash string
}

func parseURL(urlNormalized string) *URLParsed {
	pathname := urlNormalized
	hash := ""
	if i := strings.IndexByte(pathname, '#'); i >= 0 {
		pathname, hash = pathname[:i], pathname[i+1:]
	}
	search := url.Values{}
	if i := strings.IndexByte(pathname, '?'); i >= 0 {
		query := pathname[i+1:]
		pathname = pathname[:i]
		if parsed, err := url.ParseQuery(query); err == nil {
			search = parsed
		}
	}
	return &URLParsed{Pathname: pathname, Search: search, Hash: hash}
}
