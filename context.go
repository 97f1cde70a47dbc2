package pagekit

import (
	"log/slog"
	"sync"

	"github.com/pagekit-dev/pagekit/pkg/assets"
	"github.com/pagekit-dev/pagekit/pkg/contextjson"
	"github.com/pagekit-dev/pagekit/pkg/pagefiles"
	"github.com/pagekit-dev/pagekit/pkg/routing"
)

// PageContext is the per-request context threaded through the rendering
// pipeline. It grows additively: each stage fills in further fields, and a
// field once set is only ever overwritten by a later stage, never removed.
//
// Callers construct one with at least URL set and pass it to RenderPage.
type PageContext struct {
	// URL is the incoming URL. RenderPage rewrites it to its
	// origin-preserving, data-suffix-stripped form.
	URL string

	// URLNormalized is the origin- and base-path-stripped URL. Set by the
	// pipeline after URL analysis.
	URLNormalized string

	// RouteParams holds the parameters extracted by routing.
	RouteParams map[string]string

	// Page is the page's "Page" export (the view), when defined.
	Page any

	// Exports is the flattened export table across the page's files,
	// page-specific before default.
	Exports map[string]any

	// ExportsAll is the full export table with provenance per export.
	ExportsAll pagefiles.ExportsAll

	// Props holds user data contributed by hooks (pageProps and friends).
	// Keys listed in passToClient are copied to the client from here.
	Props map[string]any

	// Is404 is set on the error page to distinguish "not found" from
	// "something threw".
	Is404 bool

	// HTTPResponse is the final response, or nil when the request should
	// be passed through to another handler.
	HTTPResponse *HTTPResponse

	// Pipeline bookkeeping. Internal fields are never exposed to hooks
	// other than through the documented accessors.
	global            *GlobalContext
	pageID            string
	isDataRequest     bool
	isPreRendering    bool
	usesClientRouter  bool
	err               error
	serverFile        *loadedFile
	serverFileDefault *loadedFile
	clientPath        string
	passToClient      []string
	pageAssets        []assets.PageAsset
	clientContext     map[string]any

	// Set by an onBeforePrerender hook that already provided this page's
	// context; suppresses the per-page onBeforeRender run.
	contextAlreadyProvided bool

	urlPathnameOnce sync.Once
	urlPathname     string
	urlParsedOnce   sync.Once
	urlParsed       *URLParsed

	legacyPageExports map[string]any
}

// HTTPResponse is the serialized outcome of rendering one request.
type HTTPResponse struct {
	// StatusCode is 200, 404, or 500.
	StatusCode int

	// Body is the HTML document or the serialized page context.
	Body string

	// ContentType is "text/html" or "application/json".
	ContentType string
}

// loadedFile pairs a server page file with its loaded exports.
type loadedFile struct {
	filePath string
	exports  pagefiles.Exports
}

// PageID returns the matched page identifier. Empty before routing.
func (pc *PageContext) PageID() string {
	return pc.pageID
}

// Params is a typed view over RouteParams.
func (pc *PageContext) Params() routing.Params {
	return routing.Params(pc.RouteParams)
}

// IsDataRequest reports whether this request asks for serialized page
// context rather than an HTML document.
func (pc *PageContext) IsDataRequest() bool {
	return pc.isDataRequest
}

// Assets returns the planned client assets of the page.
func (pc *PageContext) Assets() []assets.PageAsset {
	return pc.pageAssets
}

// URLPathname returns the pathname of the normalized URL. Memoized; the
// first call computes it from URLNormalized.
func (pc *PageContext) URLPathname() string {
	pc.urlPathnameOnce.Do(func() {
		pc.urlPathname = pc.URLParsed().Pathname
	})
	return pc.urlPathname
}

// URLParsed returns the parsed view of the normalized URL. Memoized.
func (pc *PageContext) URLParsed() *URLParsed {
	pc.urlParsedOnce.Do(func() {
		pc.urlParsed = parseURL(pc.URLNormalized)
	})
	return pc.urlParsed
}

var pageExportsWarnOnce sync.Once

// PageExports returns the deprecated page-exports view: the non-default
// exports of the page-definition files only.
//
// Deprecated: use Exports instead.
func (pc *PageContext) PageExports() map[string]any {
	pageExportsWarnOnce.Do(func() {
		logger := slog.Default()
		if pc.global != nil && pc.global.Logger != nil {
			logger = pc.global.Logger
		}
		logger.Warn("pageContext.PageExports() is outdated, use pageContext.Exports instead",
			"docs", "https://pagekit.dev/docs/exports")
	})
	return pc.legacyPageExports
}

// mergeProps merges hook-contributed values into Props. Additive: new keys
// are assigned, existing user keys may be overwritten by later stages.
func (pc *PageContext) mergeProps(values map[string]any) {
	if len(values) == 0 {
		return
	}
	if pc.Props == nil {
		pc.Props = make(map[string]any, len(values))
	}
	for k, v := range values {
		pc.Props[k] = v
	}
}

// buildClientContext builds the client-exposed subset: exactly the
// passToClient whitelist plus the page id. Whitelisted keys missing from
// Props cross the wire as the Undefined sentinel so the client sees the
// full configured shape.
func (pc *PageContext) buildClientContext() {
	client := map[string]any{"_pageId": pc.pageID}
	for _, prop := range pc.passToClient {
		if v, ok := pc.Props[prop]; ok {
			client[prop] = v
		} else {
			client[prop] = contextjson.Undefined
		}
	}
	pc.clientContext = client
}

// serializeClientContext serializes the client-exposed subset for the wire.
func (pc *PageContext) serializeClientContext() (string, error) {
	return contextjson.MarshalPageContext(pc.clientContext)
}
