// Package nav implements the client side of the page-context lifecycle:
// building the page context for the first render from the server-provided
// document, and for client-side navigations by routing locally and fetching
// the serialized context from the server when needed.
package nav

import (
	"context"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/contextjson"
	"github.com/pagekit-dev/pagekit/pkg/pagefiles"
	"github.com/pagekit-dev/pagekit/pkg/routing"
)

// PageContext is the client-side page context. It mirrors the server's
// client-exposed subset plus the exports of the client-loaded files.
type PageContext struct {
	// URL is the navigated URL.
	URL string

	// PageID is the page being displayed.
	PageID string

	// RouteParams holds the parameters extracted by client-side routing.
	RouteParams map[string]string

	// Props holds the transferred context values (passToClient subset).
	Props map[string]any

	// Exports is the flattened export table of the client-loaded files.
	Exports map[string]any

	// IsHydration is true for the first render: the DOM already carries
	// the server-rendered page.
	IsHydration bool

	// Is404 is set when the displayed page is the error page for a
	// not-found URL.
	Is404 bool
}

// Navigator drives client-side page transitions.
type Navigator struct {
	// Files is the client's page-file inventory (client and page files).
	Files *pagefiles.Inventory

	// Router matches URLs locally, sharing the server's route table.
	Router routing.Router

	// ErrorPageID is the registered error page, "" when none exists.
	ErrorPageID string

	// ServerHooks maps page IDs to the hooks their server files declare.
	// The server derives it (ServerHooksFor) and ships it with the client
	// bundle; a page absent from the map declares no server hooks.
	ServerHooks map[string]ServerHooks

	// Fetcher retrieves serialized page context from the server.
	Fetcher Fetcher
}

// ServerHooks records which server-side hooks a page declares. Server
// files never load in the browser; only their export names travel.
type ServerHooks struct {
	// HasOnBeforeRender is true when the page's server file (or a shared
	// default) declares an onBeforeRender hook.
	HasOnBeforeRender bool
}

// ServerHooksFor derives the per-page server hook declarations from the
// server's file inventory, for embedding in the client bundle.
func ServerHooksFor(ctx context.Context, inv *pagefiles.Inventory) (map[string]ServerHooks, error) {
	hooks := make(map[string]ServerHooks)
	servers := inv.ByType(pagefiles.FileTypePageServer)
	for _, pageID := range inv.PageIDs() {
		for _, f := range []*pagefiles.PageFile{
			pagefiles.FindPageFile(servers, pageID),
			pagefiles.FindDefaultFile(servers, pageID),
		} {
			if f == nil {
				continue
			}
			exports, err := f.Load(ctx)
			if err != nil {
				return nil, errors.UserCode(err)
			}
			if _, ok := exports["onBeforeRender"]; ok {
				hooks[pageID] = ServerHooks{HasOnBeforeRender: true}
				break
			}
		}
	}
	return hooks, nil
}

// ErrPageRemoved signals that the server no longer knows the navigated
// page (deploy happened since the document was served). Callers should
// fall back to a full server-side navigation; this is not a failure.
var ErrPageRemoved = errors.Transport("the server no longer serves this page")

// GetPageContextFirstRender builds the context for hydration: the values
// serialized into the initial document are trusted as-is and only the
// client files are loaded on top.
func (n *Navigator) GetPageContextFirstRender(ctx context.Context, url, serialized string) (*PageContext, error) {
	env, err := contextjson.ParseEnvelope(serialized)
	if err != nil {
		return nil, err
	}
	if env.PageContext == nil {
		return nil, errors.Transport("the document's page context payload is empty")
	}
	pc := &PageContext{
		URL:         url,
		Props:       env.PageContext,
		IsHydration: true,
	}
	if id, ok := env.PageContext["_pageId"].(string); ok {
		pc.PageID = id
	}
	if v, ok := env.PageContext["is404"].(bool); ok {
		pc.Is404 = v
	}
	if pc.PageID == "" {
		return nil, errors.Transport("the document's page context is missing its page id")
	}
	if err := n.loadClientExports(ctx, pc); err != nil {
		return nil, err
	}
	return pc, nil
}

// GetPageContextNavigation builds the context for a client-side
// navigation: route locally, load the target's client files, and obtain
// context values either from a client-side onBeforeRender hook or by
// fetching the server's serialized context.
func (n *Navigator) GetPageContextNavigation(ctx context.Context, url string) (*PageContext, error) {
	result, err := n.Router.Route(ctx, &routing.Request{URL: url, Pathname: pathnameOf(url)})
	if err != nil {
		return nil, err
	}

	pc := &PageContext{URL: url}
	if result.PageID == "" {
		if n.ErrorPageID == "" {
			return nil, ErrPageRemoved
		}
		pc.PageID = n.ErrorPageID
		pc.Is404 = true
	} else {
		pc.PageID = result.PageID
		pc.RouteParams = result.RouteParams
	}

	if err := n.loadClientExports(ctx, pc); err != nil {
		return nil, err
	}

	// A client-side onBeforeRender hook makes the navigation fully local.
	// Without one, the server computes the context, but only when the page
	// actually declares a server-side onBeforeRender; a page with no hook
	// anywhere needs no data request.
	if _, hasClientHook := pc.Exports["onBeforeRender"]; !hasClientHook && n.ServerHooks[pc.PageID].HasOnBeforeRender {
		if err := n.fetchPageContext(ctx, pc); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// GetPageContextErrorPage builds the context for displaying the error page
// after a navigation failure. The cause is kept out of the context; it is
// the caller's to report.
func (n *Navigator) GetPageContextErrorPage(ctx context.Context, url string) (*PageContext, error) {
	if n.ErrorPageID == "" {
		return nil, errors.Usage("no error page is registered; create one to display navigation failures")
	}
	pc := &PageContext{URL: url, PageID: n.ErrorPageID}
	if err := n.loadClientExports(ctx, pc); err != nil {
		return nil, err
	}
	return pc, nil
}

// fetchPageContext retrieves and applies the server's serialized context
// for pc's URL. A non-JSON 404 means the page was removed server-side; a
// serverSideError marker is a fetch failure distinct from usage errors.
func (n *Navigator) fetchPageContext(ctx context.Context, pc *PageContext) error {
	resp, err := n.Fetcher.Fetch(ctx, dataRequestURL(pc.URL))
	if err != nil {
		return errors.Transport("fetching the page context failed").Wrap(err)
	}

	if !strings.Contains(resp.ContentType, "application/json") {
		if resp.StatusCode == 404 {
			return ErrPageRemoved
		}
		return errors.New("P101").
			WithDetail("Got content-type " + resp.ContentType + " for " + dataRequestURL(pc.URL) + ".")
	}

	env, err := contextjson.ParseEnvelope(resp.Body)
	if err != nil {
		return err
	}
	if env.ServerSideError {
		return errors.New("P100")
	}
	if env.PageNotFound {
		return ErrPageRemoved
	}

	pc.Props = env.PageContext
	if v, ok := env.PageContext["is404"].(bool); ok {
		pc.Is404 = v
	}

	// The server may have answered with a different page (its error page
	// for an unmatched URL). Follow it: reload client files for the page
	// actually served.
	if id, ok := env.PageContext["_pageId"].(string); ok && id != "" && id != pc.PageID {
		pc.PageID = id
		if err := n.loadClientExports(ctx, pc); err != nil {
			return err
		}
	}
	return nil
}

// loadClientExports loads and aggregates the exports of pc.PageID's client
// and page files.
func (n *Navigator) loadClientExports(ctx context.Context, pc *PageContext) error {
	pageFile := pagefiles.FindPageFile(n.Files.ByType(pagefiles.FileTypePage), pc.PageID)
	pageDefault := pagefiles.FindDefaultFile(n.Files.ByType(pagefiles.FileTypePage), pc.PageID)
	clientFile := pagefiles.FindPageFile(n.Files.ByType(pagefiles.FileTypePageClient), pc.PageID)
	clientDefault := pagefiles.FindDefaultFile(n.Files.ByType(pagefiles.FileTypePageClient), pc.PageID)
	if clientFile == nil && clientDefault == nil {
		return errors.New("P004").
			WithDetail("No `.page.client` file found for page " + pc.PageID + ", and no `_default.page.client` file exists.")
	}

	var files []*pagefiles.PageFile
	for _, f := range []*pagefiles.PageFile{pageFile, clientFile, pageDefault, clientDefault} {
		if f == nil {
			continue
		}
		if _, err := f.Load(ctx); err != nil {
			return errors.UserCode(err)
		}
		files = append(files, f)
	}
	exports, err := pagefiles.GetExports(files)
	if err != nil {
		return err
	}
	pc.Exports = exports.Flat
	return nil
}

// dataRequestURL appends the reserved data-request suffix to a URL's
// pathname, keeping the query string.
func dataRequestURL(url string) string {
	pathname, rest := url, ""
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		pathname, rest = url[:i], url[i:]
	}
	return pathname + ".pageContext.json" + rest
}

func pathnameOf(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}
