package pagekit

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/contextjson"
	"github.com/pagekit-dev/pagekit/pkg/html"
	"github.com/pagekit-dev/pagekit/pkg/pagefiles"
	"github.com/pagekit-dev/pagekit/pkg/routing"
)

// RenderPage runs the server rendering pipeline for one request.
//
// Argument mistakes (nil context, missing or malformed URL) are returned as
// errors before any page code runs. Everything after that is guarded: user
// code failures are logged and answered with the error page at 500 (data
// requests get `{"serverSideError":true}`), never propagated to the caller.
//
// A nil pc.HTTPResponse on return means "not mine": the caller should pass
// the request on to its next handler (static files, other middleware).
func (g *GlobalContext) RenderPage(ctx context.Context, pc *PageContext) (*PageContext, error) {
	if pc == nil {
		return nil, errors.New("P001")
	}
	if pc.URL == "" {
		return nil, errors.New("P002")
	}
	pc.global = g

	// Browsers request favicons unconditionally; short-circuit before any
	// routing work.
	if strings.HasSuffix(pathnameOf(pc.URL), "/favicon.ico") {
		pc.HTTPResponse = nil
		return pc, nil
	}

	analysis, err := analyzeURL(pc.URL, g.Config.BaseURL)
	if err != nil {
		return nil, err
	}
	if !analysis.hasBasePath {
		pc.HTTPResponse = nil
		return pc, nil
	}
	pc.URL = analysis.urlLogical
	pc.URLNormalized = analysis.urlNormalized
	pc.isDataRequest = analysis.isDataRequest

	if err := g.renderPageAttempt(ctx, pc); err != nil {
		g.logRenderError(pc, err)
		g.renderErrorPage(ctx, pc, err)
	}
	return pc, nil
}

// renderPageAttempt is the guarded body of the pipeline: any error it
// returns is answered with the error page.
func (g *GlobalContext) renderPageAttempt(ctx context.Context, pc *PageContext) error {
	result, err := g.Router.Route(ctx, &routing.Request{
		URL:      pc.URLNormalized,
		Pathname: pc.URLPathname(),
	})
	if err != nil {
		return err
	}

	if result.PageID == "" {
		return g.renderNotFound(ctx, pc)
	}

	pc.pageID = result.PageID
	pc.RouteParams = result.RouteParams
	return g.renderPageForID(ctx, pc, 200)
}

// renderNotFound answers a URL no route claimed. Routing outcomes are not
// failures: data requests are always answered 200, with the logical
// outcome in the body.
func (g *GlobalContext) renderNotFound(ctx context.Context, pc *PageContext) error {
	if !pc.isDataRequest {
		g.warnUnmatchedRoute(pc.URLNormalized)
	}

	if g.errorPageID == "" {
		g.warnMissingErrorPage()
		if pc.isDataRequest {
			pc.HTTPResponse = &HTTPResponse{
				StatusCode:  200,
				Body:        contextjson.PageNotFoundBody(),
				ContentType: "application/json",
			}
			return nil
		}
		pc.HTTPResponse = nil
		return nil
	}

	pc.pageID = g.errorPageID
	pc.Is404 = true
	statusCode := 404
	if pc.isDataRequest {
		statusCode = 200
	}
	return g.renderPageForID(ctx, pc, statusCode)
}

// renderPageForID renders pc.pageID: loads and aggregates the page's
// files, runs onBeforeRender, and either serializes the client context
// (data request) or runs the render hook and injects assets (document).
func (g *GlobalContext) renderPageForID(ctx context.Context, pc *PageContext, statusCode int) error {
	if err := g.loadPageFiles(ctx, pc); err != nil {
		return err
	}

	if !pc.contextAlreadyProvided {
		if err := runOnBeforeRender(ctx, pc); err != nil {
			return err
		}
	}
	if pagefiles.IsErrorPage(pc.pageID) {
		pc.mergeProps(map[string]any{"is404": pc.Is404})
	}
	pc.buildClientContext()

	if pc.isDataRequest {
		body, err := pc.serializeClientContext()
		if err != nil {
			return err
		}
		pc.HTTPResponse = &HTTPResponse{StatusCode: statusCode, Body: body, ContentType: "application/json"}
		return nil
	}

	if err := g.planAssets(ctx, pc); err != nil {
		return err
	}

	result, err := runRenderHook(ctx, pc)
	if err != nil {
		return err
	}
	if result.documentHTML.IsZero() {
		// The render hook declined; the request is not ours.
		pc.HTTPResponse = nil
		return nil
	}

	serialized, err := pc.serializeClientContext()
	if err != nil {
		return err
	}
	document := html.InjectAssets(result.documentHTML.String(), pc.pageAssets, serialized)
	pc.HTTPResponse = &HTTPResponse{StatusCode: statusCode, Body: document, ContentType: "text/html"}
	return nil
}

// loadPageFiles resolves the page's files (page-specific before shared
// defaults), loads them, and aggregates their exports onto pc.
func (g *GlobalContext) loadPageFiles(ctx context.Context, pc *PageContext) error {
	pageID := pc.pageID

	pageFile := pagefiles.FindPageFile(g.Files.ByType(pagefiles.FileTypePage), pageID)
	pageDefault := pagefiles.FindDefaultFile(g.Files.ByType(pagefiles.FileTypePage), pageID)
	serverFile := pagefiles.FindPageFile(g.Files.ByType(pagefiles.FileTypePageServer), pageID)
	serverDefault := pagefiles.FindDefaultFile(g.Files.ByType(pagefiles.FileTypePageServer), pageID)
	if serverFile == nil && serverDefault == nil {
		return errors.New("P003").
			WithDetail("No `.page.server` file found for page " + pageID + ", and no `_default.page.server` file exists.")
	}

	clientFile := pagefiles.FindPageFile(g.Files.ByType(pagefiles.FileTypePageClient), pageID)
	if clientFile == nil {
		clientFile = pagefiles.FindDefaultFile(g.Files.ByType(pagefiles.FileTypePageClient), pageID)
	}
	if clientFile == nil {
		return errors.New("P004").
			WithDetail("No `.page.client` file found for page " + pageID + ", and no `_default.page.client` file exists.")
	}
	pc.clientPath = clientFile.FilePath

	// Page-specific files first so their exports win the flat view.
	var files []*pagefiles.PageFile
	for _, f := range []*pagefiles.PageFile{pageFile, serverFile, pageDefault, serverDefault} {
		if f != nil {
			files = append(files, f)
		}
	}
	for _, f := range files {
		if _, err := f.Load(ctx); err != nil {
			return errors.UserCode(err)
		}
	}

	exports, err := pagefiles.GetExports(files)
	if err != nil {
		return err
	}
	pc.Exports = exports.Flat
	pc.ExportsAll = exports.All
	pc.legacyPageExports = exports.Legacy
	pc.Page = exports.Flat["Page"]

	passToClient, err := pagefiles.ServerExportList(exports.All, "passToClient")
	if err != nil {
		return err
	}
	if pagefiles.IsErrorPage(pageID) {
		passToClient = append(passToClient, "pageProps", "is404")
	}
	pc.passToClient = passToClient

	if serverFile != nil {
		ex, _ := serverFile.Load(ctx)
		pc.serverFile = &loadedFile{filePath: serverFile.FilePath, exports: ex}
	}
	if serverDefault != nil {
		ex, _ := serverDefault.Load(ctx)
		pc.serverFileDefault = &loadedFile{filePath: serverDefault.FilePath, exports: ex}
	}
	return nil
}

// planAssets resolves the page's client assets through the planner.
func (g *GlobalContext) planAssets(ctx context.Context, pc *PageContext) error {
	dependencies := []string{pc.clientPath}
	if pageFile := pagefiles.FindPageFile(g.Files.ByType(pagefiles.FileTypePage), pc.pageID); pageFile != nil {
		dependencies = append(dependencies, pageFile.FilePath)
	}
	if g.Config.IncludeAssetsImportedByServer && pc.serverFile != nil {
		dependencies = append(dependencies, pc.serverFile.filePath)
	}
	pageAssets, err := g.planner().Plan(ctx, dependencies, []string{pc.clientPath}, pc.isPreRendering)
	if err != nil {
		return err
	}
	pc.pageAssets = pageAssets
	return nil
}

// renderErrorPage answers a failed render attempt. Data requests get the
// server-side-error body at 500. Documents get the error page at 500; a
// failure while rendering the error page itself is swallowed (the original
// error is already logged) and the response stays nil.
func (g *GlobalContext) renderErrorPage(ctx context.Context, pc *PageContext, cause error) {
	pc.err = cause

	if pc.isDataRequest {
		pc.HTTPResponse = &HTTPResponse{
			StatusCode:  500,
			Body:        contextjson.ServerSideErrorBody(),
			ContentType: "application/json",
		}
		return
	}

	if g.errorPageID == "" {
		g.warnMissingErrorPage()
		pc.HTTPResponse = nil
		return
	}

	errPC := &PageContext{
		URL:           pc.URL,
		URLNormalized: pc.URLNormalized,
		global:        g,
		pageID:        g.errorPageID,
		err:           cause,
	}
	if err := g.renderPageForID(ctx, errPC, 500); err != nil {
		g.Logger.Error("an error occurred while rendering the error page",
			"url", pc.URL, "error", err.Error())
		pc.HTTPResponse = nil
		return
	}
	pc.HTTPResponse = errPC.HTTPResponse
}

// logRenderError reports a guarded pipeline failure once, fixing up user
// stack traces through the dev server when one is available.
func (g *GlobalContext) logRenderError(pc *PageContext, err error) {
	if g.DevServer != nil {
		if fixed := g.DevServer.FixStackTrace(err); fixed != nil {
			err = fixed
		}
	}
	var pe *errors.PagekitError
	if stderrors.As(err, &pe) {
		g.Logger.Error("rendering failed", "url", pc.URL, "code", pe.Code, "error", pe.Format())
		return
	}
	g.Logger.Error("rendering failed", "url", pc.URL, "error", err.Error())
}

// pathnameOf returns the path part of a raw URL, origin included or not.
func pathnameOf(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return rawURL
}
