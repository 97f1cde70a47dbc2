package pagekit

import (
	"context"
	"log/slog"

	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/assets"
	"github.com/pagekit-dev/pagekit/pkg/pagefiles"
	"github.com/pagekit-dev/pagekit/pkg/routing"
)

// DevServer is the development-mode collaborator: it resolves client
// modules to browser-loadable URLs and cleans up user-code stack traces.
type DevServer interface {
	assets.DevServer

	// FixStackTrace rewrites transpiled frames in a user-code error so the
	// reported locations point at source files.
	FixStackTrace(err error) error
}

// GlobalContext holds everything shared across requests: the file
// inventory, the router, and the deployment configuration. Built once at
// startup (per pre-render build in CI) and never mutated afterwards, so it
// is safe for concurrent use by every request goroutine.
type GlobalContext struct {
	// Files is the immutable page-file inventory.
	Files *pagefiles.Inventory

	// PageIDs lists every page, in discovery order.
	PageIDs []string

	// Router matches URLs to pages.
	Router routing.Router

	// Routes lists the registered routes, for diagnostics.
	Routes []routing.PageRoute

	// Config is the deployment configuration (pagekit.json).
	Config *config.Config

	// IsProduction selects manifest-based asset resolution; when false a
	// DevServer must be set.
	IsProduction bool

	// DevServer is required outside production.
	DevServer DevServer

	// Manifest is the client build manifest. Required in production.
	Manifest *assets.Manifest

	// Logger receives pipeline diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	errorPageID string
}

// GlobalOptions configures NewGlobalContext.
type GlobalOptions struct {
	// Files is the discovered page-file inventory.
	Files []*pagefiles.PageFile

	// Config is the deployment configuration; defaults are used when nil.
	Config *config.Config

	IsProduction bool
	DevServer    DevServer
	Manifest     *assets.Manifest
	Logger       *slog.Logger
}

// NewGlobalContext builds the shared context: it derives the page list,
// loads every `.page.route` file, and constructs the router. Route files
// are loaded eagerly since routing cannot begin without them.
func NewGlobalContext(ctx context.Context, opts GlobalOptions) (*GlobalContext, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !opts.IsProduction && opts.DevServer == nil {
		return nil, errors.Newf(errors.CategoryConfig, "a DevServer is required outside production")
	}
	if opts.IsProduction && opts.Manifest == nil {
		return nil, errors.Newf(errors.CategoryConfig, "a build manifest is required in production")
	}

	inv := pagefiles.NewInventory(opts.Files)
	pageIDs := inv.PageIDs()

	routes, err := buildRoutes(ctx, inv, pageIDs, cfg.Pages)
	if err != nil {
		return nil, err
	}
	router, err := routing.New(routes)
	if err != nil {
		return nil, err
	}

	return &GlobalContext{
		Files:        inv,
		PageIDs:      pageIDs,
		Router:       router,
		Routes:       routes,
		Config:       cfg,
		IsProduction: opts.IsProduction,
		DevServer:    opts.DevServer,
		Manifest:     opts.Manifest,
		Logger:       logger,
		errorPageID:  pagefiles.GetErrorPageID(pageIDs),
	}, nil
}

// buildRoutes produces one route per page: the `.page.route` declaration
// when the page has one, the filesystem-derived pattern otherwise. The
// error page is never routable by URL.
func buildRoutes(ctx context.Context, inv *pagefiles.Inventory, pageIDs []string, pagesRoot string) ([]routing.PageRoute, error) {
	routeFiles := inv.ByType(pagefiles.FileTypePageRoute)
	byPage := make(map[string]*pagefiles.PageFile, len(routeFiles))
	for _, f := range routeFiles {
		byPage[pagefiles.PageID(f.FilePath)] = f
	}

	var routes []routing.PageRoute
	for _, pageID := range pageIDs {
		if pagefiles.IsErrorPage(pageID) {
			continue
		}
		f, ok := byPage[pageID]
		if !ok {
			routes = append(routes, routing.PageRoute{
				PageID:       pageID,
				Pattern:      routing.FilesystemRoute(pageID, "/"+pagesRoot),
				IsFilesystem: true,
			})
			continue
		}
		route, err := loadRoute(ctx, f, pageID)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// loadRoute reads a `.page.route` file's default export: a route pattern
// string or a route function.
func loadRoute(ctx context.Context, f *pagefiles.PageFile, pageID string) (routing.PageRoute, error) {
	exports, err := f.Load(ctx)
	if err != nil {
		return routing.PageRoute{}, err
	}
	value, ok := exports["default"]
	if !ok {
		return routing.PageRoute{}, errors.Usage("%s should have a default export", f.FilePath)
	}
	switch route := value.(type) {
	case string:
		return routing.PageRoute{PageID: pageID, Pattern: route}, nil
	case routing.RouteFunc:
		return routing.PageRoute{PageID: pageID, Func: route}, nil
	case func(url string) (map[string]string, bool, error):
		return routing.PageRoute{PageID: pageID, Func: route}, nil
	default:
		return routing.PageRoute{}, errors.Usage(
			"the default export of %s should be a route string or a route function", f.FilePath)
	}
}

// planner builds the asset planner for one request or pre-render run.
func (g *GlobalContext) planner() *assets.Planner {
	p := &assets.Planner{
		BaseURL:      g.Config.BaseURL,
		BaseAssets:   g.Config.BaseAssets,
		IsProduction: g.IsProduction,
		Manifest:     g.Manifest,
	}
	if g.DevServer != nil {
		p.DevServer = g.DevServer
	}
	return p
}

// ErrorPageID returns the registered error page, or "" when none exists.
func (g *GlobalContext) ErrorPageID() string {
	return g.errorPageID
}
