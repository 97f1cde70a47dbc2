package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	pagekit "github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Result contains the pre-render output.
type Result struct {
	// OutputDir is where the static site was written.
	OutputDir string

	// Pages is the number of pre-rendered documents, the static 404
	// included.
	Pages int

	// Files lists every written file, relative to OutputDir.
	Files []string

	// Skipped lists pages that could not be pre-rendered (parameterized
	// route without a prerender() provider) or opted out via
	// doNotPrerender.
	Skipped []string

	// Duration is how long the pre-render took.
	Duration time.Duration
}

// Options configures the pre-renderer.
type Options struct {
	// OutputDir overrides the output directory. Defaults to
	// <build.output>/client from the project config.
	OutputDir string

	// OnProgress, when set, receives a short line per build step.
	OnProgress func(step string)

	// Logger defaults to the global context's logger.
	Logger *slog.Logger
}

// Prerenderer renders every prerenderable page of a site to static files.
type Prerenderer struct {
	global *pagekit.GlobalContext
	opts   Options
	logger *slog.Logger
}

// New creates a pre-renderer for the given site.
func New(global *pagekit.GlobalContext, opts Options) *Prerenderer {
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(global.Config.Build.Output, "client")
	}
	logger := opts.Logger
	if logger == nil {
		logger = global.Logger
	}
	return &Prerenderer{global: global, opts: opts, logger: logger}
}

// Run pre-renders the site: every page that is not opted out and whose
// URLs can be determined gets an HTML document, plus a `.pageContext.json`
// file when the page uses the client router, plus a static 404 page when
// an error page exists. Pre-rendering fails loudly: any render error
// aborts the build.
func (p *Prerenderer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{OutputDir: p.opts.OutputDir}

	p.progress("collecting pages")
	plans, skipped, err := p.collectPlans(ctx)
	if err != nil {
		return nil, err
	}
	result.Skipped = skipped

	hook, err := p.global.LoadOnBeforePrerenderHook(ctx)
	if err != nil {
		return nil, err
	}
	provided, err := p.runPrerenderHook(ctx, hook)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, errors.Newf(errors.CategoryConfig, "cannot create output directory %s", p.opts.OutputDir).Wrap(err)
	}

	for _, plan := range plans {
		p.progress("rendering " + plan.url)
		pc := p.global.NewPrerenderContext(plan.url, plan.pageID)
		if props, ok := provided[plan.url]; ok {
			pc.MarkContextProvided(props)
		}
		rendered, err := p.global.PrerenderPage(ctx, pc)
		if err != nil {
			return nil, err
		}
		files, err := p.writePage(plan.url, rendered)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, files...)
		result.Pages++
	}

	p.progress("rendering static 404")
	notFound, err := p.global.RenderStatic404Page(ctx)
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		if err := p.writeFile("404.html", notFound.DocumentHTML); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, "404.html")
		result.Pages++
	}

	result.Duration = time.Since(start)
	return result, nil
}

// pagePlan is one URL scheduled for rendering.
type pagePlan struct {
	url    string
	pageID string
}

// collectPlans enumerates pages and determines the URLs to render. Pages
// exporting doNotPrerender are skipped, as are pages whose route is
// parameterized (or a route function) without a prerender() URL provider.
func (p *Prerenderer) collectPlans(ctx context.Context) ([]pagePlan, []string, error) {
	var plans []pagePlan
	var skipped []string

	for _, pageID := range p.global.PageIDs {
		if pageID == p.global.ErrorPageID() {
			continue
		}
		exports, err := p.global.PageExportsFor(ctx, pageID)
		if err != nil {
			return nil, nil, err
		}
		if optOut, ok := exports.Flat["doNotPrerender"].(bool); ok && optOut {
			skipped = append(skipped, pageID)
			continue
		}

		urls, declared, err := prerenderURLs(ctx, pageID, exports.Flat["prerender"])
		if err != nil {
			return nil, nil, err
		}
		if !declared {
			url, ok := p.staticRouteURL(pageID)
			if !ok {
				p.logger.Warn("skipping page: its route has parameters and it does not export prerender()",
					"pageID", pageID)
				skipped = append(skipped, pageID)
				continue
			}
			urls = []string{url}
		}
		for _, url := range urls {
			plans = append(plans, pagePlan{url: url, pageID: pageID})
		}
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].url < plans[j].url })
	return plans, skipped, nil
}

// prerenderURLs evaluates a page's prerender export. Accepted forms: a
// []string of URLs, a func() []string, or a
// func(context.Context) ([]string, error).
func prerenderURLs(ctx context.Context, pageID string, export any) ([]string, bool, error) {
	switch v := export.(type) {
	case nil:
		return nil, false, nil
	case []string:
		return v, true, nil
	case func() []string:
		return v(), true, nil
	case func(context.Context) ([]string, error):
		urls, err := v(ctx)
		if err != nil {
			return nil, true, errors.UserCode(err)
		}
		return urls, true, nil
	default:
		return nil, false, errors.Usage(
			"the prerender export of page %s should be a []string, a func() []string, or a func(context.Context) ([]string, error), got %T",
			pageID, v)
	}
}

// staticRouteURL returns the page's URL when its route is a plain pattern
// without parameters.
func (p *Prerenderer) staticRouteURL(pageID string) (string, bool) {
	for _, route := range p.global.Routes {
		if route.PageID != pageID {
			continue
		}
		if route.Func != nil || strings.Contains(route.Pattern, "{") {
			return "", false
		}
		return route.Pattern, true
	}
	return "", false
}

// runPrerenderHook invokes the build-wide onBeforePrerender hook once. Its
// result may carry a "pageContexts" map from URL to page props; those pages
// render with their context pre-provided (suppressing onBeforeRender).
func (p *Prerenderer) runPrerenderHook(ctx context.Context, hook *pagekit.OnBeforePrerenderHook) (map[string]map[string]any, error) {
	if hook == nil {
		return nil, nil
	}
	p.progress("running onBeforePrerender()")
	result, err := hook.Func(ctx, p.global.NewPrerenderContext("/", ""))
	if err != nil {
		return nil, errors.UserCode(err)
	}
	if result == nil {
		return nil, nil
	}
	resultMap, ok := result.(map[string]any)
	if !ok {
		return nil, errors.Usage(
			"the onBeforePrerender() hook defined by %s should return nil or a map with a pageContexts key, got %T",
			hook.FilePath, result)
	}
	raw, ok := resultMap["pageContexts"]
	if !ok {
		return nil, nil
	}
	provided, ok := raw.(map[string]map[string]any)
	if !ok {
		return nil, errors.Usage(
			"the pageContexts value returned by the onBeforePrerender() hook defined by %s should be a map[string]map[string]any, got %T",
			hook.FilePath, raw)
	}
	return provided, nil
}

// writePage writes one rendered page: its HTML document and, when present,
// its serialized page context. Returns the written paths relative to the
// output directory.
func (p *Prerenderer) writePage(url string, rendered *pagekit.PrerenderResult) ([]string, error) {
	htmlPath := urlToFile(url, ".html")
	if err := p.writeFile(htmlPath, rendered.DocumentHTML); err != nil {
		return nil, err
	}
	files := []string{htmlPath}

	if rendered.PageContextSerialized != "" {
		ctxPath := urlToFile(url, ".pageContext.json")
		if err := p.writeFile(ctxPath, rendered.PageContextSerialized); err != nil {
			return nil, err
		}
		files = append(files, ctxPath)
	}
	return files, nil
}

func (p *Prerenderer) writeFile(relPath, content string) error {
	dst := filepath.Join(p.opts.OutputDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Newf(errors.CategoryConfig, "cannot create directory for %s", relPath).Wrap(err)
	}
	if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
		return errors.Newf(errors.CategoryConfig, "cannot write %s", relPath).Wrap(err)
	}
	return nil
}

// urlToFile maps a URL to its static file: "/" becomes "index<ext>",
// "/movie/1" becomes "movie/1<ext>".
func urlToFile(url, ext string) string {
	if url == "/" {
		return "index" + ext
	}
	return strings.TrimPrefix(url, "/") + ext
}

// Clean removes the pre-render output directory.
func (p *Prerenderer) Clean() error {
	return os.RemoveAll(p.opts.OutputDir)
}

func (p *Prerenderer) progress(step string) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(step)
	}
}
