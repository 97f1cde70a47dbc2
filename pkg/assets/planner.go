package assets

import (
	"context"
	"sort"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// AssetType is the role an asset plays in the document.
type AssetType string

const (
	AssetScript  AssetType = "script"
	AssetStyle   AssetType = "style"
	AssetPreload AssetType = "preload"
)

// PageAsset is one client asset of a page. Produced fresh per request or
// per prerendered page; never mutated after planning except for the
// base-path prefixing the planner itself performs.
type PageAsset struct {
	Src         string
	AssetType   AssetType
	MediaType   string
	PreloadType PreloadType
}

// DevServer resolves module specifiers to browser-loadable URLs during
// development.
type DevServer interface {
	// ResolveClientEntry maps a client entry module to its dev-server URL.
	ResolveClientEntry(entry string) (string, error)

	// CollectAssets returns the asset URLs the given dependencies pull in.
	CollectAssets(ctx context.Context, dependencies []string) ([]string, error)
}

// Planner resolves the ordered asset list for a page.
//
// Exactly one of DevServer (dev) or Manifest (prod and pre-rendering) is
// consulted per plan. Server-imported dependencies should only be passed in
// when the deployment opts into includeAssetsImportedByServer; the planner
// treats every dependency it is handed as wanted.
type Planner struct {
	// BaseURL is the deployment mount path prefixed onto every asset URL.
	BaseURL string

	// BaseAssets overrides BaseURL for asset URLs when non-empty (CDN).
	BaseAssets string

	// IsProduction selects manifest resolution over dev-server resolution.
	IsProduction bool

	// DevServer resolves modules in development. Required when not in
	// production.
	DevServer DevServer

	// Manifest is the client build manifest. Required in production.
	Manifest *Manifest
}

// Plan resolves, classifies, sorts, and base-prefixes the assets for one
// page. Pre-rendering always resolves through the manifest, even when the
// planner is otherwise in development mode.
func (p *Planner) Plan(ctx context.Context, clientDependencies, clientEntries []string, isPreRendering bool) ([]PageAsset, error) {
	isDev := !isPreRendering && !p.IsProduction

	var entrySrcs, assetURLs []string
	var err error
	if isDev {
		if p.DevServer == nil {
			return nil, errors.Newf(errors.CategoryConfig, "asset planning in development requires a dev server")
		}
		for _, entry := range clientEntries {
			src, err := p.DevServer.ResolveClientEntry(entry)
			if err != nil {
				return nil, err
			}
			entrySrcs = append(entrySrcs, src)
		}
		assetURLs, err = p.DevServer.CollectAssets(ctx, clientDependencies)
		if err != nil {
			return nil, err
		}
	} else {
		if p.Manifest == nil {
			return nil, errors.Newf(errors.CategoryConfig, "asset planning in production requires a client manifest")
		}
		for _, entry := range clientEntries {
			src, err := p.resolveEntryProd(entry)
			if err != nil {
				return nil, err
			}
			entrySrcs = append(entrySrcs, src)
		}
		assetURLs, err = p.collectAssetsProd(clientDependencies)
		if err != nil {
			return nil, err
		}
	}

	var pageAssets []PageAsset
	for _, src := range entrySrcs {
		pageAssets = append(pageAssets, PageAsset{
			Src:       src,
			AssetType: AssetScript,
			MediaType: "text/javascript",
		})
	}
	for _, src := range assetURLs {
		mt, known := InferMediaType(src)
		assetType := AssetPreload
		if mt.MediaType == "text/css" {
			assetType = AssetStyle
			if isDev {
				// Inlined CSS modules are already part of their importer.
				if strings.HasSuffix(src, "?inline") {
					continue
				}
				// Ask the dev server for the raw stylesheet, not the JS
				// module wrapping it.
				src = src + "?direct"
			}
		}
		asset := PageAsset{Src: src, AssetType: assetType}
		if known {
			asset.MediaType = mt.MediaType
			asset.PreloadType = mt.PreloadType
		}
		pageAssets = append(pageAssets, asset)
	}

	sortForHTTPPush(pageAssets)

	base := p.BaseAssets
	if base == "" {
		base = p.BaseURL
	}
	for i := range pageAssets {
		pageAssets[i].Src = prependBase(normalizePath(pageAssets[i].Src), base)
	}

	return pageAssets, nil
}

func (p *Planner) resolveEntryProd(entry string) (string, error) {
	manifestEntry, ok := p.Manifest.Lookup(entry)
	if !ok {
		return "", errors.Newf(errors.CategoryConfig, "client manifest is missing an entry for %q", entry)
	}
	if !manifestEntry.IsEntry && !manifestEntry.IsDynamicEntry {
		return "", errors.Newf(errors.CategoryConfig, "client manifest entry %q is not an entry point", entry)
	}
	return "/" + strings.TrimPrefix(manifestEntry.File, "/"), nil
}

// collectAssetsProd gathers the stylesheets and static assets of the given
// dependencies, following transitive static imports through the manifest.
func (p *Planner) collectAssetsProd(dependencies []string) ([]string, error) {
	var urls []string
	seen := make(map[string]bool)
	visited := make(map[string]bool)

	add := func(file string) {
		if !seen[file] {
			seen[file] = true
			urls = append(urls, "/"+strings.TrimPrefix(file, "/"))
		}
	}

	var visit func(source string) error
	visit = func(source string) error {
		if visited[source] {
			return nil
		}
		visited[source] = true
		entry, ok := p.Manifest.Lookup(source)
		if !ok {
			return errors.Newf(errors.CategoryConfig, "client manifest is missing an entry for %q", source)
		}
		for _, css := range entry.CSS {
			add(css)
		}
		for _, asset := range entry.Assets {
			add(asset)
		}
		for _, imported := range entry.Imports {
			if err := visit(imported); err != nil {
				return err
			}
		}
		return nil
	}

	for _, dep := range dependencies {
		if err := visit(dep); err != nil {
			return nil, err
		}
	}
	return urls, nil
}

// sortForHTTPPush orders assets by early-push priority: stylesheets first,
// then preloadable styles, fonts, images, scripts, preloadable scripts, and
// everything else last. The sort is stable and uses pre-prefix classification.
func sortForHTTPPush(pageAssets []PageAsset) {
	sort.SliceStable(pageAssets, func(i, j int) bool {
		return pushPriority(pageAssets[i]) > pushPriority(pageAssets[j])
	})
}

func pushPriority(a PageAsset) int {
	switch {
	case a.AssetType == AssetStyle:
		return 7
	case a.PreloadType == PreloadStyle:
		return 6
	case a.PreloadType == PreloadFont:
		return 5
	case a.PreloadType == PreloadImage:
		return 4
	case a.AssetType == AssetScript:
		return 3
	case a.PreloadType == PreloadScript:
		return 2
	default:
		return 1
	}
}

// normalizePath collapses duplicate slashes in the path part of src,
// preserving any query suffix.
func normalizePath(src string) string {
	query := ""
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src, query = src[:i], src[i:]
	}
	for strings.Contains(src, "//") {
		src = strings.ReplaceAll(src, "//", "/")
	}
	return src + query
}

// prependBase prefixes src with the asset base path. Absolute URLs are left
// untouched.
func prependBase(src, base string) string {
	if base == "" || base == "/" {
		return src
	}
	if strings.Contains(src, "://") {
		return src
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(src, "/")
}
