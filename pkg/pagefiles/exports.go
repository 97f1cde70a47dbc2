package pagefiles

import (
	"sort"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Export is one contribution to a named export, with full provenance.
type Export struct {
	Value               any
	FilePath            string
	FileType            FileType
	IsFromDefaultExport bool
}

// ExportsAll maps an export name to its ordered contributions, one per
// contributing file, page-specific before default. The key "default" never
// appears: default-export maps are flattened into their named members.
type ExportsAll map[string][]Export

// PageExports is the aggregation result threaded into the page context.
type PageExports struct {
	// All holds every contribution per export name.
	All ExportsAll

	// Flat is the first-seen-wins view across files (specific before
	// default).
	Flat map[string]any

	// Legacy is the deprecated pageExports view: non-default exports of
	// page-definition files only, first-seen-wins.
	Legacy map[string]any
}

// forbiddenDefaultExports are hook names that must be named exports; hiding
// them inside a default-export map would silently change hook resolution.
var forbiddenDefaultExports = []string{
	"render",
	"onBeforeRender",
	"passToClient",
	"prerender",
	"doNotPrerender",
	"onBeforePrerender",
}

// GetExports aggregates the named exports of the given loaded files. Files
// must be ordered page-specific before default; first-seen wins in the flat
// views.
func GetExports(files []*PageFile) (*PageExports, error) {
	result := &PageExports{
		All:    make(ExportsAll),
		Flat:   make(map[string]any),
		Legacy: make(map[string]any),
	}

	for _, f := range files {
		values, err := exportValues(f)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			result.All[v.name] = append(result.All[v.name], Export{
				Value:               v.value,
				FilePath:            f.FilePath,
				FileType:            f.FileType,
				IsFromDefaultExport: v.fromDefault,
			})
			if _, ok := result.Flat[v.name]; !ok {
				result.Flat[v.name] = v.value
			}
			if f.FileType == FileTypePage && !v.fromDefault {
				if _, ok := result.Legacy[v.name]; !ok {
					result.Legacy[v.name] = v.value
				}
			}
		}
	}

	return result, nil
}

type exportValue struct {
	name        string
	value       any
	fromDefault bool
}

// exportValues lists one file's exports with default-export maps flattened.
// Named exports come first so they take precedence over same-named
// default-export members of the same file.
func exportValues(f *PageFile) ([]exportValue, error) {
	names := make([]string, 0, len(f.exports))
	for name := range f.exports {
		names = append(names, name)
	}
	sort.Strings(names)

	var values []exportValue
	var defaultExport any
	hasDefault := false
	for _, name := range names {
		if name == "default" {
			defaultExport = f.exports[name]
			hasDefault = true
			continue
		}
		values = append(values, exportValue{name: name, value: f.exports[name]})
	}

	if hasDefault {
		members, ok := defaultExport.(map[string]any)
		if !ok {
			return nil, errors.Usage("the default export of %s should be a map", f.FilePath)
		}
		memberNames := make([]string, 0, len(members))
		for name := range members {
			memberNames = append(memberNames, name)
		}
		sort.Strings(memberNames)
		for _, name := range memberNames {
			for _, forbidden := range forbiddenDefaultExports {
				if name == forbidden {
					return nil, errors.Usage(
						"%s is exported by the default export of %s which is forbidden: use a named export instead",
						name, f.FilePath)
				}
			}
			values = append(values, exportValue{name: name, value: members[name], fromDefault: true})
		}
	}

	return values, nil
}

// ServerExportList resolves a string-list export declared by server files.
// The first server-file contribution wins (page-specific before default):
// a page's own declaration replaces the shared default instead of merging
// with it. Used for resolving passToClient.
func ServerExportList(all ExportsAll, name string) ([]string, error) {
	for _, e := range all[name] {
		if e.FileType != FileTypePageServer {
			continue
		}
		strs, ok := StringSlice(e.Value)
		if !ok {
			return nil, errors.Usage("the %q export of %s should be a list of strings", name, e.FilePath)
		}
		return strs, nil
	}
	return nil, nil
}

// StringSlice converts an exported value to []string when possible.
func StringSlice(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
