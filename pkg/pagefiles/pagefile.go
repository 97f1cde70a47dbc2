package pagefiles

import (
	"context"
	"path"
	"strings"
	"sync"
)

// FileType identifies the role of a page-related file.
type FileType string

const (
	// FileTypePage is the page definition (the view and its exports).
	FileTypePage FileType = ".page"

	// FileTypePageServer holds server-only hooks (onBeforeRender, render).
	FileTypePageServer FileType = ".page.server"

	// FileTypePageClient holds client-side hooks and the hydration entry.
	FileTypePageClient FileType = ".page.client"

	// FileTypePageRoute holds an explicit route definition.
	FileTypePageRoute FileType = ".page.route"
)

// Exports is the named-export table of one loaded file. The reserved key
// "default" may hold a map whose members are flattened during aggregation.
type Exports map[string]any

// LoadFunc produces a file's exports. Supplied by the file-discovery
// collaborator; may suspend (module compilation, dev-server transform).
type LoadFunc func(ctx context.Context) (Exports, error)

// PageFile represents one physical page-related file. Files are discovered
// once at process start (or per pre-render build); exports are loaded
// lazily and cached.
type PageFile struct {
	// FilePath is the opaque file identifier, always /-separated.
	FilePath string

	// FileType is the role of the file.
	FileType FileType

	load    LoadFunc
	once    sync.Once
	exports Exports
	loadErr error
}

// New creates a PageFile with a deferred loader.
func New(filePath string, fileType FileType, load LoadFunc) *PageFile {
	return &PageFile{FilePath: filePath, FileType: fileType, load: load}
}

// NewLoaded creates a PageFile whose exports are already known.
func NewLoaded(filePath string, fileType FileType, exports Exports) *PageFile {
	f := &PageFile{FilePath: filePath, FileType: fileType}
	f.once.Do(func() { f.exports = exports })
	return f
}

// Load returns the file's exports, invoking the loader at most once per
// process. Concurrent first loads share the single in-flight execution and
// all callers receive the same cached export table.
func (f *PageFile) Load(ctx context.Context) (Exports, error) {
	f.once.Do(func() {
		f.exports, f.loadErr = f.load(ctx)
	})
	return f.exports, f.loadErr
}

// PageID derives the logical page identifier from a file path:
// "/pages/about.page.server.go" becomes "/pages/about".
func PageID(filePath string) string {
	base := filePath
	if i := strings.Index(base, ".page."); i >= 0 {
		return base[:i]
	}
	if i := strings.Index(base, ".page"); i >= 0 {
		return base[:i]
	}
	return base
}

// IsDefaultFile reports whether filePath is a shared `_default.*` file.
func IsDefaultFile(filePath string) bool {
	return strings.HasPrefix(path.Base(filePath), "_default.")
}

// IsErrorPage reports whether pageID is the registered error page.
func IsErrorPage(pageID string) bool {
	return path.Base(pageID) == "_error"
}

// GetErrorPageID returns the error page among allPageIDs, or "" when none
// is registered.
func GetErrorPageID(allPageIDs []string) string {
	for _, pageID := range allPageIDs {
		if IsErrorPage(pageID) {
			return pageID
		}
	}
	return ""
}

// Inventory is the full, immutable file inventory partitioned by type.
// Discovery order is preserved; it breaks proximity ties.
type Inventory struct {
	byType map[FileType][]*PageFile
	all    []*PageFile
}

// NewInventory partitions discovered files by type, preserving order.
func NewInventory(files []*PageFile) *Inventory {
	inv := &Inventory{byType: make(map[FileType][]*PageFile)}
	for _, f := range files {
		inv.byType[f.FileType] = append(inv.byType[f.FileType], f)
		inv.all = append(inv.all, f)
	}
	return inv
}

// ByType returns the discovered files of one type, in discovery order.
func (inv *Inventory) ByType(t FileType) []*PageFile {
	return inv.byType[t]
}

// All returns every discovered file in discovery order.
func (inv *Inventory) All() []*PageFile {
	return inv.all
}

// PageIDs derives the list of page identifiers from the page-definition
// files, excluding shared defaults. Order follows discovery.
func (inv *Inventory) PageIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, f := range inv.byType[FileTypePage] {
		if IsDefaultFile(f.FilePath) {
			continue
		}
		id := PageID(f.FilePath)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
