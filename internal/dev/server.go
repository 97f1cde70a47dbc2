package dev

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	pagekit "github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Server is what apps pass as GlobalOptions.DevServer in development.
var _ pagekit.DevServer = (*Server)(nil)

// VirtualPrefix marks framework-provided client modules. Entries like
// "@pagekit/client-entry" are served by the dev server itself rather than
// read from the project.
const VirtualPrefix = "@pagekit/"

// fsPrefix is the URL prefix under which project files are served verbatim.
const fsPrefix = "/@fs"

// Server is the development-mode module server. It resolves client entries
// to live URLs, tracks which assets each module pulls in, pushes reload
// notifications, and rewrites served URLs in stack traces back to disk
// paths.
type Server struct {
	root   string
	logger *slog.Logger
	reload *ReloadServer

	mu      sync.RWMutex
	modules map[string]*moduleNode
}

// moduleNode records what a served module imports. Populated as the
// compiler processes modules.
type moduleNode struct {
	imports []string
	assets  []string
}

// NewServer creates a dev server rooted at the project directory. A nil
// logger falls back to slog.Default.
func NewServer(root string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		root:    filepath.Clean(root),
		logger:  logger,
		reload:  NewReloadServer(logger),
		modules: make(map[string]*moduleNode),
	}
}

// Reload exposes the reload broadcaster, for mounting its WebSocket
// endpoint and pushing error overlays.
func (s *Server) Reload() *ReloadServer {
	return s.reload
}

// Mount registers the dev endpoints on the given mux.
func (s *Server) Mount(mux *http.ServeMux) {
	mux.HandleFunc(ReloadEndpoint, s.reload.HandleWebSocket)
}

// ResolveClientEntry maps a client entry module to the URL the browser
// loads it from. Virtual "@pagekit/" entries resolve to framework-served
// paths; project files are served under /@fs with their absolute disk path.
func (s *Server) ResolveClientEntry(entry string) (string, error) {
	if strings.HasPrefix(entry, VirtualPrefix) {
		return "/" + entry, nil
	}
	if strings.HasPrefix(entry, "/") {
		return fsPrefix + filepath.ToSlash(filepath.Join(s.root, entry)), nil
	}
	return "", errors.Usage("cannot resolve client entry %q: entries must be project-absolute (start with /) or virtual (start with %s)", entry, VirtualPrefix)
}

// RegisterModule records a served module's imports and the asset URLs it
// pulls in. The compiler calls this each time it (re)processes a module.
func (s *Server) RegisterModule(id string, imports, assets []string) {
	s.mu.Lock()
	s.modules[id] = &moduleNode{imports: imports, assets: assets}
	s.mu.Unlock()
}

// InvalidateModule drops a module from the graph, forcing re-registration
// on next load.
func (s *Server) InvalidateModule(id string) {
	s.mu.Lock()
	delete(s.modules, id)
	s.mu.Unlock()
}

// CollectAssets walks the module graph from the given dependencies and
// returns every asset URL they transitively pull in, in discovery order.
// Dependencies that have not been served yet contribute nothing; the
// browser discovers their assets when it loads them.
func (s *Server) CollectAssets(ctx context.Context, dependencies []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var urls []string
	seen := make(map[string]bool)
	queue := append([]string(nil), dependencies...)
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true

		node, ok := s.modules[id]
		if !ok {
			continue
		}
		urls = append(urls, node.assets...)
		queue = append(queue, node.imports...)
	}
	return urls, nil
}

// cacheBustRe matches the ?t= / &t= timestamps the dev client appends for
// cache busting.
var cacheBustRe = regexp.MustCompile(`[?&]t=\d+`)

// FixStackTrace rewrites dev-server URLs in an error's message back to
// project paths, so users see the file they wrote rather than the URL it
// was served from. Returns the error unchanged when nothing matched.
func (s *Server) FixStackTrace(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	fixed := cacheBustRe.ReplaceAllString(msg, "")
	fixed = strings.ReplaceAll(fixed, fsPrefix+filepath.ToSlash(s.root), "")
	if fixed == msg {
		return err
	}
	return &fixedError{msg: fixed, cause: err}
}

type fixedError struct {
	msg   string
	cause error
}

func (e *fixedError) Error() string { return e.msg }
func (e *fixedError) Unwrap() error { return e.cause }

// ApplyChanges turns a debounced watcher batch into reload notifications:
// style-only batches hot-swap CSS, anything else forces a full reload.
func (s *Server) ApplyChanges(changes []Change) {
	stylesOnly := true
	for _, c := range changes {
		s.invalidateChanged(c.Path)
		if c.Kind != ChangeStyle {
			stylesOnly = false
		}
	}
	if stylesOnly {
		for _, c := range changes {
			s.reload.NotifyCSS(s.serveURL(c.Path))
		}
		return
	}
	s.reload.ClearError()
	s.reload.NotifyReload()
}

func (s *Server) invalidateChanged(diskPath string) {
	s.InvalidateModule(s.projectPath(diskPath))
}

// projectPath converts a disk path to its project-relative form with a
// leading slash. Paths outside the root are returned as-is.
func (s *Server) projectPath(diskPath string) string {
	rel, err := filepath.Rel(s.root, diskPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(diskPath)
	}
	return "/" + filepath.ToSlash(rel)
}

// serveURL is the URL a project file is served from in development.
func (s *Server) serveURL(diskPath string) string {
	return fsPrefix + filepath.ToSlash(filepath.Clean(diskPath))
}
