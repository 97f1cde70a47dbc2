package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadEndpoint is the WebSocket path the dev client connects to.
const ReloadEndpoint = "/_pagekit/reload"

// ReloadMessage is sent to connected browsers when something changed.
type ReloadMessage struct {
	// Type is one of "reload", "css", "error", "clear".
	Type string `json:"type"`

	// Path is the changed file for "css" updates.
	Path string `json:"path,omitempty"`

	// Error carries the build or render error for "error" messages.
	Error *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload is what the error overlay displays.
type ErrorPayload struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// ReloadServer pushes reload notifications to connected browsers over
// WebSocket.
type ReloadServer struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	// lastError is replayed to clients that connect while broken, so a
	// freshly opened tab sees the overlay too.
	lastError *ErrorPayload
}

// NewReloadServer creates a reload server. A nil logger falls back to
// slog.Default.
func NewReloadServer(logger *slog.Logger) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local development only; the dev server never faces the
			// public internet.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the browser goes away.
func (rs *ReloadServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := rs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rs.logger.Debug("reload websocket upgrade failed", "error", err)
		return
	}

	rs.mu.Lock()
	rs.clients[conn] = true
	replay := rs.lastError
	rs.mu.Unlock()

	if replay != nil {
		rs.send(conn, ReloadMessage{Type: "error", Error: replay})
	}

	go rs.readLoop(conn)
}

// readLoop drains client messages and unregisters the connection on error.
func (rs *ReloadServer) readLoop(conn *websocket.Conn) {
	defer func() {
		rs.mu.Lock()
		delete(rs.clients, conn)
		rs.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// NotifyReload tells every client to do a full page reload.
func (rs *ReloadServer) NotifyReload() {
	rs.broadcast(ReloadMessage{Type: "reload"})
}

// NotifyCSS tells every client to hot-swap the given stylesheet.
func (rs *ReloadServer) NotifyCSS(path string) {
	rs.broadcast(ReloadMessage{Type: "css", Path: path})
}

// NotifyError shows the error overlay in every client and remembers the
// error for clients that connect later.
func (rs *ReloadServer) NotifyError(payload ErrorPayload) {
	rs.mu.Lock()
	rs.lastError = &payload
	rs.mu.Unlock()
	rs.broadcast(ReloadMessage{Type: "error", Error: &payload})
}

// ClearError dismisses the overlay.
func (rs *ReloadServer) ClearError() {
	rs.mu.Lock()
	rs.lastError = nil
	rs.mu.Unlock()
	rs.broadcast(ReloadMessage{Type: "clear"})
}

// ClientCount reports how many browsers are connected.
func (rs *ReloadServer) ClientCount() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.clients)
}

// Close disconnects every client.
func (rs *ReloadServer) Close() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for conn := range rs.clients {
		conn.Close()
	}
	rs.clients = make(map[*websocket.Conn]bool)
}

func (rs *ReloadServer) broadcast(msg ReloadMessage) {
	rs.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(rs.clients))
	for conn := range rs.clients {
		conns = append(conns, conn)
	}
	rs.mu.RUnlock()

	for _, conn := range conns {
		rs.send(conn, msg)
	}
}

func (rs *ReloadServer) send(conn *websocket.Conn, msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		rs.logger.Error("failed to marshal reload message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		rs.mu.Lock()
		delete(rs.clients, conn)
		rs.mu.Unlock()
		conn.Close()
	}
}

// DevClientScript is injected into every page served in development. It
// connects to the reload endpoint, applies CSS hot swaps in place, and
// renders the error overlay.
const DevClientScript = `
(function() {
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var url = proto + location.host + '` + ReloadEndpoint + `';

  function connect() {
    var ws = new WebSocket(url);
    ws.onmessage = function(ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === 'reload') {
        location.reload();
      } else if (msg.type === 'css') {
        swapCSS(msg.path);
      } else if (msg.type === 'error') {
        showOverlay(msg.error);
      } else if (msg.type === 'clear') {
        hideOverlay();
      }
    };
    ws.onclose = function() {
      setTimeout(connect, 1000);
    };
  }

  function swapCSS(path) {
    var links = document.querySelectorAll('link[rel="stylesheet"]');
    for (var i = 0; i < links.length; i++) {
      var href = links[i].getAttribute('href');
      if (href && href.split('?')[0] === path) {
        links[i].setAttribute('href', path + '?t=' + Date.now());
        return;
      }
    }
    location.reload();
  }

  function showOverlay(err) {
    hideOverlay();
    var el = document.createElement('div');
    el.id = 'pagekit-error-overlay';
    el.style.cssText = 'position:fixed;inset:0;z-index:99999;background:rgba(20,20,20,0.95);color:#ff8080;font-family:monospace;padding:2rem;overflow:auto;white-space:pre-wrap;';
    var text = err.message;
    if (err.file) text += '\n\n' + err.file;
    if (err.stack) text += '\n\n' + err.stack;
    el.textContent = text;
    document.body.appendChild(el);
  }

  function hideOverlay() {
    var el = document.getElementById('pagekit-error-overlay');
    if (el) el.remove();
  }

  connect();
})();
`
