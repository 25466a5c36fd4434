// Package server runs the preview server: it serves the compiled output
// tree over HTTP and pushes reload notifications to connected browsers
// over a websocket whenever the watcher reports a template change.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/sigil-lang/sigil/internal/config"
	"github.com/sigil-lang/sigil/internal/logging"
)

const reloadScript = `<script>
(function () {
  var ws = new WebSocket("ws://" + location.host + "/__sigil/reload");
  ws.onmessage = function () { location.reload(); };
})();
</script>`

// PreviewServer serves compiled components and live-reload events.
type PreviewServer struct {
	config *config.Config
	logger logging.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}

	httpServer *http.Server
}

func New(cfg *config.Config, logger logging.Logger) *PreviewServer {
	return &PreviewServer{
		config:  cfg,
		logger:  logger.WithComponent("server"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start blocks serving HTTP until ctx is cancelled or the listener fails.
func (s *PreviewServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/__sigil/reload", s.handleReload)
	mux.Handle("/", s.withReloadScript(http.FileServer(http.Dir(s.config.Output.Dir))))

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "preview server listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown closes every client connection and stops the listener.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
	s.clients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// NotifyReload tells every connected browser to refresh. Dead connections
// are dropped on write failure.
func (s *PreviewServer) NotifyReload(ctx context.Context, changedPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := []byte(`{"event":"reload","path":` + fmt.Sprintf("%q", changedPath) + `}`)
	for conn := range s.clients {
		writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := conn.Write(writeCtx, websocket.MessageText, message)
		cancel()
		if err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			delete(s.clients, conn)
		}
	}
}

// ClientCount reports the number of connected reload listeners.
func (s *PreviewServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *PreviewServer) handleReload(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket accept failed")
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug(r.Context(), "reload client connected", "remote", r.RemoteAddr)

	// The client never sends anything meaningful; CloseRead reaps the
	// connection when the browser goes away.
	readCtx := conn.CloseRead(r.Context())
	<-readCtx.Done()

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
}

// withReloadScript appends the reload snippet to served HTML pages.
func (s *PreviewServer) withReloadScript(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".html") && r.URL.Path != "/" {
			next.ServeHTTP(w, r)
			return
		}
		rec := &scriptInjector{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.html && !rec.wroteScript {
			_, _ = w.Write([]byte(reloadScript))
		}
	})
}

type scriptInjector struct {
	http.ResponseWriter
	html        bool
	wroteScript bool
}

func (s *scriptInjector) WriteHeader(status int) {
	ct := s.Header().Get("Content-Type")
	s.html = strings.Contains(ct, "text/html")
	if s.html {
		// Length changes once the script is appended.
		s.Header().Del("Content-Length")
	}
	s.ResponseWriter.WriteHeader(status)
}
