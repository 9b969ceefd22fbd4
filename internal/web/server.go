// Package web serves the heartworm status page, its JSON twin and a
// readiness check for the supervisor.
package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/sweeney/heartworm/internal/status"
)

const readHeaderTimeout = 5 * time.Second

// Server is a read-only view of a status.Tracker over HTTP.
type Server struct {
	tracker *status.Tracker
	srv     *http.Server
}

// New builds a Server listening on addr. Nothing is served until ListenAndServe.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	routes := map[string]http.HandlerFunc{
		"/":           s.page,
		"/index.html": s.page,
		"/index.json": s.json,
		"/healthz":    s.health,
	}
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.Handle(path, readOnly(h))
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routed handler without a listener.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe blocks until Shutdown. It returns http.ErrServerClosed after a clean stop.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// readOnly rejects anything but GET and HEAD and disables caching; every
// response is a live snapshot.
func readOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		h(w, r)
	})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	// "/" is a catch-all in ServeMux.
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) json(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(status.FormatJSON(s.tracker.Snapshot())); err != nil {
		log.Printf("web: write json: %v", err)
	}
}

// health is 200 once the controller has run its startup reset, 503 before.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !snap.Started {
		http.Error(w, "starting", http.StatusServiceUnavailable)
		return
	}
	if _, err := w.Write([]byte(string(snap.State) + "\n")); err != nil {
		log.Printf("web: write health: %v", err)
	}
}
