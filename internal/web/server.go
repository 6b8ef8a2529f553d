// Package web provides an HTTP status page and action endpoints for the
// athermo daemon.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/sweeney/athermo/internal/automation"
	"github.com/sweeney/athermo/internal/status"
)

// Server serves the status page over HTTP. Action requests are queued for
// the run loop; handlers never drive GPIO themselves.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	registry   *automation.Registry
	queue      *automation.Queue
}

// New creates a Server reading state from tracker and submitting actions
// resolved by registry to queue.
func New(addr string, tracker *status.Tracker, registry *automation.Registry, queue *automation.Queue) *Server {
	s := &Server{tracker: tracker, registry: registry, queue: queue}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	return s
}

// NewHandler returns the routes without a listener, for embedding in
// another server or in tests.
func NewHandler(tracker *status.Tracker, registry *automation.Registry, queue *automation.Queue) http.Handler {
	s := &Server{tracker: tracker, registry: registry, queue: queue}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("POST /actions/{name}", s.handleAction)
	mux.HandleFunc("POST /scripts/{id}", s.handleScript)
	return mux
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	cmd := automation.Command{Action: r.PathValue("name")}
	if v := r.FormValue("delay_ms"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "delay_ms must be an integer")
			return
		}
		cmd.DelayMs = &ms
	}
	s.submit(w, r, cmd)
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, automation.Command{Script: r.PathValue("id")})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, cmd automation.Command) {
	action, name, err := s.registry.Resolve(cmd)
	if err != nil {
		switch {
		case errors.Is(err, automation.ErrUnknownAction), errors.Is(err, automation.ErrUnknownScript):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if err := s.queue.Submit(automation.Request{Name: name, Source: "http", Action: action}); err != nil {
		log.Printf("http: %v", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	if r.FormValue("redirect") != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(AcceptedJSON{Accepted: name})
}

// AcceptedJSON is returned for queued requests.
type AcceptedJSON struct {
	Accepted string `json:"accepted"`
}

// ErrorJSON is returned for rejected requests.
type ErrorJSON struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorJSON{Error: msg})
}
