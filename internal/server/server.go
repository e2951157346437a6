// Package server provides the HTTP surface the mirror's rendering layer
// talks to: state snapshots, direct actions, the catalog, look history, the
// camera preview stream, and the WebSocket event feed.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mbrandolfi/specchio/internal/capture"
	"github.com/mbrandolfi/specchio/internal/mirror"
	"github.com/mbrandolfi/specchio/internal/server/api"
	"github.com/mbrandolfi/specchio/internal/store"
)

// Config holds the server configuration. Nil fields disable the routes that
// depend on them.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Nav       *mirror.Navigator
	Fitting   *mirror.FittingRoom
	Hub       *Hub
}

// Server is the mirror's HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		catalogHandler := api.NewCatalogHandler(s.config.Store.Catalog())
		s.mux.Handle("/api/catalog", catalogHandler)

		looksHandler := api.NewLooksHandler(s.config.Store.Looks())
		s.mux.Handle("/api/looks", looksHandler)
		s.mux.Handle("/api/looks/", looksHandler)
	}

	if s.config.Nav != nil && s.config.Fitting != nil {
		mirrorHandler := api.NewMirrorHandler(s.config.Nav, s.config.Fitting)
		s.mux.Handle("/api/mirror/", mirrorHandler)
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/events", s.config.Hub)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
