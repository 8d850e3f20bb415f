package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stalewatch/stalewatch/internal/store"
)

// Server is the stalewatch HTTP API server. It exposes read-only views of
// the stale store plus reconciliation and backup endpoints. The store is a
// single-writer resource, so mutating endpoints serialize through mu.
type Server struct {
	store     *store.Store
	threshold int
	router    chi.Router
	version   string
	started   time.Time
	mu        sync.Mutex
}

// New creates a new Server over an initialized store. thresholdMonths is
// the default threshold for /api/detect requests that don't carry one.
func New(st *store.Store, thresholdMonths int, version string) *Server {
	s := &Server{
		store:     st,
		threshold: thresholdMonths,
		version:   version,
		started:   time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stale", s.handleListStale)
		r.Get("/stale/{category}", s.handleListByCategory)
		r.Get("/stats", s.handleStats)
		r.Get("/integrity", s.handleIntegrity)
		r.Post("/detect", s.handleDetect)
		r.Post("/backup", s.handleBackup)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if _, err := s.store.Count(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.store.Path(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
