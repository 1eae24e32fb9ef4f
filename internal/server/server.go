// Package server exposes the read-only status API for the dashboard and CLI.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"beatempire/internal/empire"
	"beatempire/internal/store"
	"beatempire/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	Empire *empire.Empire
	Store  store.Store
}

// Server exposes HTTP endpoints for empire status and inventory.
type Server struct {
	empire *empire.Empire
	store  store.Store
	mux    *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		empire: cfg.Empire,
		store:  cfg.Store,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/beats", s.handleBeats)
	s.mux.HandleFunc("/channels", s.handleChannels)
	s.mux.HandleFunc("/analytics", s.handleAnalytics)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	snap, err := s.empire.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "status unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBeats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	status := domain.UploadStatus(r.URL.Query().Get("status"))
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be 1-500")
			return
		}
		limit = n
	}
	beats, err := s.store.ListBeats(status, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list beats failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beats": beats})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	channels, err := s.store.ListActiveChannels()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list channels failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.store.ListDailyStats(30)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list analytics failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analytics": stats})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
