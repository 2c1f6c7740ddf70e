package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"mls_sync/services"
)

// Server exposes the sync trigger and status routes. Triggers are
// synchronous: the caller blocks until the run completes.
type Server struct {
	svc        *services.SyncService
	httpServer *http.Server
}

func New(port int, svc *services.SyncService) *Server {
	s := &Server{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("POST /api/sync/listing", s.handleSyncListing)
	mux.HandleFunc("GET /api/sync/status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // sync runs are synchronous
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSync runs a sync pass. kind=properties syncs listings only; kind=full
// (the default) runs every sync type.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "full"
	}

	log.Printf("Sync triggered via HTTP (kind=%s)", kind)

	switch kind {
	case "full":
		writeJSON(w, http.StatusOK, s.svc.FullSync(r.Context()))
	case "properties":
		writeJSON(w, http.StatusOK, s.svc.SyncListings(r.Context(), 0))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sync kind: %s", kind))
	}
}

func (s *Server) handleSyncListing(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key parameter is required")
		return
	}

	writeJSON(w, http.StatusOK, s.svc.SyncOne(r.Context(), key))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.LastSyncStatus(r.Context())
	if err != nil {
		log.Printf("Status error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load sync status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
