package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/phasewatch/phasewatch/pkg/alerting"
	"github.com/phasewatch/phasewatch/pkg/storage"
)

// maxAlertsLimit caps the page size a client can request from the
// alerts endpoint.
const maxAlertsLimit = 500

// Server provides health check and status API endpoints.
type Server struct {
	registry *alerting.Registry
	store    storage.Storage
	mux      *http.ServeMux
	logger   *slog.Logger
}

// NewServer creates an API server over the given registry and alert store.
func NewServer(registry *alerting.Registry, store storage.Storage, logger *slog.Logger) *Server {
	s := &Server{
		registry: registry,
		store:    store,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.registry.Snapshot())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var filter storage.AlertFilter
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if limit > maxAlertsLimit {
			limit = maxAlertsLimit
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("channel"); v != "" {
		channel, err := strconv.Atoi(v)
		if err != nil || channel < 1 {
			http.Error(w, "invalid channel", http.StatusBadRequest)
			return
		}
		filter.Channel = channel
	}

	records, err := s.store.ListAlerts(ctx, filter)
	if err != nil {
		s.logger.Error("list alerts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []storage.AlertRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
