package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"clipsaver/internal/journal"
	"clipsaver/internal/logger"
	"clipsaver/internal/metrics"
	"clipsaver/internal/notify"
	"clipsaver/internal/watcher"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
	StartTimeout        = 5 * time.Second
)

// Controller is the part of the watcher the API drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop()
	State() watcher.State
	IsRunning() bool
	Session() string
}

type Server struct {
	controller  Controller
	tracker     *notify.Tracker
	destination func() string
	metrics     *metrics.Metrics
	logger      *logger.Logger
	startTime   time.Time
}

func NewServer(controller Controller, tracker *notify.Tracker, destination func() string, m *metrics.Metrics, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	if tracker == nil {
		tracker = notify.NewTracker()
	}
	return &Server{
		controller:  controller,
		tracker:     tracker,
		destination: destination,
		metrics:     m,
		logger:      log,
		startTime:   time.Now(),
	}
}

func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()

	respondJSON(w, StatusResponse{
		State:         s.controller.State().String(),
		Status:        string(snap.Status),
		Running:       s.controller.IsRunning(),
		Session:       s.controller.Session(),
		Destination:   s.destination(),
		Saves:         snap.Saves,
		Errors:        snap.Errors,
		LastSaved:     snap.LastSaved,
		LastError:     snap.LastError,
		UptimeSeconds: int(time.Since(s.startTime).Seconds()),
	}, http.StatusOK)
}

func (s *Server) StartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), StartTimeout)
	defer cancel()

	if err := s.controller.Start(ctx); err != nil {
		respondJSON(w, ControlResponse{
			OK:    false,
			State: s.controller.State().String(),
			Error: fmt.Sprintf("start watcher: %v", err),
		}, http.StatusServiceUnavailable)
		return
	}

	s.logger.Info("watcher started via API", "session", s.controller.Session())
	respondJSON(w, ControlResponse{OK: true, State: s.controller.State().String()}, http.StatusOK)
}

func (s *Server) StopHandler(w http.ResponseWriter, r *http.Request) {
	s.controller.Stop()
	s.logger.Info("watcher stop requested via API")
	respondJSON(w, ControlResponse{OK: true, State: s.controller.State().String()}, http.StatusOK)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allHealthy := true

	if s.controller.IsRunning() {
		checks["watcher"] = "healthy"
	} else {
		checks["watcher"] = "stopped"
	}

	dest := s.destination()
	if info, err := os.Stat(filepath.Dir(dest)); err != nil {
		checks["destination"] = "unhealthy: " + err.Error()
		allHealthy = false
	} else if !info.IsDir() {
		checks["destination"] = "unhealthy: parent is not a directory"
		allHealthy = false
	} else {
		checks["destination"] = "healthy"
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, HealthResponse{
		Status: status,
		Checks: checks,
	}, statusCode)
}

func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	entries, err := journal.Tail(s.destination(), limit)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		respondError(w, fmt.Sprintf("read journal: %v", err), http.StatusInternalServerError)
		return
	}

	resp := HistoryResponse{Entries: make([]HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, HistoryEntry{Timestamp: e.Timestamp(), Text: e.Text})
	}
	resp.Count = len(resp.Entries)

	respondJSON(w, resp, http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{
		OK:    false,
		Error: message,
	}, statusCode)
}

func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	statusHandler := instrument(s.logger, s.metrics, "/api/v1/status", s.StatusHandler)
	healthHandler := instrument(s.logger, s.metrics, "/api/v1/health", s.HealthHandler)
	historyHandler := instrument(s.logger, s.metrics, "/api/v1/history", s.HistoryHandler)
	startHandler := instrument(s.logger, s.metrics, "/api/v1/watcher/start", sameOrigin(limitRequestSize(s.StartHandler)))
	stopHandler := instrument(s.logger, s.metrics, "/api/v1/watcher/stop", sameOrigin(limitRequestSize(s.StopHandler)))

	mux.HandleFunc("GET /api/v1/status", statusHandler)
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /api/v1/history", historyHandler)
	mux.HandleFunc("POST /api/v1/watcher/start", startHandler)
	mux.HandleFunc("POST /api/v1/watcher/stop", stopHandler)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("GET /{$}", s.handleFrontend)

	return mux
}
