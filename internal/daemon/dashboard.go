package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"dlassist/internal/api"
	"dlassist/internal/config"
	"dlassist/internal/logging"
)

// dashboardServer is the administrative HTTP surface: configuration get/set,
// quarantine listing, status, and intake history. It never touches files in
// the downloads folder itself.
type dashboardServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newDashboardServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*dashboardServer, error) {
	if cfg == nil || d == nil {
		return nil, errors.New("dashboard requires config and daemon")
	}
	bind := strings.TrimSpace(cfg.Dashboard.Listen)
	if bind == "" {
		return nil, errors.New("dashboard listen address not configured")
	}

	mux := http.NewServeMux()
	srv := &dashboardServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/history", srv.handleHistory)
	mux.HandleFunc("/api/config", srv.handleConfig)
	mux.HandleFunc("/api/config/", srv.handleConfigKey)
	mux.HandleFunc("/api/folders/quarantine", srv.handleQuarantine)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *dashboardServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("dashboard listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("dashboard server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("dashboard listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *dashboardServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *dashboardServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *dashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *dashboardServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:         status.Running,
		PID:             status.PID,
		DownloadsFolder: status.DownloadsFolder,
		JournalDBPath:   status.JournalDBPath,
		LockFilePath:    status.LockFilePath,
		SocketPath:      status.SocketPath,
		DashboardAddr:   status.DashboardAddr,
		Dependencies:    api.FromDependencyStatuses(status.Dependencies),
		Intakes:         status.Intakes,
	}
	if !status.StartedAt.IsZero() {
		started := status.StartedAt
		payload.StartedAt = &started
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *dashboardServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.daemon.RecentIntakes(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Entries: api.FromJournalEntries(entries)})
}

func (s *dashboardServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var updates map[string]any
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(updates) == 0 {
			s.writeError(w, http.StatusBadRequest, "no settings provided")
			return
		}
		// Keys apply in sorted order; the first failure aborts the rest,
		// leaving earlier keys persisted.
		keys := make([]string, 0, len(updates))
		for key := range updates {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := s.daemon.ConfigSet(key, updates[key]); err != nil {
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tree, err := s.daemon.ConfigAll()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, tree)
}

func (s *dashboardServer) handleConfigKey(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/config/")
	if key == "" || strings.Contains(key, "/") {
		s.writeError(w, http.StatusNotFound, "unknown configuration key")
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var body struct {
			Value any `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.daemon.ConfigSet(key, body.Value); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	value, err := s.daemon.ConfigGet(key)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ConfigValueResponse{Key: key, Value: value})
}

func (s *dashboardServer) handleQuarantine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	files, err := s.daemon.QuarantineEntries(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.QuarantineListResponse{Files: files})
}

func (s *dashboardServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *dashboardServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *dashboardServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "dashboard"))
	}
	return logging.NewNop()
}
