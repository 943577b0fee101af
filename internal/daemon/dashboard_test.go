package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"dlassist/internal/api"
	"dlassist/internal/config"
	"dlassist/internal/journal"
	"dlassist/internal/notifications"
	"dlassist/internal/testsupport"
	"dlassist/internal/watcher"
)

func newDashboardForTest(t *testing.T) (*dashboardServer, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := config.NewStore(cfg, filepath.Join(testsupport.BaseDir(cfg), "config.toml"))
	journalStore, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	watch := watcher.New(cfg, func(context.Context, string) {}, nil)
	d, err := New(cfg, store, journalStore, watch, notifications.NewService(cfg), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	srv, err := newDashboardServer(cfg, d, nil)
	if err != nil {
		t.Fatalf("newDashboardServer: %v", err)
	}
	return srv, cfg
}

func serveDashboard(t *testing.T, srv *dashboardServer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(w, req)
	return w
}

func TestDashboardHandleStatus(t *testing.T) {
	srv, cfg := newDashboardForTest(t)

	w := serveDashboard(t, srv, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var status api.DaemonStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Running {
		t.Fatal("expected not running")
	}
	if status.JournalDBPath != cfg.JournalPath() {
		t.Fatalf("unexpected journal path %q", status.JournalDBPath)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency statuses")
	}
}

func TestDashboardConfigRoundTrip(t *testing.T) {
	srv, cfg := newDashboardForTest(t)

	w := serveDashboard(t, srv, http.MethodGet, "/api/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var tree map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &tree); err != nil {
		t.Fatalf("failed to decode config tree: %v", err)
	}
	if tree["downloads_folder"] != cfg.DownloadsFolder {
		t.Fatalf("unexpected downloads_folder %v", tree["downloads_folder"])
	}

	w = serveDashboard(t, srv, http.MethodPost, "/api/config", `{"watcher.poll_interval_ms": 40}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK after bulk set, got %d: %s", w.Code, w.Body.String())
	}
	tree = nil
	if err := json.Unmarshal(w.Body.Bytes(), &tree); err != nil {
		t.Fatalf("failed to decode updated tree: %v", err)
	}
	section, ok := tree["watcher"].(map[string]any)
	if !ok {
		t.Fatalf("expected watcher section, got %T", tree["watcher"])
	}
	if section["poll_interval_ms"] != float64(40) {
		t.Fatalf("expected poll_interval_ms 40, got %v", section["poll_interval_ms"])
	}
}

func TestDashboardConfigBulkSetRejectsUnknownKey(t *testing.T) {
	srv, _ := newDashboardForTest(t)

	w := serveDashboard(t, srv, http.MethodPost, "/api/config", `{"no_such_key": 1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown key, got %d", w.Code)
	}
}

func TestDashboardConfigKey(t *testing.T) {
	srv, cfg := newDashboardForTest(t)

	w := serveDashboard(t, srv, http.MethodGet, "/api/config/downloads_folder", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var value api.ConfigValueResponse
	if err := json.Unmarshal(w.Body.Bytes(), &value); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if value.Key != "downloads_folder" || value.Value != cfg.DownloadsFolder {
		t.Fatalf("unexpected value response: %+v", value)
	}

	w = serveDashboard(t, srv, http.MethodPut, "/api/config/duplicate_detection.keep_newest", `{"value": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK after put, got %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &value); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if value.Value != false {
		t.Fatalf("expected false after put, got %v", value.Value)
	}

	w = serveDashboard(t, srv, http.MethodGet, "/api/config/bogus.key", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown key, got %d", w.Code)
	}
}

func TestDashboardQuarantineListing(t *testing.T) {
	srv, cfg := newDashboardForTest(t)

	testsupport.WriteText(t, filepath.Join(cfg.QuarantineFolder, "stray.xyz"), "contents")

	w := serveDashboard(t, srv, http.MethodGet, "/api/folders/quarantine", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var listing api.QuarantineListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listing.Files) != 1 || listing.Files[0].Name != "stray.xyz" {
		t.Fatalf("unexpected listing %+v", listing.Files)
	}
	if listing.Files[0].Size != int64(len("contents")) {
		t.Fatalf("unexpected size %d", listing.Files[0].Size)
	}
}

func TestDashboardRejectsWrongMethod(t *testing.T) {
	srv, _ := newDashboardForTest(t)

	if w := serveDashboard(t, srv, http.MethodPost, "/healthz", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST /healthz, got %d", w.Code)
	}
	if w := serveDashboard(t, srv, http.MethodDelete, "/api/status", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for DELETE /api/status, got %d", w.Code)
	}
}
