package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dlassist/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func visionHealthServer(t *testing.T, key string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+key {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp := map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{"content": `{"ok":true}`},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestCheckVision_OK(t *testing.T) {
	srv := visionHealthServer(t, "good-key")
	defer srv.Close()

	cfg := config.Default()
	cfg.Vision.Enabled = true
	cfg.Vision.APIKey = "good-key"
	cfg.Vision.BaseURL = srv.URL

	result := CheckVision(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckVision_BadKey(t *testing.T) {
	srv := visionHealthServer(t, "good-key")
	defer srv.Close()

	cfg := config.Default()
	cfg.Vision.Enabled = true
	cfg.Vision.APIKey = "bad-key"
	cfg.Vision.BaseURL = srv.URL

	result := CheckVision(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckVision_MissingKey(t *testing.T) {
	cfg := config.Default()
	cfg.Vision.Enabled = true
	cfg.Vision.APIKey = ""

	result := CheckVision(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DownloadsFolder = t.TempDir()
	cfg.Logging.Directory = t.TempDir()
	cfg.Quarantine.Enabled = false
	cfg.Destinations = nil
	cfg.Vision.Enabled = false

	results := RunAll(context.Background(), &cfg)
	// Should have downloads + log directory checks
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_IncludesDestinations(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()

	cfg := config.Default()
	cfg.DownloadsFolder = t.TempDir()
	cfg.Logging.Directory = t.TempDir()
	cfg.Quarantine.Enabled = false
	cfg.Vision.Enabled = false
	cfg.Destinations = map[string][]string{
		"documents": {primary, fallback},
	}

	results := RunAll(context.Background(), &cfg)
	var names []string
	for _, r := range results {
		names = append(names, r.Name)
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	want := map[string]bool{
		"Destination (documents)":             false,
		"Destination (documents, fallback 1)": false,
	}
	for _, name := range names {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("expected check %q in results %v", name, names)
		}
	}
}

func TestRunAll_IncludesVisionWhenEnabled(t *testing.T) {
	srv := visionHealthServer(t, "test")
	defer srv.Close()

	cfg := config.Default()
	cfg.DownloadsFolder = t.TempDir()
	cfg.Logging.Directory = t.TempDir()
	cfg.Quarantine.Enabled = false
	cfg.Destinations = nil
	cfg.Vision.Enabled = true
	cfg.Vision.APIKey = "test"
	cfg.Vision.BaseURL = srv.URL

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Vision API" {
			found = true
			if !r.Passed {
				t.Errorf("vision check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected vision check in results")
	}
}

func TestCheckNotificationsFromConfig(t *testing.T) {
	cfg := config.Default()
	result := CheckNotificationsFromConfig(&cfg)
	if !result.Passed || result.Detail != "Not configured" {
		t.Fatalf("expected unconfigured pass, got %+v", result)
	}

	cfg.Notifications.NtfyTopic = "downloads-alerts"
	result = CheckNotificationsFromConfig(&cfg)
	if result.Passed {
		t.Fatalf("expected failure for bare topic name, got %+v", result)
	}

	cfg.Notifications.NtfyTopic = "https://ntfy.sh/downloads-alerts"
	result = CheckNotificationsFromConfig(&cfg)
	if !result.Passed {
		t.Fatalf("expected pass for full URL, got %+v", result)
	}
}
