package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dlassist/internal/config"
)

func newStoreForTest(t *testing.T) *config.Store {
	t.Helper()
	tempDir := t.TempDir()

	cfg := config.Default()
	cfg.DownloadsFolder = filepath.Join(tempDir, "downloads")
	cfg.QuarantineFolder = filepath.Join(tempDir, "quarantine")
	cfg.Logging.Directory = filepath.Join(tempDir, "logs")
	cfg.Destinations = map[string][]string{
		"images": {filepath.Join(tempDir, "pictures")},
	}
	return config.NewStore(&cfg, filepath.Join(tempDir, "config.toml"))
}

func TestStoreGetDottedKeys(t *testing.T) {
	store := newStoreForTest(t)

	value, err := store.Get("duplicate_detection.compare_method")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if value != "hash" {
		t.Fatalf("unexpected compare method: %v", value)
	}

	value, err = store.Get("watcher.poll_interval_ms")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if value != int64(1000) {
		t.Fatalf("unexpected poll interval: %v (%T)", value, value)
	}

	if _, err := store.Get("no.such.key"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if _, err := store.Get(""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestStoreSetPersistsAndCoerces(t *testing.T) {
	store := newStoreForTest(t)

	if err := store.Set("duplicate_detection.keep_newest", "false"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := store.Set("watcher.poll_interval_ms", "250"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := store.Set("file_types.images", "jpg, png ,webp"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	cfg := store.Config()
	if cfg.DuplicateDetection.KeepNewest {
		t.Fatal("expected keep_newest false after Set")
	}
	if cfg.Watcher.PollIntervalMS != 250 {
		t.Fatalf("expected poll interval 250, got %d", cfg.Watcher.PollIntervalMS)
	}
	exts := cfg.FileTypes["images"]
	if len(exts) != 3 || exts[0] != "jpg" || exts[1] != "png" || exts[2] != "webp" {
		t.Fatalf("unexpected image extensions: %v", exts)
	}

	// Every Set rewrites the backing file; a fresh Load must see the change.
	contents, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read persisted config: %v", err)
	}
	if !strings.Contains(string(contents), "poll_interval_ms = 250") {
		t.Fatalf("persisted config missing updated interval:\n%s", contents)
	}
	reloaded, _, exists, err := config.Load(store.Path())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected persisted config to exist")
	}
	if reloaded.Watcher.PollIntervalMS != 250 {
		t.Fatalf("reloaded poll interval: %d", reloaded.Watcher.PollIntervalMS)
	}
	if reloaded.DuplicateDetection.KeepNewest {
		t.Fatal("expected reloaded keep_newest false")
	}
}

func TestStoreSetRejectsBadInput(t *testing.T) {
	store := newStoreForTest(t)

	if err := store.Set("unknown_key", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if err := store.Set("duplicate_detection.enabled", "maybe"); err == nil {
		t.Fatal("expected error for non-boolean value")
	}
	if err := store.Set("watcher.poll_interval_ms", "soon"); err == nil {
		t.Fatal("expected error for non-integer value")
	}
	// Values that parse but fail validation must not be persisted.
	if err := store.Set("duplicate_detection.compare_method", "fuzzy"); err == nil {
		t.Fatal("expected validation error for unknown compare method")
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected no config file after rejected sets, stat err: %v", err)
	}
	if store.Config().DuplicateDetection.CompareMethod != "hash" {
		t.Fatal("expected in-memory config untouched after rejected set")
	}
}

func TestStoreAllAndKeys(t *testing.T) {
	store := newStoreForTest(t)

	all, err := store.All()
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	section, ok := all["duplicate_detection"].(map[string]any)
	if !ok {
		t.Fatalf("expected duplicate_detection table, have %T", all["duplicate_detection"])
	}
	if section["compare_method"] != "hash" {
		t.Fatalf("unexpected compare method in All: %v", section["compare_method"])
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	var sawDownloads, sawMethod bool
	for i, key := range keys {
		if i > 0 && keys[i-1] > key {
			t.Fatalf("keys not sorted: %q before %q", keys[i-1], key)
		}
		switch key {
		case "downloads_folder":
			sawDownloads = true
		case "duplicate_detection.compare_method":
			sawMethod = true
		}
	}
	if !sawDownloads || !sawMethod {
		t.Fatalf("expected dotted keys present, got %v", keys)
	}
}
