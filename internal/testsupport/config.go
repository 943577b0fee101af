package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dlassist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test:
// downloads and quarantine folders, a log directory, and a single "documents"
// destination. Watcher timings are shortened so readiness waits do not stall
// the suite, and duplicate detection starts disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.DownloadsFolder = filepath.Join(base, "downloads")
	cfgVal.QuarantineFolder = filepath.Join(base, "quarantine")
	cfgVal.Logging.Directory = filepath.Join(base, "logs")
	cfgVal.FileTypes = map[string][]string{
		"documents": {"pdf", "txt"},
		"images":    {"jpg", "png"},
	}
	cfgVal.NamingPatterns = map[string]string{"default": "{filename}.{ext}"}
	cfgVal.Destinations = map[string][]string{
		"documents": {filepath.Join(base, "sorted", "documents")},
		"images":    {filepath.Join(base, "sorted", "images")},
	}
	cfgVal.DuplicateDetection.Enabled = false
	cfgVal.Watcher.PollIntervalMS = 10
	cfgVal.Watcher.SettleDelayMS = 5
	cfgVal.Watcher.ReadyTimeoutMS = 2000
	cfgVal.Dashboard.Listen = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDuplicateDetection enables duplicate detection with the given method
// and survivor policy.
func WithDuplicateDetection(method string, keepNewest bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DuplicateDetection.Enabled = true
		b.cfg.DuplicateDetection.CompareMethod = method
		b.cfg.DuplicateDetection.KeepNewest = keepNewest
	}
}

// WithVisionKey enables vision analysis with the given API key.
func WithVisionKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Vision.Enabled = true
		b.cfg.Vision.APIKey = key
	}
}

// WithNtfyTopic points push notifications at a topic URL, usually an
// httptest server.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.DownloadsFolder)
}
