package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// DuplicateDetection controls how incoming files are compared against files
// already present at their destination.
type DuplicateDetection struct {
	Enabled       bool   `toml:"enabled"`
	CompareMethod string `toml:"compare_method"`
	KeepNewest    bool   `toml:"keep_newest"`
}

// Monitoring contains event filtering switches for the watcher.
type Monitoring struct {
	IgnoreHidden bool `toml:"ignore_hidden"`
	IgnoreTemp   bool `toml:"ignore_temp"`
}

// Quarantine controls the fallback holding directory for files whose category
// has no configured destination.
type Quarantine struct {
	Enabled bool `toml:"enabled"`
}

// Watcher contains readiness polling intervals, in milliseconds.
type Watcher struct {
	PollIntervalMS int `toml:"poll_interval_ms"`
	SettleDelayMS  int `toml:"settle_delay_ms"`
	ReadyTimeoutMS int `toml:"ready_timeout_ms"`
}

// Daemon contains background service behaviour.
type Daemon struct {
	ProcessExistingOnStart bool `toml:"process_existing_on_start"`
}

// Dashboard contains the administrative HTTP surface settings.
type Dashboard struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Processed      bool   `toml:"processed"`
	Quarantined    bool   `toml:"quarantined"`
	Duplicates     bool   `toml:"duplicates"`
	Errors         bool   `toml:"errors"`
}

// Vision contains settings for the optional image/video analysis API.
type Vision struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Directory string `toml:"directory"`
	Format    string `toml:"format"`
	Level     string `toml:"level"`
}

// Config encapsulates all configuration values for the intake pipeline.
//
// Configuration sections by subsystem:
//   - top level: downloads_folder (watched directory) and quarantine_folder
//   - FileTypes: category to extension-list mapping used for classification
//   - NamingPatterns: category to filename template mapping, plus "default"
//   - Destinations: category to ordered destination directory list
//   - DuplicateDetection: equivalence rule and survivor policy
//   - Monitoring: watcher event filtering
//   - Quarantine: fallback routing for categories with no destination
//   - Watcher: readiness polling intervals
//   - Daemon: background service behaviour
//   - Dashboard: administrative HTTP surface
//   - Notifications: ntfy push notification settings
//   - Vision: optional media analysis API
//   - Logging: log directory, format, and level
type Config struct {
	DownloadsFolder  string `toml:"downloads_folder"`
	QuarantineFolder string `toml:"quarantine_folder"`

	FileTypes      map[string][]string `toml:"file_types"`
	NamingPatterns map[string]string   `toml:"naming_patterns"`
	Destinations   map[string][]string `toml:"destinations"`

	DuplicateDetection DuplicateDetection `toml:"duplicate_detection"`
	Monitoring         Monitoring         `toml:"monitoring"`
	Quarantine         Quarantine         `toml:"quarantine"`
	Watcher            Watcher            `toml:"watcher"`
	Daemon             Daemon             `toml:"daemon"`
	Dashboard          Dashboard          `toml:"dashboard"`
	Notifications      Notifications      `toml:"notifications"`
	Vision             Vision             `toml:"vision"`
	Logging            Logging            `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dlassist/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/dlassist/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dlassist.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// Destination directories are created on a best-effort basis so the daemon can
// run when external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DownloadsFolder, c.LogDir()} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Quarantine.Enabled && strings.TrimSpace(c.QuarantineFolder) != "" {
		if err := os.MkdirAll(c.QuarantineFolder, 0o755); err != nil {
			return fmt.Errorf("create quarantine directory %q: %w", c.QuarantineFolder, err)
		}
	}
	for _, dirs := range c.Destinations {
		for _, dir := range dirs {
			if strings.TrimSpace(dir) == "" {
				continue
			}
			// Best-effort to avoid failing startup when storage is offline.
			_ = os.MkdirAll(dir, 0o755)
		}
	}
	return nil
}

// LogDir returns the expanded log/state directory.
func (c *Config) LogDir() string {
	return c.Logging.Directory
}

// SocketPath returns the daemon control socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.LogDir(), "dlassistd.sock")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.LogDir(), "dlassistd.lock")
}

// PidPath returns the daemon pid file location.
func (c *Config) PidPath() string {
	return filepath.Join(c.LogDir(), "dlassistd.pid")
}

// JournalPath returns the intake history database location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogDir(), "journal.db")
}

// LogFilePath returns the JSON log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.LogDir(), "dlassist.log")
}

// PollInterval returns the watcher size-poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watcher.PollIntervalMS) * time.Millisecond
}

// SettleDelay returns the post-stability settle wait.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Watcher.SettleDelayMS) * time.Millisecond
}

// ReadyTimeout returns the bound on the readiness wait.
func (c *Config) ReadyTimeout() time.Duration {
	return time.Duration(c.Watcher.ReadyTimeoutMS) * time.Millisecond
}

// Categories returns the configured category names in sorted order.
func (c *Config) Categories() []string {
	names := make([]string, 0, len(c.FileTypes))
	for name := range c.FileTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
