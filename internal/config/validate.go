package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFileTypes(); err != nil {
		return err
	}
	if err := c.validateDuplicateDetection(); err != nil {
		return err
	}
	if err := c.validateWatcher(); err != nil {
		return err
	}
	if err := c.validateDashboard(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.DownloadsFolder) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dlassist/config.toml"
		}
		return fmt.Errorf("downloads_folder is required. Edit %s (create with 'dlassist config init')", defaultPath)
	}
	if c.Quarantine.Enabled && strings.TrimSpace(c.QuarantineFolder) == "" {
		return errors.New("quarantine_folder must be set when quarantine.enabled is true")
	}
	return nil
}

func (c *Config) validateFileTypes() error {
	if len(c.FileTypes) == 0 {
		return errors.New("file_types must define at least one category")
	}
	seen := make(map[string]string)
	for category, extensions := range c.FileTypes {
		if len(extensions) == 0 {
			return fmt.Errorf("file_types.%s must list at least one extension", category)
		}
		for _, ext := range extensions {
			if owner, dup := seen[ext]; dup {
				return fmt.Errorf("extension %q mapped to both %s and %s", ext, owner, category)
			}
			seen[ext] = category
		}
	}
	return nil
}

func (c *Config) validateDuplicateDetection() error {
	switch c.DuplicateDetection.CompareMethod {
	case "size", "hash", "both":
		return nil
	default:
		return fmt.Errorf("duplicate_detection.compare_method must be one of size, hash, both (got %q)", c.DuplicateDetection.CompareMethod)
	}
}

func (c *Config) validateWatcher() error {
	if err := ensurePositiveMap(map[string]int{
		"watcher.poll_interval_ms": c.Watcher.PollIntervalMS,
		"watcher.ready_timeout_ms": c.Watcher.ReadyTimeoutMS,
	}); err != nil {
		return err
	}
	if c.Watcher.SettleDelayMS < 0 {
		return errors.New("watcher.settle_delay_ms must be >= 0")
	}
	if c.Watcher.ReadyTimeoutMS < c.Watcher.PollIntervalMS {
		return errors.New("watcher.ready_timeout_ms must be at least watcher.poll_interval_ms")
	}
	return nil
}

func (c *Config) validateDashboard() error {
	if c.Dashboard.Enabled && strings.TrimSpace(c.Dashboard.Listen) == "" {
		return errors.New("dashboard.listen must be set when dashboard.enabled is true")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
