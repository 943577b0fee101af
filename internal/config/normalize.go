package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFileTypes()
	c.normalizeNamingPatterns()
	if err := c.normalizeDestinations(); err != nil {
		return err
	}
	c.normalizeDuplicateDetection()
	c.normalizeWatcher()
	c.normalizeDashboard()
	c.normalizeNotifications()
	c.normalizeVision()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.DownloadsFolder, err = expandPath(c.DownloadsFolder); err != nil {
		return fmt.Errorf("downloads_folder: %w", err)
	}
	if c.QuarantineFolder, err = expandPath(c.QuarantineFolder); err != nil {
		return fmt.Errorf("quarantine_folder: %w", err)
	}
	if strings.TrimSpace(c.Logging.Directory) == "" {
		c.Logging.Directory = defaultLogDir
	}
	if c.Logging.Directory, err = expandPath(c.Logging.Directory); err != nil {
		return fmt.Errorf("logging.directory: %w", err)
	}
	return nil
}

func (c *Config) normalizeFileTypes() {
	if len(c.FileTypes) == 0 {
		c.FileTypes = Default().FileTypes
		return
	}
	normalized := make(map[string][]string, len(c.FileTypes))
	for category, extensions := range c.FileTypes {
		name := strings.ToLower(strings.TrimSpace(category))
		if name == "" {
			continue
		}
		exts := make([]string, 0, len(extensions))
		seen := make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			cleaned := strings.ToLower(strings.TrimSpace(ext))
			cleaned = strings.TrimPrefix(cleaned, ".")
			if cleaned == "" {
				continue
			}
			if _, dup := seen[cleaned]; dup {
				continue
			}
			seen[cleaned] = struct{}{}
			exts = append(exts, cleaned)
		}
		if len(exts) == 0 {
			continue
		}
		normalized[name] = exts
	}
	c.FileTypes = normalized
}

func (c *Config) normalizeNamingPatterns() {
	if c.NamingPatterns == nil {
		c.NamingPatterns = map[string]string{}
	}
	normalized := make(map[string]string, len(c.NamingPatterns))
	for category, pattern := range c.NamingPatterns {
		name := strings.ToLower(strings.TrimSpace(category))
		pattern = strings.TrimSpace(pattern)
		if name == "" || pattern == "" {
			continue
		}
		normalized[name] = pattern
	}
	if _, ok := normalized["default"]; !ok {
		normalized["default"] = defaultNamingPattern
	}
	c.NamingPatterns = normalized
}

func (c *Config) normalizeDestinations() error {
	if c.Destinations == nil {
		c.Destinations = map[string][]string{}
	}
	normalized := make(map[string][]string, len(c.Destinations))
	for category, dirs := range c.Destinations {
		name := strings.ToLower(strings.TrimSpace(category))
		if name == "" {
			continue
		}
		expanded := make([]string, 0, len(dirs))
		for _, dir := range dirs {
			if strings.TrimSpace(dir) == "" {
				continue
			}
			dir, err := expandPath(dir)
			if err != nil {
				return fmt.Errorf("destinations.%s: %w", name, err)
			}
			expanded = append(expanded, dir)
		}
		if len(expanded) == 0 {
			continue
		}
		normalized[name] = expanded
	}
	c.Destinations = normalized
	return nil
}

func (c *Config) normalizeDuplicateDetection() {
	method := strings.ToLower(strings.TrimSpace(c.DuplicateDetection.CompareMethod))
	if method == "" {
		method = defaultCompareMethod
	}
	c.DuplicateDetection.CompareMethod = method
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.PollIntervalMS <= 0 {
		c.Watcher.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Watcher.SettleDelayMS < 0 {
		c.Watcher.SettleDelayMS = defaultSettleDelayMS
	}
	if c.Watcher.ReadyTimeoutMS <= 0 {
		c.Watcher.ReadyTimeoutMS = defaultReadyTimeoutMS
	}
}

func (c *Config) normalizeDashboard() {
	c.Dashboard.Listen = strings.TrimSpace(c.Dashboard.Listen)
	if c.Dashboard.Listen == "" {
		c.Dashboard.Listen = defaultDashboardListen
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeVision() {
	c.Vision.APIKey = strings.TrimSpace(c.Vision.APIKey)
	if c.Vision.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Vision.APIKey = strings.TrimSpace(value)
		}
	}
	c.Vision.BaseURL = strings.TrimSpace(c.Vision.BaseURL)
	if c.Vision.BaseURL == "" {
		c.Vision.BaseURL = defaultVisionBaseURL
	}
	c.Vision.Model = strings.TrimSpace(c.Vision.Model)
	if c.Vision.Model == "" {
		c.Vision.Model = defaultVisionModel
	}
	if c.Vision.TimeoutSeconds <= 0 {
		c.Vision.TimeoutSeconds = defaultVisionTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
