package preflight

import (
	"context"
	"net/url"
	"strings"

	"dlassist/internal/config"
)

// CheckVisionFromConfig evaluates vision analysis status from config and connectivity.
func CheckVisionFromConfig(cfg *config.Config) Result {
	const name = "Vision API"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Vision.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.Vision.APIKey) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	check := CheckVision(context.Background(), cfg)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// CheckNotificationsFromConfig validates the ntfy topic configuration without
// sending anything. The topic must be a full http(s) publish URL.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Result{Name: name, Passed: true, Detail: "Not configured"}
	}
	parsed, err := url.Parse(topic)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Result{Name: name, Detail: "ntfy topic must be a full http(s) URL"}
	}
	return Result{Name: name, Passed: true, Detail: "ntfy topic " + parsed.Host + parsed.Path}
}
