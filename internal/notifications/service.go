package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dlassist/internal/config"
)

const userAgent = "dlassist/0.1.0"

// Event names a notification-worthy occurrence.
type Event string

const (
	EventFileProcessed    Event = "file_processed"
	EventFileQuarantined  Event = "file_quarantined"
	EventDuplicateDeleted Event = "duplicate_deleted"
	EventIntakeFailed     Event = "intake_failed"
	EventDaemonStarted    Event = "daemon_started"
	EventDaemonStopped    Event = "daemon_stopped"
	EventTest             Event = "test"
)

// Payload carries the per-event message fields.
type Payload map[string]string

// Service publishes events to the configured push channel. Events switched
// off in configuration are dropped silently.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		switches: cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	switches config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled(event) {
		return nil
	}
	data, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, data)
}

// enabled applies the per-event configuration switches. Daemon lifecycle and
// test events ride on the topic alone.
func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventFileProcessed:
		return n.switches.Processed
	case EventFileQuarantined:
		return n.switches.Quarantined
	case EventDuplicateDeleted:
		return n.switches.Duplicates
	case EventIntakeFailed:
		return n.switches.Errors
	default:
		return true
	}
}

func format(event Event, payload Payload) (message, bool) {
	get := func(key string) string {
		return strings.TrimSpace(payload[key])
	}

	switch event {
	case EventFileProcessed:
		body := fmt.Sprintf("✅ Sorted: %s (%s)", get("name"), orUnknown(get("category")))
		if final := get("final"); final != "" {
			body += "\nFile: " + final
		}
		return message{
			title: "dlassist - File Sorted",
			body:  body,
			tags:  []string{"dlassist", "sorted"},
		}, true
	case EventFileQuarantined:
		return message{
			title: "dlassist - Quarantined",
			body:  fmt.Sprintf("📦 Quarantined: %s\nNo destination for category %q", get("name"), orUnknown(get("category"))),
			tags:  []string{"dlassist", "quarantine"},
		}, true
	case EventDuplicateDeleted:
		body := fmt.Sprintf("🗑 Duplicate removed: %s", get("name"))
		if kept := get("kept"); kept != "" {
			body += "\nKept: " + kept
		}
		return message{
			title: "dlassist - Duplicate",
			body:  body,
			tags:  []string{"dlassist", "duplicate"},
		}, true
	case EventIntakeFailed:
		reason := get("error")
		if reason == "" {
			reason = "unknown"
		}
		return message{
			title:    "dlassist - Error",
			body:     fmt.Sprintf("❌ Error with %s: %s", get("name"), reason),
			tags:     []string{"dlassist", "error", "alert"},
			priority: "high",
		}, true
	case EventDaemonStarted:
		return message{
			title: "dlassist - Started",
			body:  fmt.Sprintf("Watching %s", get("folder")),
			tags:  []string{"dlassist", "daemon", "started"},
		}, true
	case EventDaemonStopped:
		return message{
			title: "dlassist - Stopped",
			body:  "Download monitoring stopped",
			tags:  []string{"dlassist", "daemon", "stopped"},
		}, true
	case EventTest:
		return message{
			title:    "dlassist - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"dlassist", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
