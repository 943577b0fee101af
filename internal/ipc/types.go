package ipc

import (
	"time"

	"dlassist/internal/api"
)

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// IntakeRecord mirrors the HTTP API journal DTO for internal IPC callers.
type IntakeRecord = api.IntakeRecord

// DependencyStatus describes availability of an external dependency.
type DependencyStatus = api.DependencyStatus

// QuarantineFile describes one quarantined file.
type QuarantineFile = api.QuarantineFile

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running         bool               `json:"running"`
	PID             int                `json:"pid"`
	StartedAt       time.Time          `json:"started_at"`
	DownloadsFolder string             `json:"downloads_folder"`
	JournalDBPath   string             `json:"journal_db_path"`
	LockPath        string             `json:"lock_path"`
	SocketPath      string             `json:"socket_path"`
	DashboardAddr   string             `json:"dashboard_addr"`
	Dependencies    []DependencyStatus `json:"dependencies"`
	Intakes         map[string]int     `json:"intakes"`
}

// ProcessExistingRequest sweeps the downloads folder through the pipeline.
type ProcessExistingRequest struct{}

// ProcessExistingResponse reports the number of files dispatched.
type ProcessExistingResponse struct {
	Dispatched int `json:"dispatched"`
}

// RecentIntakesRequest fetches journal history. Limit <= 0 uses the default.
type RecentIntakesRequest struct {
	Limit int `json:"limit"`
}

// RecentIntakesResponse contains journal entries, newest first.
type RecentIntakesResponse struct {
	Entries []IntakeRecord `json:"entries"`
}

// QuarantineEntriesRequest lists the quarantine folder.
type QuarantineEntriesRequest struct{}

// QuarantineEntriesResponse contains quarantined files, newest first.
type QuarantineEntriesResponse struct {
	Files []QuarantineFile `json:"files"`
}

// ConfigGetRequest resolves one dotted configuration key.
type ConfigGetRequest struct {
	Key string `json:"key"`
}

// ConfigGetResponse carries the resolved value.
type ConfigGetResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ConfigSetRequest updates one dotted configuration key.
type ConfigSetRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ConfigSetResponse echoes the persisted value.
type ConfigSetResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ConfigAllRequest fetches the full configuration tree.
type ConfigAllRequest struct{}

// ConfigAllResponse contains the configuration keyed like the TOML file.
type ConfigAllResponse struct {
	Config map[string]any `json:"config"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
