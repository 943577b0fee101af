package api

import "time"

// IntakeRecord describes a journal entry in a transport-friendly format.
type IntakeRecord struct {
	ID            int64     `json:"id"`
	IntakeID      string    `json:"intakeId"`
	SourcePath    string    `json:"sourcePath"`
	FinalPath     string    `json:"finalPath,omitempty"`
	Category      string    `json:"category"`
	Action        string    `json:"action"`
	DuplicatePath string    `json:"duplicatePath,omitempty"`
	RemovedOlder  string    `json:"removedOlder,omitempty"`
	ErrorClass    string    `json:"errorClass,omitempty"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	DurationMS    int64     `json:"durationMs"`
	RecordedAt    time.Time `json:"recordedAt"`
}

// HistoryResponse wraps a collection of intake records for API responses.
type HistoryResponse struct {
	Entries []IntakeRecord `json:"entries"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running         bool               `json:"running"`
	PID             int                `json:"pid"`
	StartedAt       *time.Time         `json:"startedAt,omitempty"`
	DownloadsFolder string             `json:"downloadsFolder"`
	JournalDBPath   string             `json:"journalDbPath"`
	LockFilePath    string             `json:"lockFilePath"`
	SocketPath      string             `json:"socketPath"`
	DashboardAddr   string             `json:"dashboardAddr,omitempty"`
	Dependencies    []DependencyStatus `json:"dependencies"`
	Intakes         map[string]int     `json:"intakes,omitempty"`
}

// QuarantineFile describes one file sitting in the quarantine folder.
type QuarantineFile struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// QuarantineListResponse wraps the quarantine folder listing.
type QuarantineListResponse struct {
	Files []QuarantineFile `json:"files"`
}

// ConfigValueResponse carries a single dotted-key lookup result.
type ConfigValueResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}
