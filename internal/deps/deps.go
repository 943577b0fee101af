package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency dlassist relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Default lists the external binaries dlassist can make use of. All of them
// are optional; the intake pipeline degrades gracefully when they are absent.
func Default() []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Extracts video frames for vision analysis",
			Optional:    true,
		},
		{
			Name:        "FFprobe",
			Command:     "ffprobe",
			Description: "Measures video duration for frame selection",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if resolved, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
		} else {
			status.Command = resolved
			status.Available = true
			results = append(results, status)
		}
	}
	return results
}
