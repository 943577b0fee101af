package deps

import (
	"fmt"
	"os/exec"
)

// FFmpegStatus reports the ffmpeg binary used for video frame extraction.
func FFmpegStatus() Status {
	return lookTool("FFmpeg", "ffmpeg", "Extracts video frames for vision analysis")
}

// FFprobeStatus reports the ffprobe binary used to measure video duration.
func FFprobeStatus() Status {
	return lookTool("FFprobe", "ffprobe", "Measures video duration for frame selection")
}

func lookTool(name, command, description string) Status {
	status := Status{
		Name:        name,
		Command:     command,
		Description: description,
		Optional:    true,
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", command)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}
