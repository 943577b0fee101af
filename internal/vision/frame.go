package vision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// FrameGrabber extracts a representative still frame from a video using ffmpeg.
type FrameGrabber struct {
	ffmpeg  string
	ffprobe string
}

// GrabberOption customizes the frame grabber.
type GrabberOption func(*FrameGrabber)

// WithFFmpeg overrides the ffmpeg binary name.
func WithFFmpeg(binary string) GrabberOption {
	return func(g *FrameGrabber) {
		if binary != "" {
			g.ffmpeg = binary
		}
	}
}

// WithFFprobe overrides the ffprobe binary name.
func WithFFprobe(binary string) GrabberOption {
	return func(g *FrameGrabber) {
		if binary != "" {
			g.ffprobe = binary
		}
	}
}

// NewFrameGrabber constructs a frame grabber that resolves its binaries from PATH.
func NewFrameGrabber(opts ...GrabberOption) *FrameGrabber {
	grabber := &FrameGrabber{ffmpeg: "ffmpeg", ffprobe: "ffprobe"}
	for _, opt := range opts {
		opt(grabber)
	}
	return grabber
}

// Available reports whether the ffmpeg binary can be resolved.
func (g *FrameGrabber) Available() bool {
	_, err := exec.LookPath(g.ffmpeg)
	return err == nil
}

// Grab decodes one frame from the video and returns it as JPEG bytes. The
// frame is taken at the 10% position when ffprobe can measure the duration,
// and a few seconds in otherwise.
func (g *FrameGrabber) Grab(ctx context.Context, videoPath string) ([]byte, error) {
	if strings.TrimSpace(videoPath) == "" {
		return nil, errors.New("video path required")
	}
	offset := g.seekOffset(ctx, videoPath)

	tmp, err := os.CreateTemp("", "dlassist-frame-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("create frame file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close frame file: %w", err)
	}
	defer os.Remove(tmpPath)

	args := []string{
		"-v", "error",
		"-ss", formatSeek(offset),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", tmpPath,
	}
	cmd := commandContext(ctx, g.ffmpeg, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return nil, fmt.Errorf("ffmpeg frame grab: %w", err)
		}
		return nil, fmt.Errorf("ffmpeg frame grab: %w: %s", err, detail)
	}

	frame, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if len(frame) == 0 {
		return nil, errors.New("ffmpeg produced an empty frame")
	}
	return frame, nil
}

func (g *FrameGrabber) seekOffset(ctx context.Context, videoPath string) time.Duration {
	const fallback = 3 * time.Second
	if g.ffprobe == "" {
		return fallback
	}
	if _, err := exec.LookPath(g.ffprobe); err != nil {
		return fallback
	}
	cmd := commandContext(ctx, g.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return fallback
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil || seconds <= 0 {
		return fallback
	}
	offset := time.Duration(seconds * 0.1 * float64(time.Second))
	if offset < 0 {
		return 0
	}
	return offset
}

func formatSeek(offset time.Duration) string {
	return strconv.FormatFloat(offset.Seconds(), 'f', 3, 64)
}
