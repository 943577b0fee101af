package vision

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"dlassist/internal/classify"
	"dlassist/internal/logging"
	"dlassist/internal/metadata"
)

var imageExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

var videoExtensions = map[string]bool{
	"mp4":  true,
	"avi":  true,
	"mkv":  true,
	"mov":  true,
	"wmv":  true,
	"flv":  true,
	"webm": true,
}

// Analyzer enriches file metadata by showing the file (or one frame of it, for
// videos) to a vision model. It plugs into the metadata pipeline as a regular
// extractor, so a slow or failing model never blocks an intake.
type Analyzer struct {
	client *Client
	frames *FrameGrabber
	logger *slog.Logger
}

// NewAnalyzer constructs an analyzer around the supplied client. The frame
// grabber may be nil, in which case videos are skipped.
func NewAnalyzer(client *Client, frames *FrameGrabber, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{
		client: client,
		frames: frames,
		logger: logging.NewComponentLogger(logger, "vision"),
	}
}

// Name identifies the extractor in logs.
func (a *Analyzer) Name() string { return "vision" }

// Handles reports whether the extension belongs to a supported image or video type.
func (a *Analyzer) Handles(ext string) bool {
	if _, ok := imageExtensions[ext]; ok {
		return true
	}
	return videoExtensions[ext]
}

// Extract runs the vision analysis and merges the observation into attrs.
func (a *Analyzer) Extract(ctx context.Context, path string, attrs metadata.Attributes) error {
	ext := classify.Extension(path)

	var (
		frame  []byte
		mime   string
		prompt string
	)
	switch {
	case imageExtensions[ext] != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		frame = data
		mime = imageExtensions[ext]
		prompt = ImagePrompt
	case videoExtensions[ext]:
		if a.frames == nil || !a.frames.Available() {
			a.logger.Debug("skipping video analysis, ffmpeg unavailable", slog.String("path", path))
			return nil
		}
		data, err := a.frames.Grab(ctx, path)
		if err != nil {
			return fmt.Errorf("extract frame: %w", err)
		}
		frame = data
		mime = "image/jpeg"
		prompt = VideoPrompt
	default:
		return nil
	}

	observation, err := a.client.Describe(ctx, prompt, frame, mime)
	if err != nil {
		return err
	}

	setIfPresent(attrs, "artist", observation.Artist)
	setIfPresent(attrs, "title", observation.Title)
	setIfPresent(attrs, "content_type", observation.ContentType)
	setIfPresent(attrs, "video_type", observation.VideoType)
	setIfPresent(attrs, "description", observation.Description)
	if observation.RatingKnown {
		attrs["content_rating"] = observation.ContentRating
	}
	return nil
}

func setIfPresent(attrs metadata.Attributes, key, value string) {
	if value == "" {
		return
	}
	attrs[key] = value
}
