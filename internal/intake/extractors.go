package intake

import (
	"log/slog"
	"strings"
	"time"

	"dlassist/internal/config"
	"dlassist/internal/metadata"
	"dlassist/internal/vision"
)

// visionCallHeadroom pads the per-extractor timeout beyond the vision API
// budget so frame extraction and retries are not cut off mid-call.
const visionCallHeadroom = 30 * time.Second

// NewMetadataSource assembles the extractor chain for cfg. Format parsers are
// always registered; the vision analyzer joins only when enabled and keyed,
// and runs last so its attributes win over tag-derived ones.
func NewMetadataSource(cfg *config.Config, logger *slog.Logger) *metadata.Source {
	extractors := []metadata.Extractor{
		metadata.NewImageExtractor(),
		metadata.NewAudioExtractor(),
		metadata.NewPDFExtractor(),
		metadata.NewHTMLExtractor(),
	}

	var callTimeout time.Duration
	if cfg.Vision.Enabled && strings.TrimSpace(cfg.Vision.APIKey) != "" {
		client := vision.NewClient(vision.Config{
			APIKey:         cfg.Vision.APIKey,
			BaseURL:        cfg.Vision.BaseURL,
			Model:          cfg.Vision.Model,
			TimeoutSeconds: cfg.Vision.TimeoutSeconds,
		})
		analyzer := vision.NewAnalyzer(client, vision.NewFrameGrabber(), logger)
		extractors = append(extractors, analyzer)
		callTimeout = client.Timeout() + visionCallHeadroom
	}

	return metadata.NewSource(logger, callTimeout, extractors...)
}
