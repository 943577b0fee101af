package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dlassist/internal/classify"
	"dlassist/internal/logging"
)

// Attributes is the sparse attribute mapping extraction produces. Values are
// strings so they can be substituted into naming templates directly.
type Attributes map[string]string

// Extractor discovers attributes for one family of file formats.
// Implementations are best-effort: missing or unreadable data is not an
// error worth failing an intake over, and only non-empty values should be
// set so they never clobber attributes from an earlier pass.
type Extractor interface {
	// Name identifies the extractor in logs.
	Name() string
	// Handles reports whether the extractor applies to the lowercase
	// extension.
	Handles(ext string) bool
	// Extract merges everything it can discover about path into attrs.
	Extract(ctx context.Context, path string, attrs Attributes) error
}

// defaultCallTimeout bounds a single extractor call so a hung parser or a
// slow remote service cannot stall the whole intake.
const defaultCallTimeout = 15 * time.Second

// Source produces metadata for files by combining filesystem attributes with
// format-specific extractors.
type Source struct {
	logger      *slog.Logger
	callTimeout time.Duration
	extractors  []Extractor
}

// NewSource builds a Source over the given extractors, applied in order. A
// non-positive callTimeout selects the default per-extractor bound.
func NewSource(logger *slog.Logger, callTimeout time.Duration, extractors ...Extractor) *Source {
	if logger == nil {
		logger = logging.NewNop()
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Source{
		logger:      logging.NewComponentLogger(logger, "metadata"),
		callTimeout: callTimeout,
		extractors:  extractors,
	}
}

// Extract returns the attributes discoverable for path. The base filesystem
// attributes are always present; extractor failures degrade to their absence.
func (s *Source) Extract(ctx context.Context, path string) Attributes {
	attrs := Attributes{}
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Debug("stat failed during extraction",
			logging.String(logging.FieldPath, path),
			logging.Error(err))
		return attrs
	}

	base := filepath.Base(path)
	ext := classify.Extension(path)
	modified := info.ModTime()
	created := changeTime(info)

	attrs["filename"] = strings.TrimSuffix(base, filepath.Ext(base))
	attrs["ext"] = ext
	attrs["size"] = strconv.FormatInt(info.Size(), 10)
	attrs["created"] = created.Format(time.RFC3339)
	attrs["modified"] = modified.Format(time.RFC3339)
	attrs["created_date"] = created.Format("2006-01-02")
	attrs["modified_date"] = modified.Format("2006-01-02")
	attrs["date"] = modified.Format("2006-01-02")
	attrs["time"] = modified.Format("15-04-05")

	for _, extractor := range s.extractors {
		if !extractor.Handles(ext) {
			continue
		}
		s.runExtractor(ctx, extractor, path, attrs)
	}
	return attrs
}

// runExtractor executes one extractor against a scratch map under the call
// timeout. The scratch map is merged only on clean completion, so a timed-out
// extractor that later writes cannot race the caller.
func (s *Source) runExtractor(ctx context.Context, extractor Extractor, path string, attrs Attributes) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	scratch := Attributes{}
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- extractor.Extract(ctx, path, scratch)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Debug("metadata extractor failed",
				logging.String("extractor", extractor.Name()),
				logging.String(logging.FieldPath, path),
				logging.Error(err))
			return
		}
		for key, value := range scratch {
			if value != "" {
				attrs[key] = value
			}
		}
	case <-ctx.Done():
		s.logger.Warn("metadata extractor timed out",
			logging.String("extractor", extractor.Name()),
			logging.String(logging.FieldPath, path),
			logging.Duration("timeout", s.callTimeout))
	}
}
