package metadata

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

var audioExtensions = map[string]struct{}{
	"mp3":  {},
	"wav":  {},
	"flac": {},
	"aac":  {},
	"ogg":  {},
	"m4a":  {},
	"wma":  {},
	"mp4":  {},
	"m4v":  {},
}

// AudioExtractor reads embedded tags (ID3, MP4 atoms, Vorbis comments) from
// audio files and tagged video containers.
type AudioExtractor struct{}

func NewAudioExtractor() *AudioExtractor { return &AudioExtractor{} }

func (e *AudioExtractor) Name() string { return "audio" }

func (e *AudioExtractor) Handles(ext string) bool {
	_, ok := audioExtensions[ext]
	return ok
}

func (e *AudioExtractor) Extract(ctx context.Context, path string, attrs Attributes) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged media is common and not an error worth surfacing.
		return nil
	}
	setIfPresent(attrs, "title", m.Title())
	setIfPresent(attrs, "artist", m.Artist())
	setIfPresent(attrs, "album", m.Album())
	if year := m.Year(); year > 0 {
		attrs["year"] = strconv.Itoa(year)
	}
	return nil
}

func setIfPresent(attrs Attributes, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		attrs[key] = value
	}
}
