package metadata

import (
	"context"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
)

var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"webp": {},
}

// ImageExtractor reads image dimensions and, for JPEGs, EXIF capture time and
// description.
type ImageExtractor struct{}

func NewImageExtractor() *ImageExtractor { return &ImageExtractor{} }

func (e *ImageExtractor) Name() string { return "image" }

func (e *ImageExtractor) Handles(ext string) bool {
	_, ok := imageExtensions[ext]
	return ok
}

func (e *ImageExtractor) Extract(ctx context.Context, path string, attrs Attributes) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if cfg, format, err := image.DecodeConfig(f); err == nil {
		attrs["width"] = strconv.Itoa(cfg.Width)
		attrs["height"] = strconv.Itoa(cfg.Height)
		attrs["format"] = strings.ToUpper(format)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	x, err := exif.Decode(f)
	if err != nil {
		// Most images simply carry no EXIF block.
		return nil
	}
	if taken, err := x.DateTime(); err == nil {
		attrs["date"] = taken.Format("2006-01-02")
		attrs["time"] = taken.Format("15-04-05")
	}
	if tag, err := x.Get(exif.ImageDescription); err == nil {
		if description, err := tag.StringVal(); err == nil {
			if description = strings.TrimSpace(description); description != "" {
				attrs["title"] = description
			}
		}
	}
	return nil
}
