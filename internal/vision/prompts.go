package vision

import "strings"

// ImagePrompt instructs the model to describe a standalone image.
const ImagePrompt = `Analyze this image and provide information in JSON format:
{
  "description": "Brief description of the image",
  "artist": "Artist name if visible (or null)",
  "title": "Title/song name if visible (or null)",
  "content_type": "Type: Photo, Album Art, Concert, etc.",
  "is_explicit": false or true if explicit content detected
}`

// VideoPrompt instructs the model to classify a single frame pulled from a video.
const VideoPrompt = `Analyze this video frame and provide information in JSON format:
{
  "description": "Brief description of what's in the video",
  "artist": "Artist/performer name if visible (or null)",
  "title": "Song/video title if visible (or null)",
  "content_type": "One of: Music Video, Karaoke, Lyric Video, Background Video, Background FX Video, Slideshow, Concert, Performance, Tutorial, Other",
  "is_explicit": false or true if explicit content/language visible,
  "video_category": "More specific category if applicable"
}

Look for text, artist names, song titles, karaoke-style lyrics, or music video characteristics.
Note: Background FX Video refers to videos with visual effects, animations, or motion graphics typically used as background content.`

// contentTypeAliases maps the spellings models commonly produce to the
// canonical labels used in file names.
var contentTypeAliases = map[string]string{
	"music video":         "Music Video",
	"musicvideo":          "Music Video",
	"karaoke":             "Karaoke",
	"lyric video":         "Lyric Video",
	"lyrics video":        "Lyric Video",
	"background video":    "Background Video",
	"background fx video": "Background FX",
	"background fx":       "Background FX",
	"backgroundfx":        "Background FX",
	"slideshow":           "Slideshow",
	"concert":             "Concert",
	"performance":         "Performance",
	"live performance":    "Live",
	"tutorial":            "Tutorial",
}

// CanonicalContentType folds a model-reported content type onto the canonical
// label. Unrecognized values pass through unchanged.
func CanonicalContentType(contentType string) string {
	if canonical, ok := contentTypeAliases[strings.ToLower(strings.TrimSpace(contentType))]; ok {
		return canonical
	}
	return contentType
}
