package naming

import (
	"fmt"
	"strings"
)

// Policy resolves destination filenames from per-category naming patterns and
// extracted metadata.
type Policy struct {
	patterns map[string]string
}

// New builds a Policy from a category to template mapping, normally
// cfg.NamingPatterns. A "default" entry is consulted for categories without
// their own template.
func New(patterns map[string]string) *Policy {
	copied := make(map[string]string, len(patterns))
	for category, pattern := range patterns {
		copied[strings.ToLower(strings.TrimSpace(category))] = pattern
	}
	return &Policy{patterns: copied}
}

// FileName produces the destination filename for a file. The returned name is
// always usable: when the template references a placeholder that has no value
// and no recognized default, the original filename is returned unchanged and
// the error reports why. Successful resolutions are sanitized.
func (p *Policy) FileName(category, originalName string, meta map[string]string) (string, error) {
	pattern := p.pattern(category)
	// Time-based media gets a richer name assembled from tags when they are
	// available, overriding the configured template.
	if category == "music" || category == "videos" {
		pattern = p.intelligentPattern(category, meta)
	}
	name, err := Expand(pattern, meta)
	if err != nil {
		return originalName, err
	}
	return SanitizeFileName(name), nil
}

func (p *Policy) pattern(category string) string {
	if pattern, ok := p.patterns[category]; ok && strings.TrimSpace(pattern) != "" {
		return pattern
	}
	if pattern, ok := p.patterns["default"]; ok && strings.TrimSpace(pattern) != "" {
		return pattern
	}
	return "{filename}.{ext}"
}

func (p *Policy) intelligentPattern(category string, meta map[string]string) string {
	artist := strings.TrimSpace(meta["artist"])
	title := strings.TrimSpace(meta["title"])

	switch category {
	case "music":
		if artist != "" && title != "" {
			pattern := "{artist} - {title}"
			if strings.TrimSpace(meta["content_rating"]) != "" {
				pattern += " ({content_rating})"
			}
			if strings.TrimSpace(meta["version"]) != "" {
				pattern += " ({version})"
			}
			return pattern + ".{ext}"
		}
	case "videos":
		if artist != "" && title != "" {
			pattern := "{artist} - {title}"
			if strings.TrimSpace(meta["content_rating"]) != "" {
				pattern += " ({content_rating})"
			}
			if strings.TrimSpace(meta["video_type"]) != "" {
				pattern += " ({video_type})"
			}
			return pattern + ".{ext}"
		}
		if title != "" {
			pattern := "{title}"
			if strings.TrimSpace(meta["video_type"]) != "" {
				pattern += " ({video_type})"
			}
			return pattern + ".{ext}"
		}
	}
	return p.pattern(category)
}

// recognizedPlaceholders may appear in templates without a corresponding
// metadata value; they expand to "" so a missing tag degrades to an empty
// segment instead of failing resolution.
var recognizedPlaceholders = map[string]struct{}{
	"filename":       {},
	"ext":            {},
	"size":           {},
	"created":        {},
	"modified":       {},
	"created_date":   {},
	"modified_date":  {},
	"date":           {},
	"time":           {},
	"artist":         {},
	"title":          {},
	"album":          {},
	"year":           {},
	"duration":       {},
	"width":          {},
	"height":         {},
	"format":         {},
	"author":         {},
	"subject":        {},
	"pages":          {},
	"description":    {},
	"content_type":   {},
	"content_rating": {},
	"video_type":     {},
	"version":        {},
}

// Expand substitutes {placeholder} tokens in template from meta. Recognized
// placeholders missing from meta become empty strings; an unrecognized
// placeholder or malformed template returns an error. Doubled braces escape
// literal braces.
func Expand(template string, meta map[string]string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); {
		switch template[i] {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder in template %q", template)
			}
			key := template[i+1 : i+1+end]
			value, err := resolvePlaceholder(key, meta)
			if err != nil {
				return "", err
			}
			b.WriteString(value)
			i += end + 2
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("unexpected '}' in template %q", template)
		default:
			b.WriteByte(template[i])
			i++
		}
	}
	return b.String(), nil
}

func resolvePlaceholder(key string, meta map[string]string) (string, error) {
	if value, ok := meta[key]; ok {
		return value, nil
	}
	if _, ok := recognizedPlaceholders[key]; ok {
		return "", nil
	}
	return "", fmt.Errorf("unresolved placeholder %q", key)
}
