package classify

import (
	"path/filepath"
	"sort"
	"strings"
)

// Unknown is the category assigned to files whose extension no configured
// category claims. It routes them toward quarantine rather than a destination.
const Unknown = "unknown"

// Classifier resolves file paths to configured categories by extension.
// Lookups are case-insensitive and ignore the leading dot.
type Classifier struct {
	byExtension map[string]string
	categories  []string
}

// New builds a Classifier from a category to extension-list mapping, normally
// cfg.FileTypes. Later categories never steal an extension claimed by an
// earlier one; config validation rejects such overlaps before this point.
func New(fileTypes map[string][]string) *Classifier {
	byExtension := make(map[string]string)
	categories := make([]string, 0, len(fileTypes))
	for category, extensions := range fileTypes {
		category = strings.ToLower(strings.TrimSpace(category))
		if category == "" {
			continue
		}
		categories = append(categories, category)
		for _, ext := range extensions {
			ext = normalizeExtension(ext)
			if ext == "" {
				continue
			}
			if _, claimed := byExtension[ext]; !claimed {
				byExtension[ext] = category
			}
		}
	}
	sort.Strings(categories)
	return &Classifier{byExtension: byExtension, categories: categories}
}

// Category returns the category owning path's extension. Extensionless files
// and extensions no category claims classify as Unknown, with a false boolean.
func (c *Classifier) Category(path string) (string, bool) {
	return c.CategoryForExtension(Extension(path))
}

// CategoryForExtension resolves an extension directly, accepting either "pdf"
// or ".PDF".
func (c *Classifier) CategoryForExtension(ext string) (string, bool) {
	ext = normalizeExtension(ext)
	if ext != "" {
		if category, ok := c.byExtension[ext]; ok {
			return category, true
		}
	}
	return Unknown, false
}

// Categories lists the known category names in sorted order.
func (c *Classifier) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Extension returns path's extension lowercased without the leading dot, or
// "" when the file has none.
func Extension(path string) string {
	return normalizeExtension(filepath.Ext(path))
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	return strings.TrimPrefix(ext, ".")
}
