// Package placement maps file categories to destination directories from
// configuration. A category with no configured destination signals the caller
// to quarantine instead.
package placement

import "strings"

// Policy answers where files of a category belong.
type Policy struct {
	destinations map[string][]string
}

// New builds a Policy from a category to directory-list mapping, normally
// cfg.Destinations.
func New(destinations map[string][]string) *Policy {
	copied := make(map[string][]string, len(destinations))
	for category, dirs := range destinations {
		category = strings.ToLower(strings.TrimSpace(category))
		if category == "" || len(dirs) == 0 {
			continue
		}
		copied[category] = append([]string(nil), dirs...)
	}
	return &Policy{destinations: copied}
}

// Destination returns the authoritative destination directory for a category.
// Only the first configured directory is consulted; ok is false when the
// category has none.
func (p *Policy) Destination(category string) (string, bool) {
	dirs := p.destinations[category]
	for _, dir := range dirs {
		if strings.TrimSpace(dir) != "" {
			return dir, true
		}
	}
	return "", false
}

// Destinations returns every configured directory for a category, first one
// authoritative.
func (p *Policy) Destinations(category string) []string {
	dirs := p.destinations[category]
	return append([]string(nil), dirs...)
}
