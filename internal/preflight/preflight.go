package preflight

import (
	"context"
	"strings"

	"dlassist/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Downloads folder and state directory (always checked)
	results = append(results, CheckDirectoryAccess("Downloads folder", cfg.DownloadsFolder))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.LogDir()))

	// Quarantine folder
	if cfg.Quarantine.Enabled && strings.TrimSpace(cfg.QuarantineFolder) != "" {
		results = append(results, CheckDirectoryAccess("Quarantine folder", cfg.QuarantineFolder))
	}

	// Destination directories per category
	results = append(results, CheckDestinations(cfg)...)

	// Vision API
	if cfg.Vision.Enabled {
		results = append(results, CheckVision(ctx, cfg))
	}

	return results
}
