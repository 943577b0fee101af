package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"dlassist/internal/config"
	"dlassist/internal/vision"
)

// CheckVision verifies that the vision API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckVision(ctx context.Context, cfg *config.Config) Result {
	const name = "Vision API"

	if strings.TrimSpace(cfg.Vision.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := vision.NewClient(vision.Config{
		APIKey:         cfg.Vision.APIKey,
		BaseURL:        cfg.Vision.BaseURL,
		Model:          cfg.Vision.Model,
		TimeoutSeconds: cfg.Vision.TimeoutSeconds,
	}, vision.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeVisionError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDestinations verifies every configured destination directory, in
// category order. Fallback directories are named with their position.
func CheckDestinations(cfg *config.Config) []Result {
	categories := make([]string, 0, len(cfg.Destinations))
	for category := range cfg.Destinations {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var results []Result
	for _, category := range categories {
		for i, dir := range cfg.Destinations[category] {
			name := fmt.Sprintf("Destination (%s)", category)
			if i > 0 {
				name = fmt.Sprintf("Destination (%s, fallback %d)", category, i)
			}
			results = append(results, CheckDirectoryAccess(name, dir))
		}
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeVisionError produces a human-readable summary for vision health check failures.
func summarizeVisionError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (vision API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (vision API unreachable)"
	}
	return err.Error()
}
