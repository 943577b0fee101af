package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigPathPrintsResolvedFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "path"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, env.configPath)
}

func TestConfigGetAndSetRoundTrip(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "get", "duplicate_detection.enabled"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	requireContains(t, out, "false")

	out, _, err = runCLI(t, []string{"config", "set", "duplicate_detection.enabled", "true"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config set: %v", err)
	}
	requireContains(t, out, "duplicate_detection.enabled = true")

	// A fresh invocation reloads from disk, so the change must have persisted.
	out, _, err = runCLI(t, []string{"config", "get", "duplicate_detection.enabled"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config get after set: %v", err)
	}
	if strings.TrimSpace(out) != "true" {
		t.Fatalf("expected persisted value true, got %q", out)
	}
}

func TestConfigShowListsDottedKeys(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "downloads_folder")
	requireContains(t, out, "duplicate_detection.compare_method")
}

func TestConfigSetRejectsWrongType(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"config", "set", "duplicate_detection.enabled", "sometimes"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected type error for non-boolean value")
	}
}
