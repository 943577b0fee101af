package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dlassist/internal/config"
	"dlassist/internal/daemon"
	"dlassist/internal/intake"
	"dlassist/internal/ipc"
	"dlassist/internal/journal"
	"dlassist/internal/logging"
	"dlassist/internal/notifications"
	"dlassist/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	journal    *journal.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	journalStore := testsupport.MustOpenJournal(t, cfg)

	logger := logging.NewNop()
	store := config.NewStore(cfg, configPath)
	d, err := daemon.New(cfg, store, journalStore, nil, notifications.NewService(cfg), logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.LogDir(), "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		journal:    journalStore,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestCLIStatusReportsPathsAndIntakes(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.RecordIntake(t, env.journal, intake.ActionMoved, filepath.Join(env.cfg.DownloadsFolder, "report.pdf"))

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Daemon")
	requireContains(t, out, "daemon is not running")
	requireContains(t, out, env.cfg.DownloadsFolder)
	requireContains(t, out, "moved")
}

func TestCLIHistoryListsJournalEntries(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.RecordIntake(t, env.journal, intake.ActionMoved, filepath.Join(env.cfg.DownloadsFolder, "song.mp3"))
	testsupport.RecordIntake(t, env.journal, intake.ActionQuarantined, filepath.Join(env.cfg.DownloadsFolder, "blob.xyz"))

	out, _, err := runCLI(t, []string{"history"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "song.mp3")
	requireContains(t, out, "blob.xyz")
	requireContains(t, out, "quarantined")

	// The journal read must also work without the daemon.
	out, _, err = runCLI(t, []string{"history", "--json"}, filepath.Join(t.TempDir(), "missing.sock"), env.configPath)
	if err != nil {
		t.Fatalf("history without daemon: %v", err)
	}
	requireContains(t, out, "song.mp3")
}

func TestCLIQuarantineList(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteText(t, filepath.Join(env.cfg.QuarantineFolder, "mystery.bin"), "unidentified")

	out, _, err := runCLI(t, []string{"quarantine", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("quarantine list: %v", err)
	}
	requireContains(t, out, "mystery.bin")

	// Offline fallback reads the folder directly.
	out, _, err = runCLI(t, []string{"quarantine", "list"}, filepath.Join(t.TempDir(), "missing.sock"), env.configPath)
	if err != nil {
		t.Fatalf("quarantine list without daemon: %v", err)
	}
	requireContains(t, out, "mystery.bin")
}

func TestCLIProcessSweepsDownloadsOnce(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteText(t, filepath.Join(env.cfg.DownloadsFolder, "notes.txt"), "meeting notes")

	out, _, err := runCLI(t, []string{"process"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	requireContains(t, out, "moved")
	requireContains(t, out, "Processed 1 files")

	moved := filepath.Join(env.cfg.Destinations["documents"][0], "notes.txt")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("expected file at %s: %v", moved, err)
	}

	// Second sweep finds nothing: the first pass relocated everything.
	out, _, err = runCLI(t, []string{"process"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("second process: %v", err)
	}
	requireContains(t, out, "No files to process")
}

func TestCLILogsTail(t *testing.T) {
	env := setupCLITestEnv(t)

	logPath := env.cfg.LogFilePath()
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "second")
	requireContains(t, out, "third")
	if strings.Contains(out, "first") {
		t.Fatalf("expected only trailing lines, got:\n%s", out)
	}
}

func TestCLIVersion(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, filepath.Join(t.TempDir(), "missing.sock"), "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "dlassist")
}
