package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dlassist/internal/config"
	"dlassist/internal/daemon"
	"dlassist/internal/intake"
	"dlassist/internal/ipc"
	"dlassist/internal/journal"
	"dlassist/internal/logging"
	"dlassist/internal/notifications"
	"dlassist/internal/testsupport"
	"dlassist/internal/watcher"
)

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Daemon.ProcessExistingOnStart = false
	logger := logging.NewNop()

	store := config.NewStore(cfg, filepath.Join(testsupport.BaseDir(cfg), "config.toml"))
	journalStore, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	testsupport.RecordIntake(t, journalStore, intake.ActionMoved, "/downloads/report.pdf")
	testsupport.RecordIntake(t, journalStore, intake.ActionQuarantined, "/downloads/blob.xyz")

	watch := watcher.New(cfg, func(context.Context, string) {}, logger)
	d, err := daemon.New(cfg, store, journalStore, watch, notifications.NewService(cfg), logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.DownloadsFolder != cfg.DownloadsFolder {
		t.Fatalf("unexpected downloads folder %q", status.DownloadsFolder)
	}
	if status.SocketPath != socket {
		t.Fatalf("unexpected socket path %q", status.SocketPath)
	}

	testsupport.WriteText(t, filepath.Join(cfg.DownloadsFolder, "incoming.txt"), "payload")
	sweep, err := client.ProcessExisting()
	if err != nil {
		t.Fatalf("ProcessExisting failed: %v", err)
	}
	if sweep.Dispatched != 1 {
		t.Fatalf("expected 1 dispatched file, got %d", sweep.Dispatched)
	}

	testsupport.WriteText(t, filepath.Join(cfg.QuarantineFolder, "held.xyz"), "stuck")
	quarantine, err := client.QuarantineEntries()
	if err != nil {
		t.Fatalf("QuarantineEntries failed: %v", err)
	}
	if len(quarantine.Files) != 1 || quarantine.Files[0].Name != "held.xyz" {
		t.Fatalf("unexpected quarantine listing: %#v", quarantine.Files)
	}

	recent, err := client.RecentIntakes(1)
	if err != nil {
		t.Fatalf("RecentIntakes failed: %v", err)
	}
	if len(recent.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(recent.Entries))
	}
	if recent.Entries[0].Action != string(intake.ActionQuarantined) {
		t.Fatalf("expected newest entry first, got action %q", recent.Entries[0].Action)
	}

	got, err := client.ConfigGet("downloads_folder")
	if err != nil {
		t.Fatalf("ConfigGet failed: %v", err)
	}
	if got.Value != cfg.DownloadsFolder {
		t.Fatalf("unexpected config value %v", got.Value)
	}

	set, err := client.ConfigSet("watcher.settle_delay_ms", 7)
	if err != nil {
		t.Fatalf("ConfigSet failed: %v", err)
	}
	// JSON-RPC decodes numbers as float64 on the wire.
	if set.Value != float64(7) {
		t.Fatalf("expected 7 after set, got %v (%T)", set.Value, set.Value)
	}

	if _, err := client.ConfigSet("no_such_key", true); err == nil {
		t.Fatal("expected error for unknown config key")
	}

	all, err := client.ConfigAll()
	if err != nil {
		t.Fatalf("ConfigAll failed: %v", err)
	}
	if all.Config["downloads_folder"] != cfg.DownloadsFolder {
		t.Fatalf("unexpected config tree %v", all.Config["downloads_folder"])
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp.Sent || notifyResp.Message != "ntfy topic not configured" {
		t.Fatalf("unexpected notification response: %#v", notifyResp)
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
