package testsupport

import (
	"context"
	"testing"
	"time"

	"dlassist/internal/config"
	"dlassist/internal/intake"
	"dlassist/internal/journal"
)

// MustOpenJournal opens a journal.Store for tests and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordIntake writes one journal entry for tests and returns the stored row.
func RecordIntake(t testing.TB, store *journal.Store, action intake.Action, path string) *journal.Entry {
	t.Helper()

	entry := journal.FromResult(intake.Result{
		IntakeID: "test-" + path,
		Path:     path,
		Category: "documents",
		Action:   action,
		Started:  time.Now().UTC(),
		Duration: time.Millisecond,
	})
	stored, err := store.Record(context.Background(), entry)
	if err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return stored
}
