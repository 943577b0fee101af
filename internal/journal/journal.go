package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dlassist/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in the database's user_version pragma. Bump it when
// the schema changes; old databases are rejected rather than migrated because
// the journal is observational history, safe to delete.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

// defaultListLimit bounds Recent and Search when the caller does not.
const defaultListLimit = 100

// Entry is one recorded intake outcome.
type Entry struct {
	ID           int64         `json:"id"`
	IntakeID     string        `json:"intake_id"`
	Path         string        `json:"path"`
	FinalPath    string        `json:"final_path,omitempty"`
	Category     string        `json:"category"`
	Action       string        `json:"action"`
	Duplicate    string        `json:"duplicate,omitempty"`
	RemovedOlder string        `json:"removed_older,omitempty"`
	ErrorClass   string        `json:"error_class,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Started      time.Time     `json:"started"`
	Duration     time.Duration `json:"duration"`
	RecordedAt   time.Time     `json:"recorded_at"`
}

// Filter narrows a Search. Zero fields do not constrain; PathContains matches
// against both the source and final paths.
type Filter struct {
	Action       string
	Category     string
	PathContains string
	Since        time.Time
	Limit        int
}

// Store manages intake history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database under the configured
// log directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.JournalPath())
}

// OpenPath connects to the journal database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch version {
	case schemaVersion:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	// PRAGMA does not accept bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Record inserts an entry and returns the stored row. RecordedAt is stamped
// here; the caller's value is ignored.
func (s *Store) Record(ctx context.Context, entry Entry) (*Entry, error) {
	recordedAt := time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO intake_journal (
            intake_id, source_path, final_path, category, action,
            duplicate_path, removed_older, error_class, error_message,
            started_at, duration_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.IntakeID,
		entry.Path,
		nullableString(entry.FinalPath),
		entry.Category,
		entry.Action,
		nullableString(entry.Duplicate),
		nullableString(entry.RemovedOlder),
		nullableString(entry.ErrorClass),
		nullableString(entry.ErrorMessage),
		entry.Started.UTC().Format(time.RFC3339Nano),
		entry.Duration.Milliseconds(),
		recordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a journal entry by identifier, nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM intake_journal WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return entry, nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM intake_journal ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Search returns entries matching the filter, most recent first.
func (s *Store) Search(ctx context.Context, filter Filter) ([]*Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.PathContains != "" {
		clauses = append(clauses, "(source_path LIKE ? OR final_path LIKE ?)")
		pattern := "%" + filter.PathContains + "%"
		args = append(args, pattern, pattern)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "recorded_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}

	query := `SELECT ` + entryColumns + ` FROM intake_journal`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search journal: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Purge deletes entries recorded before the cutoff and reports how many were
// removed.
func (s *Store) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM intake_journal WHERE recorded_at < ?`,
		olderThan.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("purge journal: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of entries grouped by action.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT action, COUNT(1) FROM intake_journal GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("journal stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats[action] = count
	}
	return stats, rows.Err()
}

const entryColumns = "id, intake_id, source_path, final_path, category, action, duplicate_path, removed_older, error_class, error_message, started_at, duration_ms, recorded_at"

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id           int64
		intakeID     string
		sourcePath   string
		finalPath    sql.NullString
		category     string
		action       string
		duplicate    sql.NullString
		removedOlder sql.NullString
		errorClass   sql.NullString
		errorMessage sql.NullString
		startedRaw   string
		durationMS   int64
		recordedRaw  string
	)

	if err := scanner.Scan(
		&id,
		&intakeID,
		&sourcePath,
		&finalPath,
		&category,
		&action,
		&duplicate,
		&removedOlder,
		&errorClass,
		&errorMessage,
		&startedRaw,
		&durationMS,
		&recordedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:           id,
		IntakeID:     intakeID,
		Path:         sourcePath,
		FinalPath:    finalPath.String,
		Category:     category,
		Action:       action,
		Duplicate:    duplicate.String,
		RemovedOlder: removedOlder.String,
		ErrorClass:   errorClass.String,
		ErrorMessage: errorMessage.String,
		Duration:     time.Duration(durationMS) * time.Millisecond,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		entry.Started = started
	}
	if recorded, err := parseTimeString(recordedRaw); err == nil {
		entry.RecordedAt = recorded
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
