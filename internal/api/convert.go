package api

import (
	"dlassist/internal/deps"
	"dlassist/internal/journal"
)

// FromJournalEntry converts a journal record to its API representation.
func FromJournalEntry(entry *journal.Entry) IntakeRecord {
	if entry == nil {
		return IntakeRecord{}
	}
	return IntakeRecord{
		ID:            entry.ID,
		IntakeID:      entry.IntakeID,
		SourcePath:    entry.Path,
		FinalPath:     entry.FinalPath,
		Category:      entry.Category,
		Action:        entry.Action,
		DuplicatePath: entry.Duplicate,
		RemovedOlder:  entry.RemovedOlder,
		ErrorClass:    entry.ErrorClass,
		ErrorMessage:  entry.ErrorMessage,
		StartedAt:     entry.Started.UTC(),
		DurationMS:    entry.Duration.Milliseconds(),
		RecordedAt:    entry.RecordedAt.UTC(),
	}
}

// FromJournalEntries converts a slice of journal records into API DTOs.
func FromJournalEntries(entries []*journal.Entry) []IntakeRecord {
	if len(entries) == 0 {
		return nil
	}
	out := make([]IntakeRecord, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromJournalEntry(entry))
	}
	return out
}

// FromDependencyStatuses converts dependency check results into API DTOs.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, status := range statuses {
		out[i] = DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		}
	}
	return out
}
