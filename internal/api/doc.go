// Package api defines wire-format types and converters for the IPC and HTTP
// dashboard layer. It translates internal journal and dependency models into
// transport-friendly DTOs so consumers never couple to internal types.
//
// # Key Types
//
// IntakeRecord: transport representation of one journal entry.
//
// DaemonStatus: daemon running state, paths, dependency availability, and
// intake totals by action.
//
// QuarantineFile: one quarantined file with size and modification time.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (intake actions, error classes) are exposed as lowercase strings.
// Timestamps are time.Time and serialize as RFC3339.
package api
