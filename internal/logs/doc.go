// Package logs provides bounded-memory log file tailing for the CLI.
//
// It supports "last N lines" reads via a negative offset and follow-mode
// polling driven by the returned offset, which powers `dlassist logs
// --follow`. Callers supply context deadlines so polling shuts down cleanly
// when the CLI exits.
package logs
