// Package daemon coordinates the long-running dlassist process and system
// integration points.
//
// It wires configuration, the journal, the downloads watcher, and the
// dashboard into a single lifecycle with flock-based locking to prevent
// multiple instances. The daemon exposes journal and quarantine views for the
// IPC layer, serves the administrative HTTP surface, emits dependency health
// summaries, and sends daemon start/stop notifications.
//
// Keep orchestration logic here: file classification, naming, and movement
// live in their own packages while the daemon focuses on startup, shutdown,
// and high level coordination.
package daemon
