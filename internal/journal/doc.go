// Package journal persists intake history to SQLite. The journal is
// observational: the daemon writes it after each pipeline completes and the
// history command and dashboard read it, but no intake decision ever
// consults it.
package journal
