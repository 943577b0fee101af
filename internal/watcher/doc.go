// Package watcher turns filesystem creation events for a single directory
// into exactly-once file handoffs. It filters obvious non-candidates
// (directories, dotfiles, in-progress download suffixes), waits for each
// file's size to stabilize before handing it on, and guards every path with
// a processing set so duplicate events cannot start concurrent pipelines.
package watcher
