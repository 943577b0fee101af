// Package intake runs the per-file pipeline: classify, resolve duplicates,
// name from metadata, then move, quarantine, or leave the file in place.
// Every terminal outcome is reported to the configured notifier; a failure
// aborts only the file it happened to.
package intake
