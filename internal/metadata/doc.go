// Package metadata extracts named attributes from files for naming templates
// and notifications. A Source always yields the base filesystem attributes
// (filename, ext, size, timestamps); format-specific extractors add tags,
// dimensions, and document info on a strictly best-effort basis. Extractor
// calls are time-bounded and panic-guarded so one bad file or hung parser
// never stalls an intake.
package metadata
