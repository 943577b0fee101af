// Package dupes detects duplicate files by size, streaming SHA-256 digest, or
// both. Nothing is persisted; every intake recomputes its matches against the
// current destination contents.
package dupes
