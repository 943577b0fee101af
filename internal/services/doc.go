// Package services defines shared utilities consumed by the intake pipeline
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp intake IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (configuration vs transient vs degradation) consistent
//     across the pipeline.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services
