// Package preflight provides readiness checks for the folders and external
// services dlassist depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs failures before it begins
//     watching, so a bad destination shows up in the log instead of as a
//     string of quarantined files.
//   - The CLI "dlassist status" command uses individual check functions
//     (CheckVisionFromConfig, CheckNotificationsFromConfig) to display
//     service health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
