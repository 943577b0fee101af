// Package notifications delivers intake events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Enumerated event types cover the intake outcomes and daemon lifecycle so
// callers emit consistent messages without duplicating HTTP glue, and the
// per-event configuration switches decide which outcomes are pushed at all.
//
// Extend this package if you need alternative transports; everything else
// depends only on the Service interface.
package notifications
