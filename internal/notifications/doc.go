// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled. Events
// cover organization updates, batch cleaning, flagged near-duplicates, and
// failures so the pipeline can emit consistent messages without duplicating
// HTTP glue.
//
// Pipeline code depends only on the Service interface.
package notifications
