// Package logging assembles structured slog loggers and formatting helpers used
// across contactsync.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code tags log lines
// with the organization, operation, and ledger run id. When a log directory is
// configured every record is also appended as JSON to contactsync.log. The
// package provides a no-op logger for tests and wiring code that cannot fail.
package logging
