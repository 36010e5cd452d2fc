// Package services defines shared helpers consumed by the pipeline and its
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the organization, operation, and ledger run
//     identifier for logging.
//   - Structured error markers plus the Wrap helper that name the organization
//     and failing operation and map failures onto ledger statuses.
//
// Client packages for the extraction providers live underneath (llm, gemini).
package services
