// Package ledger persists per-organization run history in SQLite.
//
// Each update, clean, or approve pass opens a Run with BeginRun and closes it
// with Complete or Fail. The organizations table keeps the most recent status
// and the starred flag so batch selection and progress reporting can be
// answered without scanning output directories.
//
// Schema changes bump schemaVersion in schema.go; users delete the ledger
// database to adopt the new schema.
package ledger
