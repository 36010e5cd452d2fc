// Package pipeline runs the per-organization operations end to end.
//
// Update extracts candidates from team-page text, reconciles them against the
// CRM registry, and writes the annotated workbook. Clean deduplicates an
// annotated workbook into the cleaned deliverable and queues borderline pairs
// for review. Approve promotes a reviewed workbook and clears its review
// entries. Every operation holds a per-organization file lock and records a
// run in the ledger, so concurrent invocations never write the same
// organization's files and failures are visible in `orgs history`.
//
// Batch operations return one report per organization; a failure in one
// organization never stops the others.
package pipeline
