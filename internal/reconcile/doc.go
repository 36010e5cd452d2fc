// Package reconcile merges a freshly extracted candidate list into an
// organization's contact registry.
//
// Engine.Reconcile walks candidates in input order and binds each one to the
// best-scoring registry record still in the pool, accepting the match only at
// or above Policy.MatchThreshold. Matching is greedy: a bound registry record
// leaves the pool, so two candidates never share one record. Matched records
// take the candidate's title when it is non-empty and different. Unmatched
// candidates become new records (exact-key duplicates among them are dropped)
// and registry records nobody matched are reported as removed.
//
// Candidates with fewer than two name tokens are kept as new records with
// placeholder names and a note instead of failing the run.
package reconcile
