// Package dedupe removes duplicate contacts from a cleaned batch and flags
// near-duplicates for human review.
//
// Two thresholds drive the policy. Records whose keys score at or above
// DuplicateThreshold against an earlier record with the same title are dropped.
// Same-name records with different titles are both kept. Among the survivors,
// every pair scoring in [ReviewThreshold, DuplicateThreshold) is reported as a
// review entry and handed to the configured sink; both records stay in the
// output.
package dedupe
