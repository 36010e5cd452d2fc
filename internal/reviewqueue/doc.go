// Package reviewqueue manages the append-only log of name pairs that scored
// inside the review band during deduplication.
//
// Each line has the form
//
//	<organization>: <nameA> ~ <nameB> (Score: <score>)
//
// Writers append under an exclusive flock on "<log>.lock" so concurrent
// cleaning runs never interleave partial lines. Adjudication removes every
// line for one organization by rewriting the file atomically.
package reviewqueue
