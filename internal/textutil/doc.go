// Package textutil provides the string similarity primitive shared by contact
// reconciliation and duplicate detection.
//
// TokenSortRatio scores two strings on a 0-100 scale after lower-casing,
// replacing punctuation with spaces, and sorting whitespace-delimited tokens,
// so "smith john" and "John Smith" score 100. The score is the indel-distance
// ratio 2*LCS/(len(a)+len(b)) rounded half-to-even, which keeps it symmetric
// and reflexive.
package textutil
