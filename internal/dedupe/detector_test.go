package dedupe_test

import (
	"errors"
	"testing"

	"contactsync/internal/contacts"
	"contactsync/internal/dedupe"
	"contactsync/internal/names"
	"contactsync/internal/reviewqueue"
)

type memorySink struct {
	entries []reviewqueue.Entry
	err     error
}

func (s *memorySink) Append(entries ...reviewqueue.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entries...)
	return nil
}

func annotated(first, last, title string) contacts.AnnotatedRecord {
	return contacts.AnnotatedRecord{Record: contacts.Record{FirstName: first, LastName: last, Title: title, Organization: "Acme"}}
}

// fixedScorer returns 100 for identical keys and score for everything else.
func fixedScorer(score int) func(a, b string) int {
	return func(a, b string) int {
		if a == b {
			return 100
		}
		return score
	}
}

func newDetector(opts ...dedupe.Option) *dedupe.Detector {
	return dedupe.New(names.NewNormalizer(names.DefaultNicknames()), opts...)
}

func TestDedupeMergesSameNameSameTitle(t *testing.T) {
	records := []contacts.AnnotatedRecord{
		annotated("Bob", "Smith", "Partner"),
		annotated("Robert", "Smith", " partner "),
	}
	kept, flagged := newDetector().Dedupe(records, "Acme")
	if len(kept) != 1 || kept[0].FirstName != "Bob" {
		t.Fatalf("expected first record to survive alone, got %+v", kept)
	}
	if len(flagged) != 0 {
		t.Fatalf("unexpected review entries %+v", flagged)
	}
}

func TestDedupeKeepsConflictingTitles(t *testing.T) {
	records := []contacts.AnnotatedRecord{
		annotated("Robert", "Smith", "Partner"),
		annotated("Bob", "Smith", "Operating Partner"),
		annotated("Rob", "Smith", "Operating Partner"),
	}
	kept, _ := newDetector().Dedupe(records, "Acme")
	if len(kept) != 2 {
		t.Fatalf("expected both title variants to survive and the repeat to drop, got %+v", kept)
	}
	if kept[0].Title != "Partner" || kept[1].Title != "Operating Partner" {
		t.Fatalf("unexpected survivors %+v", kept)
	}
}

func TestDedupeReviewBand(t *testing.T) {
	cases := []struct {
		score       int
		wantKept    int
		wantFlagged int
	}{
		{score: 95, wantKept: 1, wantFlagged: 0},
		{score: 94, wantKept: 2, wantFlagged: 1},
		{score: 90, wantKept: 2, wantFlagged: 1},
		{score: 89, wantKept: 2, wantFlagged: 0},
	}
	for _, tc := range cases {
		sink := &memorySink{}
		detector := newDetector(dedupe.WithScorer(fixedScorer(tc.score)), dedupe.WithReviewSink(sink))
		records := []contacts.AnnotatedRecord{
			annotated("Jon", "Smith", "Partner"),
			annotated("John", "Smith", "Partner"),
		}
		kept, flagged := detector.Dedupe(records, "Acme")
		if len(kept) != tc.wantKept {
			t.Fatalf("score %d: kept %d, want %d", tc.score, len(kept), tc.wantKept)
		}
		if len(flagged) != tc.wantFlagged {
			t.Fatalf("score %d: flagged %d, want %d", tc.score, len(flagged), tc.wantFlagged)
		}
		if len(sink.entries) != tc.wantFlagged {
			t.Fatalf("score %d: sink received %d entries, want %d", tc.score, len(sink.entries), tc.wantFlagged)
		}
		if tc.wantFlagged == 1 {
			want := reviewqueue.Entry{Organization: "Acme", NameA: "jon smith", NameB: "john smith", Score: tc.score}
			if flagged[0] != want {
				t.Fatalf("score %d: entry %+v, want %+v", tc.score, flagged[0], want)
			}
		}
	}
}

func TestDedupeFlagsEveryRetainedPair(t *testing.T) {
	records := []contacts.AnnotatedRecord{
		annotated("Ann", "Lee", "VP"),
		annotated("Anne", "Lee", "VP"),
		annotated("Anna", "Lee", "VP"),
	}
	_, flagged := newDetector(dedupe.WithScorer(fixedScorer(92))).Dedupe(records, "Acme")
	if len(flagged) != 3 {
		t.Fatalf("expected 3 unordered pairs, got %+v", flagged)
	}
}

func TestDedupeSinkFailureIsNonFatal(t *testing.T) {
	sink := &memorySink{err: errors.New("read-only filesystem")}
	records := []contacts.AnnotatedRecord{
		annotated("Jon", "Smith", "Partner"),
		annotated("John", "Smith", "Partner"),
	}
	kept, flagged := newDetector(dedupe.WithScorer(fixedScorer(91)), dedupe.WithReviewSink(sink)).Dedupe(records, "Acme")
	if len(kept) != 2 || len(flagged) != 1 {
		t.Fatalf("results must survive sink failure: kept=%d flagged=%d", len(kept), len(flagged))
	}
}

func TestDedupePreservesAnnotations(t *testing.T) {
	first := annotated("Mary", "New", "Analyst")
	first.IsNew = true
	first.Notes = "New as of 2026-03-14"
	kept, _ := newDetector().Dedupe([]contacts.AnnotatedRecord{first, annotated("Tom", "Kay", "")}, "Acme")
	if len(kept) != 2 || !kept[0].IsNew || kept[0].Notes != first.Notes {
		t.Fatalf("annotations lost: %+v", kept)
	}
}

func TestPolicyNormalization(t *testing.T) {
	records := []contacts.AnnotatedRecord{
		annotated("Jon", "Smith", "Partner"),
		annotated("John", "Smith", "Partner"),
	}
	detector := newDetector(
		dedupe.WithScorer(fixedScorer(94)),
		dedupe.WithPolicy(dedupe.Policy{DuplicateThreshold: 0, ReviewThreshold: 120}),
	)
	kept, flagged := detector.Dedupe(records, "Acme")
	if len(kept) != 2 || len(flagged) != 1 {
		t.Fatalf("invalid policy should fall back to defaults: kept=%d flagged=%d", len(kept), len(flagged))
	}
}
