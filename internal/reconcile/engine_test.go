package reconcile_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"contactsync/internal/contacts"
	"contactsync/internal/names"
	"contactsync/internal/reconcile"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newEngine(opts ...reconcile.Option) *reconcile.Engine {
	opts = append([]reconcile.Option{reconcile.WithClock(func() time.Time { return fixedNow })}, opts...)
	return reconcile.New(names.NewNormalizer(names.DefaultNicknames()), opts...)
}

func record(first, last, title string) contacts.Record {
	return contacts.Record{FirstName: first, LastName: last, Title: title, Organization: "Acme"}
}

func TestReconcileEndToEnd(t *testing.T) {
	registry := contacts.NewRegistry("Acme",
		record("Robert", "Smith", "Partner"),
		record("Jane", "Doe", "Principal"),
		record("Tim", "Old", "Associate"),
	)
	candidates := []contacts.Candidate{
		{Name: "Bob Smith", Title: "Managing Partner"},
		{Name: "Jane Doe", Title: ""},
		{Name: "Mary New", Title: "Analyst"},
	}

	result, err := newEngine().Reconcile(registry, candidates)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	records := result.Records()
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d: %+v", len(records), records)
	}
	want := []struct {
		name    string
		title   string
		isNew   bool
		removed bool
	}{
		{"Robert Smith", "Managing Partner", false, false},
		{"Jane Doe", "Principal", false, false},
		{"Mary New", "Analyst", true, false},
		{"Tim Old", "Associate", false, true},
	}
	for i, w := range want {
		got := records[i]
		if got.FullName() != w.name || got.Title != w.title || got.IsNew != w.isNew || got.IsRemoved != w.removed {
			t.Fatalf("record %d = %+v, want %+v", i, got, w)
		}
	}
	if records[2].Notes != "New as of 2026-03-14" {
		t.Fatalf("unexpected new note %q", records[2].Notes)
	}
	if records[2].Organization != "Acme" {
		t.Fatalf("new record organization = %q", records[2].Organization)
	}

	if len(result.New) != 1 || len(result.Missing) != 1 || len(result.Matched) != 2 {
		t.Fatalf("unexpected partitions: new=%d missing=%d matched=%d", len(result.New), len(result.Missing), len(result.Matched))
	}
	if result.Updated != 1 {
		t.Fatalf("expected one title update, got %d", result.Updated)
	}

	var robert contacts.Record
	for _, rec := range registry.Records() {
		if rec.FirstName == "Robert" {
			robert = rec
		}
	}
	if robert.Title != "Managing Partner" {
		t.Fatalf("registry title not updated in place: %q", robert.Title)
	}
}

func TestReconcileFlagsAreExclusive(t *testing.T) {
	registry := contacts.NewRegistry("Acme",
		record("Ann", "Lee", "VP"),
		record("Carl", "Bo", ""),
	)
	candidates := []contacts.Candidate{
		{Name: "Ann Lee", Title: "VP"},
		{Name: "Zed Zulu", Title: ""},
		{Name: "Prince", Title: ""},
	}
	result, err := newEngine().Reconcile(registry, candidates)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	for _, rec := range result.Records() {
		if err := rec.Validate(); err != nil {
			t.Fatalf("invalid record: %v", err)
		}
	}
}

func TestReconcileGreedyNoDoubleBinding(t *testing.T) {
	registry := contacts.NewRegistry("Acme",
		record("Katherine", "Jones", "Partner"),
		record("William", "Brown", "Principal"),
		record("Daniel", "Green", "Associate"),
	)
	candidates := []contacts.Candidate{
		{Name: "Daniel Green", Title: ""},
		{Name: "Kate Jones", Title: ""},
		{Name: "Bill Brown", Title: ""},
	}
	result, err := newEngine().Reconcile(registry, candidates)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Matched) != 3 || len(result.New) != 0 || len(result.Missing) != 0 {
		t.Fatalf("expected three one-to-one matches, got matched=%d new=%d missing=%d",
			len(result.Matched), len(result.New), len(result.Missing))
	}
	seen := map[string]bool{}
	for _, rec := range result.Matched {
		if seen[rec.ID] {
			t.Fatalf("registry record %s matched twice", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestReconcileFirstCandidateWins(t *testing.T) {
	registry := contacts.NewRegistry("Acme", record("John", "Smith", "Partner"))
	candidates := []contacts.Candidate{
		{Name: "John Smith", Title: "Senior Partner"},
		{Name: "John Smith", Title: "Advisor"},
	}
	result, err := newEngine().Reconcile(registry, candidates)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Matched) != 1 || result.Matched[0].Title != "Senior Partner" {
		t.Fatalf("expected first candidate to bind, got %+v", result.Matched)
	}
	if len(result.New) != 1 || result.New[0].Title != "Advisor" {
		t.Fatalf("expected second candidate to become new, got %+v", result.New)
	}
}

func TestReconcilePreservesTitleOnEmptyIncoming(t *testing.T) {
	registry := contacts.NewRegistry("Acme", record("Alex", "Stone", "Partner"))
	result, err := newEngine().Reconcile(registry, []contacts.Candidate{{Name: "Alexander Stone", Title: "   "}})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Matched) != 1 {
		t.Fatalf("expected a match, got %+v", result)
	}
	if result.Matched[0].Title != "Partner" {
		t.Fatalf("title = %q, want Partner", result.Matched[0].Title)
	}
	if result.Updated != 0 {
		t.Fatalf("expected no title updates, got %d", result.Updated)
	}
}

func TestReconcileMalformedCandidate(t *testing.T) {
	registry := contacts.NewRegistry("Acme", record("Ann", "Lee", "VP"))
	candidates := []contacts.Candidate{
		{Name: "Madonna", Title: "Icon"},
		{Name: "", Title: "Ghost"},
		{Name: "Ann Lee", Title: "VP"},
	}
	result, err := newEngine().Reconcile(registry, candidates)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Malformed != 2 {
		t.Fatalf("expected 2 malformed candidates, got %d", result.Malformed)
	}
	madonna := result.Current[0]
	if !madonna.IsNew || madonna.FirstName != "TBU" || madonna.LastName != "TBU" {
		t.Fatalf("unexpected malformed record: %+v", madonna)
	}
	if madonna.Title != "Icon" {
		t.Fatalf("malformed record should keep its title, got %q", madonna.Title)
	}
	if !strings.Contains(madonna.Notes, `"Madonna"`) || !strings.Contains(madonna.Notes, "malformed") {
		t.Fatalf("note should flag the raw name, got %q", madonna.Notes)
	}
	if len(result.Matched) != 1 {
		t.Fatalf("valid candidate after malformed ones should still match, got %+v", result.Matched)
	}
}

func TestReconcileDeduplicatesNewByExactKey(t *testing.T) {
	registry := contacts.NewRegistry("Acme")
	candidates := []contacts.Candidate{
		{Name: "Mike Ross", Title: "Associate"},
		{Name: "michael  ROSS", Title: "Partner"},
		{Name: "Mike Rosss", Title: ""},
	}
	result, err := newEngine().Reconcile(registry, candidates)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.New) != 2 {
		t.Fatalf("expected exact-key duplicate dropped and near miss kept, got %+v", result.New)
	}
	if result.Dropped != 1 {
		t.Fatalf("expected one dropped candidate, got %d", result.Dropped)
	}
	if result.New[0].Title != "Associate" {
		t.Fatalf("first occurrence should win, got %+v", result.New[0])
	}
}

func TestReconcileNoCandidatesLeavesRegistryUntouched(t *testing.T) {
	registry := contacts.NewRegistry("Acme", record("Ann", "Lee", "VP"))
	before := registry.Records()

	_, err := newEngine().Reconcile(registry, nil)
	if !errors.Is(err, reconcile.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	after := registry.Records()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("registry mutated: before=%+v after=%+v", before, after)
	}
}

func TestReconcileIgnoresOtherOrganizations(t *testing.T) {
	registry := contacts.NewRegistry("Acme",
		record("Ann", "Lee", "VP"),
		contacts.Record{FirstName: "Bo", LastName: "Kim", Organization: "Other Co"},
	)
	result, err := newEngine().Reconcile(registry, []contacts.Candidate{{Name: "Ann Lee"}})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Missing) != 0 {
		t.Fatalf("records of other organizations must not be reported missing: %+v", result.Missing)
	}
}

func TestReconcileHonoursThresholdAndScorer(t *testing.T) {
	registry := contacts.NewRegistry("Acme", record("Ann", "Lee", "VP"))
	scorer := func(a, b string) int { return 89 }

	result, err := newEngine(reconcile.WithScorer(scorer)).Reconcile(registry, []contacts.Candidate{{Name: "Ann Lee"}})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Matched) != 0 || len(result.New) != 1 || len(result.Missing) != 1 {
		t.Fatalf("score 89 must not match at default threshold: %+v", result)
	}

	registry = contacts.NewRegistry("Acme", record("Ann", "Lee", "VP"))
	result, err = newEngine(reconcile.WithScorer(scorer), reconcile.WithPolicy(reconcile.Policy{MatchThreshold: 85})).
		Reconcile(registry, []contacts.Candidate{{Name: "Ann Lee"}})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Matched) != 1 {
		t.Fatalf("score 89 should match at threshold 85: %+v", result)
	}
}
