package reviewqueue_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"contactsync/internal/reviewqueue"
)

func TestEntryRoundTrip(t *testing.T) {
	entry := reviewqueue.Entry{Organization: "Acme: Growth Fund", NameA: "jon smith", NameB: "john smith", Score: 91}
	line := entry.String()
	if line != "Acme: Growth Fund: jon smith ~ john smith (Score: 91)" {
		t.Fatalf("unexpected line %q", line)
	}
	parsed, err := reviewqueue.ParseEntry(line)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if parsed != entry {
		t.Fatalf("parsed %+v, want %+v", parsed, entry)
	}
}

func TestParseEntryAcceptsFractionalScores(t *testing.T) {
	parsed, err := reviewqueue.ParseEntry("Acme: a b ~ a c (Score: 92.5)\n")
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if parsed.Score != 92 {
		t.Fatalf("score = %d, want 92 (round half even)", parsed.Score)
	}
}

func TestParseEntryRejectsMalformed(t *testing.T) {
	for _, line := range []string{
		"",
		"no separators here",
		"Acme: a ~ b (Score: high)",
		"Acme: a b (Score: 91)",
		": a ~ b (Score: 91)",
	} {
		if _, err := reviewqueue.ParseEntry(line); !errors.Is(err, reviewqueue.ErrMalformedLine) {
			t.Fatalf("ParseEntry(%q) err = %v, want ErrMalformedLine", line, err)
		}
	}
}

func TestLogAppendListAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "review_log.txt")
	log := reviewqueue.Open(path)

	if entries, err := log.Entries(); err != nil || len(entries) != 0 {
		t.Fatalf("empty log: entries=%v err=%v", entries, err)
	}

	if err := log.Append(
		reviewqueue.Entry{Organization: "Beta", NameA: "ann lee", NameB: "anne lee", Score: 93},
		reviewqueue.Entry{Organization: "Acme", NameA: "jon smith", NameB: "john smith", Score: 91},
	); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := log.Append(reviewqueue.Entry{Organization: "Acme", NameA: "kim ro", NameB: "kim roe", Score: 90}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	orgs, err := log.Organizations()
	if err != nil {
		t.Fatalf("Organizations: %v", err)
	}
	if strings.Join(orgs, ",") != "Acme,Beta" {
		t.Fatalf("unexpected organizations %v", orgs)
	}

	acme, err := log.ForOrganization("Acme")
	if err != nil {
		t.Fatalf("ForOrganization: %v", err)
	}
	if len(acme) != 2 || acme[1].NameB != "kim roe" {
		t.Fatalf("unexpected Acme entries %+v", acme)
	}

	removed, err := log.Remove("Acme")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d entries, want 2", removed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(data) != "Beta: ann lee ~ anne lee (Score: 93)\n" {
		t.Fatalf("unexpected log content %q", data)
	}
}

func TestLogRemoveClearsUnparseableLinesByPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review_log.txt")
	content := "Acme: legacy line without score\nBeta: x y ~ x z (Score: 90)\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	log := reviewqueue.Open(path)
	removed, err := log.Remove("Acme")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d, want 1", removed)
	}
	entries, err := log.Entries()
	if err != nil || len(entries) != 1 || entries[0].Organization != "Beta" {
		t.Fatalf("unexpected remaining entries %+v (err=%v)", entries, err)
	}
}

func TestLogConcurrentAppends(t *testing.T) {
	log := reviewqueue.Open(filepath.Join(t.TempDir(), "review_log.txt"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := log.Append(reviewqueue.Entry{Organization: "Acme", NameA: "a b", NameB: "a c", Score: 91}); err != nil {
					t.Errorf("Append: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	entries, err := log.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 80 {
		t.Fatalf("expected 80 intact entries, got %d", len(entries))
	}
}
