package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"contactsync/internal/pipeline"
	"contactsync/internal/reviewqueue"
)

func TestOutcomeLine(t *testing.T) {
	tests := []struct {
		name    string
		outcome outcome
		detail  string
		want    string
		color   string
	}{
		{"ok", outcomeOK, "openrouter", "[OK]", ansiGreen},
		{"missing", outcomeMissing, "/data/contacts.csv", "[MISSING]", ansiYellow},
		{"review", outcomeReview, "2 flagged", "[REVIEW]", ansiYellow},
		{"failed", outcomeFailed, "lock held", "[FAILED]", ansiRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain := outcomeLine("Acme Capital", tt.outcome, tt.detail, false)
			if !strings.Contains(plain, tt.want) || !strings.Contains(plain, "Acme Capital") || !strings.HasSuffix(plain, tt.detail) {
				t.Fatalf("unexpected line %q", plain)
			}
			if strings.Contains(plain, "\x1b[") {
				t.Fatalf("expected no colour codes, got %q", plain)
			}
			colored := outcomeLine("Acme Capital", tt.outcome, tt.detail, true)
			if !strings.Contains(colored, tt.color+tt.want) {
				t.Fatalf("expected %q tag colour, got %q", tt.want, colored)
			}
		})
	}
}

func TestOutcomeLineTrimsEmptyDetail(t *testing.T) {
	if line := outcomeLine("Extraction", outcomeOK, "", false); strings.HasSuffix(line, " ") {
		t.Fatalf("expected no trailing space, got %q", line)
	}
}

func TestCleanOutcome(t *testing.T) {
	tests := []struct {
		name   string
		report pipeline.CleanReport
		want   outcome
	}{
		{"clean", pipeline.CleanReport{Kept: 3}, outcomeOK},
		{"flagged", pipeline.CleanReport{Flagged: []reviewqueue.Entry{{NameA: "Jon Smith", NameB: "John Smith"}}}, outcomeReview},
		{"failed", pipeline.CleanReport{Err: errors.New("lock held")}, outcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanOutcome(tt.report); got != tt.want {
				t.Fatalf("cleanOutcome = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]column{textCol("Organization"), countCol("Kept")}, [][]string{{"Acme"}, {"Beta", "4", "extra"}})
	if !strings.Contains(out, "Acme") || !strings.Contains(out, "Kept") {
		t.Fatalf("unexpected table %q", out)
	}
	if strings.Contains(out, "extra") {
		t.Fatalf("extra cells should be dropped, got %q", out)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("expected empty output without columns")
	}
}
