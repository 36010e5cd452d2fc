package extract_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"contactsync/internal/config"
	"contactsync/internal/contacts"
	"contactsync/internal/extract"
	"contactsync/internal/services"
)

type stubCompleter struct {
	payload string
	err     error
	user    string
}

func (s *stubCompleter) CompleteJSON(_ context.Context, _ string, user string) (string, error) {
	s.user = user
	return s.payload, s.err
}

func TestValidTitle(t *testing.T) {
	cases := []struct {
		title string
		want  bool
	}{
		{"Partner", true},
		{"Managing Director", true},
		{"", false},
		{"   ", false},
		{"Former operator with decades of experience", false},
		{"Growth Equity", false},
		{"C-Suite advisor", false},
		{"one two three four five six", true},
		{"one two three four five six seven", false},
		{"Track Record Builder", false},
	}
	for _, tc := range cases {
		if got := extract.ValidTitle(tc.title); got != tc.want {
			t.Fatalf("ValidTitle(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}

func TestDecodeCandidatesShapes(t *testing.T) {
	want := []contacts.Candidate{
		{Name: "Jane Doe", Title: "Partner"},
		{Name: "John Smith", Title: ""},
	}
	cases := map[string]string{
		"list":            `[{"name":"Jane Doe","title":"Partner"},{"name":"John Smith","title":""}]`,
		"fenced":          "```json\n[{\"name\":\"Jane Doe\",\"title\":\"Partner\"},{\"name\":\"John Smith\"}]\n```",
		"wrapped":         `{"contacts":[{"name":" Jane Doe ","title":"Partner"},{"name":"John Smith","title":"Seasoned investor and operator"}]}`,
		"stringified":     `"[{\"name\":\"Jane Doe\",\"title\":\"Partner\"},{\"name\":\"John Smith\",\"title\":\"\"}]"`,
		"other key":       `{"team":[{"name":"Jane Doe","title":"Partner"},{"name":"John Smith"}]}`,
		"skips non-names": `[{"name":"Jane Doe","title":"Partner"},{"title":"Analyst"},"junk",{"name":"John Smith"}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			got := extract.DecodeCandidates(payload)
			if len(got) != len(want) {
				t.Fatalf("expected %d candidates, got %+v", len(want), got)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("candidate %d: got %+v want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestDecodeCandidatesNonStringName(t *testing.T) {
	got := extract.DecodeCandidates(`[{"name":42,"title":"Partner"}]`)
	if len(got) != 1 || got[0].Name != "" || got[0].Title != "Partner" {
		t.Fatalf("expected one empty-name candidate, got %+v", got)
	}
}

func TestFallbackParse(t *testing.T) {
	text := "Jane Doe\nPartner\n\n  John Smith  \nDecades of experience in growth investing\nDangling Line\n"
	got := extract.DecodeCandidates(text)
	want := []contacts.Candidate{
		{Name: "Jane Doe", Title: "Partner"},
		{Name: "John Smith", Title: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestModelExtractorExtract(t *testing.T) {
	stub := &stubCompleter{payload: `{"contacts":[{"name":"Jane Doe","title":"Partner"}]}`}
	extractor := extract.NewModelExtractor(stub, "stub", nil)

	got, err := extractor.Extract(context.Background(), "Acme", "Jane Doe - Partner")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Jane Doe" {
		t.Fatalf("unexpected candidates %+v", got)
	}
	if !strings.Contains(stub.user, "Jane Doe - Partner") {
		t.Fatalf("source text not forwarded: %q", stub.user)
	}
}

func TestModelExtractorFailures(t *testing.T) {
	cases := []struct {
		name string
		stub *stubCompleter
		text string
	}{
		{"transport", &stubCompleter{err: errors.New("http 500")}, "text"},
		{"empty result", &stubCompleter{payload: `{"contacts":[]}`}, "text"},
		{"no text", &stubCompleter{payload: `[]`}, "  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			extractor := extract.NewModelExtractor(tc.stub, "stub", nil)
			_, err := extractor.Extract(context.Background(), "Acme", tc.text)
			if !errors.Is(err, services.ErrExtraction) {
				t.Fatalf("expected ErrExtraction, got %v", err)
			}
			if !strings.Contains(err.Error(), "Acme") {
				t.Fatalf("expected organization in error, got %v", err)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	if _, err := extract.NewFromConfig(&cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without api key, got %v", err)
	}

	cfg.LLM.APIKey = "key"
	extractor, err := extract.NewFromConfig(&cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if extractor.Provider() != config.ProviderOpenRouter {
		t.Fatalf("unexpected provider %q", extractor.Provider())
	}

	cfg.Extraction.Provider = config.ProviderGemini
	cfg.Gemini.APIKey = "key"
	extractor, err = extract.NewFromConfig(&cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig gemini: %v", err)
	}
	if extractor.Provider() != config.ProviderGemini {
		t.Fatalf("unexpected provider %q", extractor.Provider())
	}
}
