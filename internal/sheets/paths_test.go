package sheets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutputPaths(t *testing.T) {
	if got := OutputPath("/out", "Acme / Partners"); got != filepath.Join("/out", "Acme - Partners_updated_contacts.xlsx") {
		t.Fatalf("unexpected output path %q", got)
	}
	if got := CleanedPath("/clean", "Acme: Co?"); got != filepath.Join("/clean", "Acme- Co.xlsx") {
		t.Fatalf("unexpected cleaned path %q", got)
	}
}

func TestListOutputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"beta_updated_contacts.xlsx",
		"Acme_updated_contacts.xlsx",
		"~$Acme_updated_contacts.xlsx",
		"notes.txt",
		"Acme.xlsx",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub_updated_contacts.xlsx"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	outputs, err := ListOutputs(dir)
	if err != nil {
		t.Fatalf("ListOutputs: %v", err)
	}
	if len(outputs) != 2 || outputs[0].Organization != "Acme" || outputs[1].Organization != "beta" {
		t.Fatalf("unexpected outputs %+v", outputs)
	}
	if outputs[0].ModTime.IsZero() {
		t.Fatal("expected mod time")
	}

	missing, err := ListOutputs(filepath.Join(dir, "missing"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty result for missing dir, got %v %v", missing, err)
	}
}

func TestOrganizationNaming(t *testing.T) {
	tests := []struct {
		in       string
		wantStem string
		wantKey  string
	}{
		{"Acme Ventures", "Acme Ventures", "acme_ventures"},
		{"  A/B Capital  ", "A-B Capital", "a-b_capital"},
		{"What? Partners", "What Partners", "what_partners"},
		{"Smith, Jones & Co", "Smith, Jones & Co", "smith__jones___co"},
		{"Zürich Fund", "Zürich Fund", "z_rich_fund"},
		{"***", "---", "unknown"},
		{"", "", "unknown"},
	}
	for _, tt := range tests {
		if got := OrganizationStem(tt.in); got != tt.wantStem {
			t.Errorf("OrganizationStem(%q) = %q, want %q", tt.in, got, tt.wantStem)
		}
		if got := OrganizationKey(tt.in); got != tt.wantKey {
			t.Errorf("OrganizationKey(%q) = %q, want %q", tt.in, got, tt.wantKey)
		}
	}
	if OrganizationKey("ACME Capital") != OrganizationKey("acme capital") {
		t.Fatal("keys should ignore case")
	}
}
