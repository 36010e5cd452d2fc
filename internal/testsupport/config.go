package testsupport

import (
	"path/filepath"
	"testing"

	"contactsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a fresh temp workspace per test.
// Paths are absolute; nothing is created on disk until a fixture writer runs.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkspaceDir = base
	cfgVal.Paths.ContactsCSV = filepath.Join(base, "data", "contacts.csv")
	cfgVal.Paths.OrganizationsCSV = filepath.Join(base, "data", "organizations.csv")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.CleanedDir = filepath.Join(base, "cleaned")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ReviewLog = filepath.Join(base, "logs", "flagged_for_review.txt")
	cfgVal.Paths.LedgerPath = filepath.Join(base, "state", "ledger.db")
	cfgVal.LLM.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithNicknames adds extra nickname mappings.
func WithNicknames(extra map[string]string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Nicknames == nil {
			b.cfg.Nicknames = make(map[string]string, len(extra))
		}
		for k, v := range extra {
			b.cfg.Nicknames[k] = v
		}
	}
}

// WithThresholds overrides the matching thresholds.
func WithThresholds(match, duplicate, review int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.MatchThreshold = match
		b.cfg.Matching.DuplicateThreshold = duplicate
		b.cfg.Matching.ReviewThreshold = review
	}
}

// WithContacts writes a contacts CSV fixture with the given data rows.
func WithContacts(rows ...[]string) ConfigOption {
	return func(b *configBuilder) {
		WriteCSV(b.t, b.cfg.Paths.ContactsCSV, []string{"First Name", "Last Name", "Title", "Account Name"}, rows...)
	}
}

// WithOrganizations writes an organizations CSV fixture.
func WithOrganizations(names ...string) ConfigOption {
	return func(b *configBuilder) {
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			rows = append(rows, []string{name, ""})
		}
		WriteCSV(b.t, b.cfg.Paths.OrganizationsCSV, []string{"Account Name", "Website"}, rows...)
	}
}
