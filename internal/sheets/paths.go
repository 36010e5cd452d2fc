package sheets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

const (
	outputSuffix  = "_updated_contacts.xlsx"
	cleanedSuffix = ".xlsx"
	lockPrefix    = "~$"
)

// Output is an annotated workbook found in the output directory.
type Output struct {
	Organization string
	Path         string
	ModTime      time.Time
}

// OutputPath returns the annotated workbook location for organization.
func OutputPath(dir, organization string) string {
	return filepath.Join(dir, OrganizationStem(organization)+outputSuffix)
}

// CleanedPath returns the cleaned workbook location for organization.
func CleanedPath(dir, organization string) string {
	return filepath.Join(dir, OrganizationStem(organization)+cleanedSuffix)
}

// OrganizationStem is the workbook file stem for an organization. Separators
// become "-" and characters spreadsheet tools reject in names are dropped;
// case and spacing survive so the stem reads like the organization.
func OrganizationStem(organization string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*':
			return '-'
		case '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, strings.TrimSpace(organization))
}

// OrganizationKey is a lower-case token for the organization, used to name
// per-organization lock files. Organizations whose stems differ only by case
// share a key.
func OrganizationKey(organization string) string {
	key := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, OrganizationStem(organization))
	if key = strings.Trim(key, "_-"); key == "" {
		return "unknown"
	}
	return key
}

// OrganizationFromOutput recovers the (sanitized) organization name from an
// annotated workbook file name.
func OrganizationFromOutput(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, lockPrefix) || !strings.HasSuffix(base, outputSuffix) {
		return "", false
	}
	org := strings.TrimSuffix(base, outputSuffix)
	return org, org != ""
}

// ListOutputs returns the annotated workbooks in dir sorted by organization.
// Office lock files (~$...) are skipped. A missing directory yields no outputs.
func ListOutputs(dir string) ([]Output, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	outputs := make([]Output, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		org, ok := OrganizationFromOutput(entry.Name())
		if !ok {
			continue
		}
		out := Output{Organization: org, Path: filepath.Join(dir, entry.Name())}
		if info, err := entry.Info(); err == nil {
			out.ModTime = info.ModTime()
		}
		outputs = append(outputs, out)
	}
	sort.Slice(outputs, func(i, j int) bool {
		return strings.ToLower(outputs[i].Organization) < strings.ToLower(outputs[j].Organization)
	})
	return outputs, nil
}
