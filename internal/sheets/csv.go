package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"contactsync/internal/config"
	"contactsync/internal/contacts"
)

var (
	firstNameColumns    = []string{"first name", "firstname", "first"}
	lastNameColumns     = []string{"last name", "lastname", "last", "surname"}
	titleColumns        = []string{"title", "job title", "position"}
	organizationColumns = []string{"account name", "organization", "organisation", "company", "firm"}
	websiteColumns      = []string{"website", "url", "site"}
	nameColumns         = []string{"name", "full name"}
)

// ErrMissingColumn reports a CSV without a required header.
var ErrMissingColumn = errors.New("required column missing")

// Organization is one row of the organizations file.
type Organization struct {
	Name    string
	Website string
}

// LoadRegistry reads the contacts CSV and returns the registry for
// organization. Organization names compare case-insensitively. Rows missing
// both names are skipped. An empty organization loads every row.
func LoadRegistry(path, encoding, organization string) (*contacts.Registry, error) {
	rows, err := readCSV(path, encoding)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return contacts.NewRegistry(organization), nil
	}
	header := normalizeHeader(rows[0])
	first := findColumn(header, firstNameColumns)
	last := findColumn(header, lastNameColumns)
	full := findColumn(header, nameColumns)
	org := findColumn(header, organizationColumns)
	title := findColumn(header, titleColumns)
	if org < 0 {
		return nil, fmt.Errorf("%s: %w: Account Name", filepath.Base(path), ErrMissingColumn)
	}
	if (first < 0 || last < 0) && full < 0 {
		return nil, fmt.Errorf("%s: %w: First Name/Last Name", filepath.Base(path), ErrMissingColumn)
	}

	organization = strings.TrimSpace(organization)
	registry := contacts.NewRegistry(organization)
	for _, row := range rows[1:] {
		rowOrg := cell(row, org)
		if organization != "" && !strings.EqualFold(rowOrg, organization) {
			continue
		}
		rec := contacts.Record{
			FirstName:    cell(row, first),
			LastName:     cell(row, last),
			Title:        cell(row, title),
			Organization: rowOrg,
		}
		if rec.FirstName == "" && rec.LastName == "" && full >= 0 {
			name := cell(row, full)
			if idx := strings.IndexByte(name, ' '); idx > 0 {
				rec.FirstName, rec.LastName = name[:idx], strings.TrimSpace(name[idx+1:])
			} else {
				rec.FirstName = name
			}
		}
		if rec.FullName() == "" {
			continue
		}
		registry.Add(rec)
	}
	return registry, nil
}

// LoadOrganizations reads the organizations CSV. Blank and repeated names
// (case-insensitive) are skipped; order follows the file.
func LoadOrganizations(path, encoding string) ([]Organization, error) {
	rows, err := readCSV(path, encoding)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := normalizeHeader(rows[0])
	nameCol := findColumn(header, organizationColumns)
	if nameCol < 0 {
		return nil, fmt.Errorf("%s: %w: Account Name", filepath.Base(path), ErrMissingColumn)
	}
	siteCol := findColumn(header, websiteColumns)

	seen := make(map[string]struct{})
	orgs := make([]Organization, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		orgs = append(orgs, Organization{Name: name, Website: cell(row, siteCol)})
	}
	return orgs, nil
}

func readCSV(path, encoding string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(decodingReader(f, encoding))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func decodingReader(r io.Reader, encoding string) io.Reader {
	switch encoding {
	case config.EncodingLatin1:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case config.EncodingWindows1252:
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return r
	}
}

func normalizeHeader(row []string) []string {
	header := make([]string, len(row))
	for i, v := range row {
		header[i] = strings.ToLower(cleanCell(v))
	}
	return header
}

func findColumn(header []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, name := range header {
			if name == candidate {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}
