package contacts

import (
	"errors"
	"fmt"
	"strings"
)

// Record is one person at one organization. Title may be empty.
type Record struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
}

// FullName joins first and last name with a single space.
func (r Record) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// AnnotatedRecord is a Record plus its disposition in an output batch.
type AnnotatedRecord struct {
	Record
	IsNew     bool   `json:"is_new"`
	IsRemoved bool   `json:"is_removed"`
	Notes     string `json:"notes,omitempty"`
}

// ErrConflictingFlags reports a record marked both new and removed.
var ErrConflictingFlags = errors.New("record is marked both new and removed")

// Validate checks the flag invariant.
func (a AnnotatedRecord) Validate() error {
	if a.IsNew && a.IsRemoved {
		return fmt.Errorf("%s: %w", a.FullName(), ErrConflictingFlags)
	}
	return nil
}

// Current reports whether the record is still listed by the organization.
func (a AnnotatedRecord) Current() bool {
	return !a.IsRemoved
}

// Candidate is one {name, title} pair produced by extraction. Name may be
// empty or a single token when the upstream output was noisy.
type Candidate struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}
