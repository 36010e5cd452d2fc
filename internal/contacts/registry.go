package contacts

import (
	"strings"

	"github.com/google/uuid"
)

// Registry holds the records of one organization keyed by ID, remembering
// insertion order. It is not safe for concurrent mutation.
type Registry struct {
	organization string
	records      map[string]*Record
	order        []string
}

// NewRegistry builds a registry for organization from records. Records without
// an ID are assigned a fresh UUID.
func NewRegistry(organization string, records ...Record) *Registry {
	reg := &Registry{
		organization: strings.TrimSpace(organization),
		records:      make(map[string]*Record, len(records)),
		order:        make([]string, 0, len(records)),
	}
	for _, rec := range records {
		reg.Add(rec)
	}
	return reg
}

// Organization returns the organization the registry belongs to.
func (r *Registry) Organization() string {
	return r.organization
}

// Add stores rec and returns its ID. An empty or already used ID is replaced.
func (r *Registry) Add(rec Record) string {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else if _, exists := r.records[rec.ID]; exists {
		rec.ID = uuid.NewString()
	}
	if rec.Organization == "" {
		rec.Organization = r.organization
	}
	stored := rec
	r.records[rec.ID] = &stored
	r.order = append(r.order, rec.ID)
	return rec.ID
}

// Get returns a copy of the record stored under id.
func (r *Registry) Get(id string) (Record, bool) {
	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// SetTitle overwrites the title of the record stored under id.
func (r *Registry) SetTitle(id, title string) bool {
	rec, ok := r.records[id]
	if !ok {
		return false
	}
	rec.Title = title
	return true
}

// IDs returns record IDs in insertion order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Records returns copies of all records in insertion order.
func (r *Registry) Records() []Record {
	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.records[id])
	}
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.order)
}

// Clone returns a deep copy that can be mutated independently.
func (r *Registry) Clone() *Registry {
	clone := &Registry{
		organization: r.organization,
		records:      make(map[string]*Record, len(r.records)),
		order:        r.IDs(),
	}
	for id, rec := range r.records {
		copied := *rec
		clone.records[id] = &copied
	}
	return clone
}
