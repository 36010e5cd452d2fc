package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"contactsync/internal/contacts"
	"contactsync/internal/logging"
	"contactsync/internal/names"
	"contactsync/internal/textutil"
)

const (
	placeholderName = "TBU"
	newNoteLayout   = "2006-01-02"
)

// ErrNoCandidates is returned when there is nothing to reconcile against.
var ErrNoCandidates = errors.New("no candidates to reconcile")

// Engine reconciles candidate batches against a registry.
type Engine struct {
	normalizer *names.Normalizer
	scorer     textutil.Scorer
	policy     Policy
	now        func() time.Time
	logger     *slog.Logger
}

// Option customizes the engine.
type Option func(*Engine)

// WithScorer overrides the similarity scorer (defaults to TokenSortRatio).
func WithScorer(scorer textutil.Scorer) Option {
	return func(e *Engine) {
		if scorer != nil {
			e.scorer = scorer
		}
	}
}

// WithPolicy overrides the match thresholds.
func WithPolicy(policy Policy) Option {
	return func(e *Engine) {
		e.policy = policy.normalized()
	}
}

// WithClock overrides the clock used for "New as of" notes.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.NewComponentLogger(logger, "reconcile")
	}
}

// New constructs an Engine around normalizer.
func New(normalizer *names.Normalizer, opts ...Option) *Engine {
	if normalizer == nil {
		normalizer = names.NewNormalizer(names.DefaultNicknames())
	}
	e := &Engine{
		normalizer: normalizer,
		scorer:     textutil.TokenSortRatio,
		policy:     DefaultPolicy(),
		now:        time.Now,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result carries the three partitions of a reconciliation run.
type Result struct {
	// Registry is the input registry after in-place title updates.
	Registry *contacts.Registry
	// Current holds matched and new records in candidate order.
	Current []contacts.AnnotatedRecord
	// Removed holds registry records no candidate matched, in registry order.
	Removed []contacts.AnnotatedRecord

	Matched   []contacts.Record
	New       []contacts.Record
	Missing   []contacts.Record
	Updated   int
	Malformed int
	Dropped   int
}

// Records returns the annotated output: current records first, removed last.
func (r Result) Records() []contacts.AnnotatedRecord {
	out := make([]contacts.AnnotatedRecord, 0, len(r.Current)+len(r.Removed))
	out = append(out, r.Current...)
	out = append(out, r.Removed...)
	return out
}

type poolEntry struct {
	id  string
	key string
}

// Reconcile merges candidates into registry. The registry is mutated in place
// (titles only). When candidates is empty the registry is left untouched and
// ErrNoCandidates is returned.
func (e *Engine) Reconcile(registry *contacts.Registry, candidates []contacts.Candidate) (Result, error) {
	if registry == nil {
		return Result{}, errors.New("reconcile: registry is nil")
	}
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("reconcile %s: %w", registry.Organization(), ErrNoCandidates)
	}

	organization := registry.Organization()
	pool := make([]poolEntry, 0, registry.Len())
	for _, rec := range registry.Records() {
		if !sameOrganization(rec.Organization, organization) {
			continue
		}
		pool = append(pool, poolEntry{id: rec.ID, key: e.normalizer.Normalize(rec.FullName())})
	}
	matched := make(map[string]struct{}, len(pool))
	emittedNew := make(map[string]struct{})
	newNote := "New as of " + e.now().Format(newNoteLayout)

	result := Result{Registry: registry}
	for idx, cand := range candidates {
		title := strings.TrimSpace(cand.Title)
		first, last, ok := names.SplitName(cand.Name)
		if !ok {
			result.Malformed++
			key := "malformed:" + e.normalizer.Normalize(cand.Name)
			if _, seen := emittedNew[key]; seen {
				result.Dropped++
				continue
			}
			emittedNew[key] = struct{}{}
			rec := contacts.Record{
				ID:           uuid.NewString(),
				FirstName:    placeholderName,
				LastName:     placeholderName,
				Title:        title,
				Organization: organization,
			}
			note := fmt.Sprintf("%s; malformed contact from extraction (candidate %d, name %q)", newNote, idx+1, strings.TrimSpace(cand.Name))
			e.logger.Warn("malformed candidate",
				logging.String("organization", organization),
				logging.Int("candidate", idx+1),
				logging.String("name", cand.Name),
			)
			result.New = append(result.New, rec)
			result.Current = append(result.Current, contacts.AnnotatedRecord{Record: rec, IsNew: true, Notes: note})
			continue
		}

		key := e.normalizer.Normalize(first + " " + last)
		bestID, bestScore := e.bestMatch(key, pool, matched)
		if bestID != "" && bestScore >= e.policy.MatchThreshold {
			matched[bestID] = struct{}{}
			current, _ := registry.Get(bestID)
			if title != "" && title != current.Title {
				registry.SetTitle(bestID, title)
				result.Updated++
				e.logger.Debug("title updated",
					logging.String("organization", organization),
					logging.String("name", current.FullName()),
					logging.String("from", current.Title),
					logging.String("to", title),
				)
			}
			updated, _ := registry.Get(bestID)
			result.Matched = append(result.Matched, updated)
			result.Current = append(result.Current, contacts.AnnotatedRecord{Record: updated})
			continue
		}

		if _, seen := emittedNew[key]; seen {
			result.Dropped++
			continue
		}
		emittedNew[key] = struct{}{}
		rec := contacts.Record{
			ID:           uuid.NewString(),
			FirstName:    first,
			LastName:     last,
			Title:        title,
			Organization: organization,
		}
		result.New = append(result.New, rec)
		result.Current = append(result.Current, contacts.AnnotatedRecord{Record: rec, IsNew: true, Notes: newNote})
	}

	for _, entry := range pool {
		if _, ok := matched[entry.id]; ok {
			continue
		}
		rec, _ := registry.Get(entry.id)
		result.Missing = append(result.Missing, rec)
		result.Removed = append(result.Removed, contacts.AnnotatedRecord{Record: rec, IsRemoved: true})
	}

	e.logger.Info("reconciled candidates",
		logging.String("organization", organization),
		logging.Int("candidates", len(candidates)),
		logging.Int("matched", len(result.Matched)),
		logging.Int("new", len(result.New)),
		logging.Int("removed", len(result.Missing)),
		logging.Int("malformed", result.Malformed),
	)
	return result, nil
}

// bestMatch returns the highest scoring unmatched pool entry. Ties go to the
// earliest registry record.
func (e *Engine) bestMatch(key string, pool []poolEntry, matched map[string]struct{}) (string, int) {
	bestID := ""
	bestScore := -1
	for _, entry := range pool {
		if _, taken := matched[entry.id]; taken {
			continue
		}
		score := e.scorer(key, entry.key)
		if score > bestScore {
			bestID, bestScore = entry.id, score
		}
	}
	return bestID, bestScore
}

func sameOrganization(recordOrg, registryOrg string) bool {
	recordOrg = strings.TrimSpace(recordOrg)
	if recordOrg == "" || registryOrg == "" {
		return true
	}
	return strings.EqualFold(recordOrg, registryOrg)
}
