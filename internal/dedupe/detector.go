package dedupe

import (
	"log/slog"
	"strings"

	"contactsync/internal/contacts"
	"contactsync/internal/logging"
	"contactsync/internal/names"
	"contactsync/internal/reviewqueue"
	"contactsync/internal/textutil"
)

// ReviewSink receives flagged pairs. reviewqueue.Log satisfies it.
type ReviewSink interface {
	Append(entries ...reviewqueue.Entry) error
}

// Detector deduplicates batches of annotated records.
type Detector struct {
	normalizer *names.Normalizer
	scorer     textutil.Scorer
	policy     Policy
	sink       ReviewSink
	logger     *slog.Logger
}

// Option customizes the detector.
type Option func(*Detector)

// WithScorer overrides the similarity scorer.
func WithScorer(scorer textutil.Scorer) Option {
	return func(d *Detector) {
		if scorer != nil {
			d.scorer = scorer
		}
	}
}

// WithPolicy overrides the thresholds.
func WithPolicy(policy Policy) Option {
	return func(d *Detector) {
		d.policy = policy.normalized()
	}
}

// WithReviewSink sets where flagged pairs are appended.
func WithReviewSink(sink ReviewSink) Option {
	return func(d *Detector) {
		d.sink = sink
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logging.NewComponentLogger(logger, "dedupe")
	}
}

// New constructs a Detector.
func New(normalizer *names.Normalizer, opts ...Option) *Detector {
	if normalizer == nil {
		normalizer = names.NewNormalizer(names.DefaultNicknames())
	}
	d := &Detector{
		normalizer: normalizer,
		scorer:     textutil.TokenSortRatio,
		policy:     DefaultPolicy(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type seenEntry struct {
	key   string
	title string
}

// Dedupe returns the retained records in input order plus the review entries
// for pairs in the review band. Entries are also appended to the sink; a sink
// failure is logged and does not affect the returned values.
func (d *Detector) Dedupe(records []contacts.AnnotatedRecord, organization string) ([]contacts.AnnotatedRecord, []reviewqueue.Entry) {
	kept := make([]contacts.AnnotatedRecord, 0, len(records))
	keys := make([]string, 0, len(records))
	seen := make([]seenEntry, 0, len(records))
	dropped := 0

	for _, rec := range records {
		key := d.normalizer.Normalize(rec.FullName())
		title := normalizeTitle(rec.Title)
		if d.isExactDuplicate(key, title, seen) {
			dropped++
			d.logger.Debug("dropped duplicate",
				logging.String(logging.FieldOrganization, organization),
				logging.String("name", rec.FullName()),
				logging.String("title", rec.Title),
			)
			continue
		}
		seen = append(seen, seenEntry{key: key, title: title})
		kept = append(kept, rec)
		keys = append(keys, key)
	}

	var flagged []reviewqueue.Entry
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			score := d.scorer(keys[i], keys[j])
			if score >= d.policy.ReviewThreshold && score < d.policy.DuplicateThreshold {
				flagged = append(flagged, reviewqueue.Entry{
					Organization: organization,
					NameA:        keys[i],
					NameB:        keys[j],
					Score:        score,
				})
			}
		}
	}

	if len(flagged) > 0 && d.sink != nil {
		if err := d.sink.Append(flagged...); err != nil {
			logging.WarnWithContext(d.logger, "review queue append failed", "review_queue_write_failed",
				logging.String(logging.FieldOrganization, organization),
				logging.Int("entries", len(flagged)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "near-duplicate pairs were not queued for review"),
				logging.String(logging.FieldErrorHint, "check permissions on the review log and re-run clean"),
			)
		}
	}

	d.logger.Info("deduplicated records",
		logging.String(logging.FieldOrganization, organization),
		logging.Int("input", len(records)),
		logging.Int("kept", len(kept)),
		logging.Int("dropped", dropped),
		logging.Int("flagged", len(flagged)),
	)
	return kept, flagged
}

// isExactDuplicate reports whether any seen record is the same person with
// the same title. A same-person match with a different title does not count.
func (d *Detector) isExactDuplicate(key, title string, seen []seenEntry) bool {
	for _, prior := range seen {
		if prior.title != title {
			continue
		}
		if d.scorer(key, prior.key) >= d.policy.DuplicateThreshold {
			return true
		}
	}
	return false
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
