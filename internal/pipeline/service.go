package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"contactsync/internal/config"
	"contactsync/internal/contacts"
	"contactsync/internal/dedupe"
	"contactsync/internal/extract"
	"contactsync/internal/fileutil"
	"contactsync/internal/ledger"
	"contactsync/internal/logging"
	"contactsync/internal/names"
	"contactsync/internal/notifications"
	"contactsync/internal/reconcile"
	"contactsync/internal/reviewqueue"
	"contactsync/internal/services"
	"contactsync/internal/sheets"
)

// Service wires the reconciliation components to the workspace on disk.
type Service struct {
	cfg        *config.Config
	ledger     *ledger.Store
	extractor  extract.Extractor
	normalizer *names.Normalizer
	engine     *reconcile.Engine
	detector   *dedupe.Detector
	reviews    *reviewqueue.Log
	notifier   notifications.Service
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes the service.
type Option func(*Service)

// WithExtractor sets the candidate extractor used by Update.
func WithExtractor(extractor extract.Extractor) Option {
	return func(s *Service) {
		s.extractor = extractor
	}
}

// WithNotifier overrides the notifier built from config.
func WithNotifier(notifier notifications.Service) Option {
	return func(s *Service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the date used in new-record notes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Service. store may be nil, in which case runs are not recorded.
func New(cfg *config.Config, store *ledger.Store, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	s := &Service{
		cfg:      cfg,
		ledger:   store,
		notifier: notifications.NewService(cfg),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	base := s.logger
	s.logger = logging.NewComponentLogger(base, "pipeline")
	s.normalizer = names.NewNormalizer(names.DefaultNicknames().Merge(cfg.Nicknames))
	s.reviews = reviewqueue.Open(cfg.Paths.ReviewLog)
	s.engine = reconcile.New(s.normalizer,
		reconcile.WithPolicy(reconcile.Policy{MatchThreshold: cfg.Matching.MatchThreshold}),
		reconcile.WithClock(s.now),
		reconcile.WithLogger(base),
	)
	s.detector = dedupe.New(s.normalizer,
		dedupe.WithPolicy(dedupe.Policy{
			DuplicateThreshold: cfg.Matching.DuplicateThreshold,
			ReviewThreshold:    cfg.Matching.ReviewThreshold,
		}),
		dedupe.WithReviewSink(s.reviews),
		dedupe.WithLogger(base),
	)
	return s, nil
}

// ReviewLog exposes the review queue backing Clean and Approve.
func (s *Service) ReviewLog() *reviewqueue.Log {
	return s.reviews
}

// UpdateReport summarizes one Update run.
type UpdateReport struct {
	Organization string                     `json:"organization"`
	RunID        string                     `json:"run_id,omitempty"`
	OutputPath   string                     `json:"output_path"`
	Candidates   int                        `json:"candidates"`
	Matched      int                        `json:"matched"`
	New          int                        `json:"new"`
	Missing      int                        `json:"missing"`
	Updated      int                        `json:"updated"`
	Malformed    int                        `json:"malformed"`
	Dropped      int                        `json:"dropped"`
	Records      []contacts.AnnotatedRecord `json:"records"`
}

// Update reconciles freshly extracted candidates for organization and writes
// the annotated workbook. Nothing is written when extraction fails.
func (s *Service) Update(ctx context.Context, organization, text string) (*UpdateReport, error) {
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return nil, services.Wrap(services.ErrValidation, "", "update", "organization required", nil)
	}
	if s.extractor == nil {
		return nil, services.Wrap(services.ErrConfiguration, organization, "update", "no extractor configured", nil)
	}
	ctx = services.WithOperation(services.WithOrganization(ctx, organization), string(ledger.KindUpdate))

	lock, err := s.acquireLock(organization, "update")
	if err != nil {
		return nil, err
	}
	defer lock.release()

	run, ctx, err := s.beginRun(ctx, organization, ledger.KindUpdate)
	if err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, s.logger)

	report, err := s.update(ctx, organization, text)
	if err != nil {
		s.failRun(ctx, run, err)
		s.notifyFailure(ctx, organization, string(ledger.KindUpdate), err)
		return nil, err
	}
	report.RunID = runID(run)
	s.completeRun(ctx, run, ledger.Stats{
		Candidates: report.Candidates,
		New:        report.New,
		Updated:    report.Updated,
		Missing:    report.Missing,
		Dropped:    report.Dropped,
	})
	logger.Info("organization updated",
		logging.String(logging.FieldEventType, "update_complete"),
		logging.String("output", report.OutputPath),
		logging.Int("matched", report.Matched),
		logging.Int("new", report.New),
		logging.Int("missing", report.Missing),
	)
	s.notify(ctx, notifications.EventUpdateCompleted, notifications.Payload{
		"organization": organization,
		"matched":      report.Matched,
		"new":          report.New,
		"missing":      report.Missing,
	})
	return report, nil
}

func (s *Service) update(ctx context.Context, organization, text string) (*UpdateReport, error) {
	registry, err := sheets.LoadRegistry(s.cfg.Paths.ContactsCSV, s.cfg.Paths.ContactsEncoding, organization)
	if err != nil {
		return nil, classifyInputError(organization, "load registry", err)
	}

	candidates, err := s.extractor.Extract(ctx, organization, text)
	if err != nil {
		if errors.Is(err, services.ErrExtraction) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrExtraction, organization, "update", "extract candidates", err)
	}

	result, err := s.engine.Reconcile(registry, candidates)
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, organization, "update", "reconcile", err)
	}

	path := sheets.OutputPath(s.cfg.Paths.OutputDir, organization)
	records := result.Records()
	if err := sheets.WriteAnnotated(path, records); err != nil {
		return nil, services.Wrap(services.ErrPersistence, organization, "update", "write annotated workbook", err)
	}
	return &UpdateReport{
		Organization: organization,
		OutputPath:   path,
		Candidates:   len(candidates),
		Matched:      len(result.Matched),
		New:          len(result.New),
		Missing:      len(result.Missing),
		Updated:      result.Updated,
		Malformed:    result.Malformed,
		Dropped:      result.Dropped,
		Records:      records,
	}, nil
}

// CleanReport is the outcome of cleaning one organization.
type CleanReport struct {
	Organization string              `json:"organization"`
	RunID        string              `json:"run_id,omitempty"`
	OutputPath   string              `json:"output_path"`
	CleanedPath  string              `json:"cleaned_path,omitempty"`
	Kept         int                 `json:"kept"`
	Dropped      int                 `json:"dropped"`
	NotListed    int                 `json:"not_listed"`
	Flagged      []reviewqueue.Entry `json:"flagged,omitempty"`
	// Error carries Err's message into JSON output.
	Error        string              `json:"error,omitempty"`
	Err          error               `json:"-"`
}

// Clean deduplicates the annotated workbooks of organizations into cleaned
// workbooks. An empty list cleans every annotated workbook in the output
// directory. One report is returned per organization, failures included.
func (s *Service) Clean(ctx context.Context, organizations []string) ([]CleanReport, error) {
	if len(organizations) == 0 {
		outputs, err := sheets.ListOutputs(s.cfg.Paths.OutputDir)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "", "clean", "list outputs", err)
		}
		for _, out := range outputs {
			organizations = append(organizations, out.Organization)
		}
	}

	started := s.now()
	reports := make([]CleanReport, 0, len(organizations))
	failed := 0
	for _, organization := range organizations {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report := s.cleanOne(ctx, strings.TrimSpace(organization))
		if report.Err != nil {
			report.Error = report.Err.Error()
			failed++
		}
		reports = append(reports, report)
	}
	if len(reports) > 0 {
		s.notify(ctx, notifications.EventCleanCompleted, notifications.Payload{
			"processed": len(reports) - failed,
			"failed":    failed,
			"duration":  s.now().Sub(started),
		})
	}
	return reports, nil
}

func (s *Service) cleanOne(ctx context.Context, organization string) CleanReport {
	report := CleanReport{
		Organization: organization,
		OutputPath:   sheets.OutputPath(s.cfg.Paths.OutputDir, organization),
	}
	if organization == "" {
		report.Err = services.Wrap(services.ErrValidation, "", "clean", "organization required", nil)
		return report
	}
	ctx = services.WithOperation(services.WithOrganization(ctx, organization), string(ledger.KindClean))

	lock, err := s.acquireLock(organization, "clean")
	if err != nil {
		report.Err = err
		return report
	}
	defer lock.release()

	run, ctx, err := s.beginRun(ctx, organization, ledger.KindClean)
	if err != nil {
		report.Err = err
		return report
	}
	report.RunID = runID(run)

	if err := s.clean(ctx, &report); err != nil {
		report.Err = err
		s.failRun(ctx, run, err)
		s.notifyFailure(ctx, organization, string(ledger.KindClean), err)
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "clean failed",
			"clean_failed",
			logging.String(logging.FieldErrorHint, "check the annotated workbook and rerun clean"),
			logging.Error(err),
		)
		return report
	}
	s.completeRun(ctx, run, ledger.Stats{
		Dropped: report.Dropped,
		Missing: report.NotListed,
		Flagged: len(report.Flagged),
	})
	logging.WithContext(ctx, s.logger).Info("organization cleaned",
		logging.String(logging.FieldEventType, "clean_complete"),
		logging.String("cleaned", report.CleanedPath),
		logging.Int("kept", report.Kept),
		logging.Int("dropped", report.Dropped),
		logging.Int("flagged", len(report.Flagged)),
	)
	if len(report.Flagged) > 0 {
		s.notify(ctx, notifications.EventReviewPending, notifications.Payload{
			"organization": report.Organization,
			"flagged":      len(report.Flagged),
		})
	}
	return report
}

func (s *Service) clean(ctx context.Context, report *CleanReport) error {
	organization := report.Organization
	records, err := sheets.ReadAnnotated(report.OutputPath)
	if err != nil {
		return classifyInputError(organization, "read annotated workbook", err)
	}
	if name := recordedOrganization(records); name != "" {
		organization = name
		report.Organization = name
	}

	current := make([]contacts.AnnotatedRecord, 0, len(records))
	var removed []contacts.AnnotatedRecord
	for _, rec := range records {
		if rec.IsRemoved {
			removed = append(removed, rec)
			continue
		}
		current = append(current, rec)
	}

	kept, flagged := s.detector.Dedupe(current, organization)
	notListed := s.notListed(current, removed)

	report.CleanedPath = sheets.CleanedPath(s.cfg.Paths.CleanedDir, organization)
	if err := sheets.WriteCleaned(report.CleanedPath, organization, kept, notListed); err != nil {
		return services.Wrap(services.ErrPersistence, organization, "clean", "write cleaned workbook", err)
	}
	report.Kept = len(kept)
	report.Dropped = len(current) - len(kept)
	report.NotListed = len(notListed)
	report.Flagged = flagged
	return nil
}

// notListed returns removed records whose normalized name is not among the
// current records, each name once.
func (s *Service) notListed(current, removed []contacts.AnnotatedRecord) []contacts.AnnotatedRecord {
	keys := make(map[string]struct{}, len(current)+len(removed))
	for _, rec := range current {
		keys[s.normalizer.Normalize(rec.FullName())] = struct{}{}
	}
	out := make([]contacts.AnnotatedRecord, 0, len(removed))
	for _, rec := range removed {
		key := s.normalizer.Normalize(rec.FullName())
		if _, dup := keys[key]; dup {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// ApproveReport is the outcome of Approve.
type ApproveReport struct {
	Organization   string `json:"organization"`
	RunID          string `json:"run_id,omitempty"`
	CleanedPath    string `json:"cleaned_path"`
	ReviewsCleared int    `json:"reviews_cleared"`
}

// Approve promotes the reviewed annotated workbook to the cleaned directory
// and clears the organization's review entries.
func (s *Service) Approve(ctx context.Context, organization string) (*ApproveReport, error) {
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return nil, services.Wrap(services.ErrValidation, "", "approve", "organization required", nil)
	}
	ctx = services.WithOperation(services.WithOrganization(ctx, organization), string(ledger.KindApprove))

	lock, err := s.acquireLock(organization, "approve")
	if err != nil {
		return nil, err
	}
	defer lock.release()

	run, ctx, err := s.beginRun(ctx, organization, ledger.KindApprove)
	if err != nil {
		return nil, err
	}

	report := &ApproveReport{
		Organization: organization,
		RunID:        runID(run),
		CleanedPath:  sheets.CleanedPath(s.cfg.Paths.CleanedDir, organization),
	}
	src := sheets.OutputPath(s.cfg.Paths.OutputDir, organization)
	if err := fileutil.CopyFileVerified(src, report.CleanedPath); err != nil {
		err = classifyInputError(organization, "copy reviewed workbook", err)
		s.failRun(ctx, run, err)
		return nil, err
	}
	cleared, err := s.reviews.Remove(organization)
	if err != nil {
		err = services.Wrap(services.ErrPersistence, organization, "approve", "clear review entries", err)
		s.failRun(ctx, run, err)
		return nil, err
	}
	report.ReviewsCleared = cleared
	s.completeRun(ctx, run, ledger.Stats{Flagged: cleared})
	logging.WithContext(ctx, s.logger).Info("organization approved",
		logging.String(logging.FieldEventType, "approve_complete"),
		logging.String("cleaned", report.CleanedPath),
		logging.Int("reviews_cleared", cleared),
	)
	return report, nil
}

func (s *Service) beginRun(ctx context.Context, organization string, kind ledger.Kind) (*ledger.Run, context.Context, error) {
	if s.ledger == nil {
		return nil, ctx, nil
	}
	run, err := s.ledger.BeginRun(ctx, organization, kind)
	if err != nil {
		return nil, ctx, services.Wrap(services.ErrPersistence, organization, string(kind), "record run", err)
	}
	return run, services.WithRunID(ctx, run.ID), nil
}

func (s *Service) completeRun(ctx context.Context, run *ledger.Run, stats ledger.Stats) {
	if s.ledger == nil || run == nil {
		return
	}
	if err := s.ledger.Complete(context.WithoutCancel(ctx), run, stats); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to record run completion",
			"ledger_write_failed",
			logging.String(logging.FieldImpact, "run history for this organization may be stale"),
			logging.Error(err),
		)
	}
}

func (s *Service) failRun(ctx context.Context, run *ledger.Run, cause error) {
	if s.ledger == nil || run == nil {
		return
	}
	if err := s.ledger.Fail(context.WithoutCancel(ctx), run, services.FailureStatus(cause), cause); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to record run failure",
			"ledger_write_failed",
			logging.String(logging.FieldImpact, "run history for this organization may be stale"),
			logging.Error(err),
		)
	}
}

func runID(run *ledger.Run) string {
	if run == nil {
		return ""
	}
	return run.ID
}

func recordedOrganization(records []contacts.AnnotatedRecord) string {
	for _, rec := range records {
		if org := strings.TrimSpace(rec.Organization); org != "" {
			return org
		}
	}
	return ""
}

func classifyInputError(organization, operation string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return services.Wrap(services.ErrNotFound, organization, operation, "", err)
	case errors.Is(err, sheets.ErrMissingColumn):
		return services.Wrap(services.ErrValidation, organization, operation, "", err)
	default:
		return services.Wrap(services.ErrPersistence, organization, operation, "read failed", err)
	}
}
