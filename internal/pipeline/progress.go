package pipeline

import (
	"context"
	"os"
	"strings"

	"contactsync/internal/ledger"
	"contactsync/internal/services"
	"contactsync/internal/sheets"
)

// Progress describes how far the organization list has been worked through.
type Progress struct {
	Total     int      `json:"total"`
	Processed []string `json:"processed"`
	Remaining []string `json:"remaining"`
	Starred   []string `json:"starred"`
}

// Progress reports processed organizations (an annotated workbook exists),
// remaining ones (neither processed nor starred), and starred ones.
func (s *Service) Progress(ctx context.Context) (*Progress, error) {
	orgs, err := sheets.LoadOrganizations(s.cfg.Paths.OrganizationsCSV, s.cfg.Paths.ContactsEncoding)
	if err != nil {
		return nil, classifyInputError("", "load organizations", err)
	}
	starredNames, starred, err := s.starred(ctx)
	if err != nil {
		return nil, err
	}

	progress := &Progress{Total: len(orgs), Starred: starredNames}
	for _, org := range orgs {
		_, isStarred := starred[strings.ToLower(org.Name)]
		switch {
		case s.processed(org.Name):
			progress.Processed = append(progress.Processed, org.Name)
		case isStarred:
		default:
			progress.Remaining = append(progress.Remaining, org.Name)
		}
	}
	return progress, nil
}

// Next returns the first remaining organization, or "" when everything is
// processed or starred.
func (s *Service) Next(ctx context.Context) (string, error) {
	progress, err := s.Progress(ctx)
	if err != nil {
		return "", err
	}
	if len(progress.Remaining) == 0 {
		return "", nil
	}
	return progress.Remaining[0], nil
}

// Star flags or unflags an organization for later.
func (s *Service) Star(ctx context.Context, organization string, starred bool) error {
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return services.Wrap(services.ErrValidation, "", "star", "organization required", nil)
	}
	if s.ledger == nil {
		return services.Wrap(services.ErrConfiguration, organization, "star", "ledger unavailable", nil)
	}
	if err := s.ledger.SetStarred(ctx, organization, starred); err != nil {
		return services.Wrap(services.ErrPersistence, organization, "star", "update ledger", err)
	}
	return nil
}

// History returns recent runs, optionally for one organization.
func (s *Service) History(ctx context.Context, organization string, limit int) ([]ledger.Run, error) {
	if s.ledger == nil {
		return nil, services.Wrap(services.ErrConfiguration, organization, "history", "ledger unavailable", nil)
	}
	runs, err := s.ledger.Runs(ctx, organization, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, organization, "history", "list runs", err)
	}
	return runs, nil
}

// Organizations returns the ledger view of every known organization.
func (s *Service) Organizations(ctx context.Context) ([]ledger.Organization, error) {
	if s.ledger == nil {
		return nil, nil
	}
	orgs, err := s.ledger.Organizations(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "organizations", "list organizations", err)
	}
	return orgs, nil
}

func (s *Service) processed(organization string) bool {
	_, err := os.Stat(sheets.OutputPath(s.cfg.Paths.OutputDir, organization))
	return err == nil
}

func (s *Service) starred(ctx context.Context) ([]string, map[string]struct{}, error) {
	set := make(map[string]struct{})
	if s.ledger == nil {
		return nil, set, nil
	}
	names, err := s.ledger.Starred(ctx)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrPersistence, "", "progress", "list starred", err)
	}
	for _, name := range names {
		set[strings.ToLower(name)] = struct{}{}
	}
	return names, set, nil
}
