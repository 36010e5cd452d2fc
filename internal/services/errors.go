package services

import (
	"errors"
	"fmt"
	"strings"

	"contactsync/internal/ledger"
)

var (
	ErrExtraction    = errors.New("extraction failure")
	ErrPersistence   = errors.New("persistence failure")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrLocked        = errors.New("organization locked")
)

// Wrap builds an error message that names the organization and the failing
// operation while tagging it with marker for later classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, organization, operation, message string, err error) error {
	detail := buildDetail(organization, operation, message)
	if marker == nil {
		marker = ErrPersistence
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a failed run to the status the ledger should record.
// Failures that need a human (bad input, missing files, a held lock) are
// blocked; everything else is failed and can simply be retried.
func FailureStatus(err error) ledger.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrNotFound), errors.Is(err, ErrLocked):
		return ledger.StatusBlocked
	default:
		return ledger.StatusFailed
	}
}

func buildDetail(organization, operation, message string) string {
	parts := make([]string, 0, 3)
	if organization = strings.TrimSpace(organization); organization != "" {
		parts = append(parts, organization)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
