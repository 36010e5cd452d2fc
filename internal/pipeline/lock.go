package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"contactsync/internal/services"
	"contactsync/internal/sheets"
)

const lockDirName = ".locks"

type orgLock struct {
	path string
	lock *flock.Flock
}

func (s *Service) lockPath(organization string) string {
	return filepath.Join(s.cfg.Paths.OutputDir, lockDirName, sheets.OrganizationKey(organization)+".lock")
}

// acquireLock takes the organization's lock without waiting. A lock held by
// another process yields services.ErrLocked.
func (s *Service) acquireLock(organization, operation string) (*orgLock, error) {
	path := s.lockPath(organization)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrPersistence, organization, operation, "create lock directory", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, organization, operation, "acquire lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, organization, operation,
			fmt.Sprintf("another contactsync process holds %s", path), nil)
	}
	return &orgLock{path: path, lock: lock}, nil
}

func (l *orgLock) release() {
	if l == nil || l.lock == nil {
		return
	}
	_ = l.lock.Unlock()
}
