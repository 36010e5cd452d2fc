package reviewqueue

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"contactsync/internal/fileutil"
)

// Log is the durable review queue stored at a single path.
type Log struct {
	path string
}

// Open returns a Log backed by path. The file is created lazily on first append.
func Open(path string) *Log {
	return &Log{path: path}
}

// Path returns the log location.
func (l *Log) Path() string {
	return l.path
}

// Append writes entries to the end of the log in one write.
func (l *Log) Append(entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, entry := range entries {
		buf.WriteString(entry.String())
		buf.WriteByte('\n')
	}
	return l.withLock(func() error {
		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open review log: %w", err)
		}
		if _, err := file.Write(buf.Bytes()); err != nil {
			_ = file.Close()
			return fmt.Errorf("append review log: %w", err)
		}
		return file.Close()
	})
}

// Entries returns every parseable entry in file order. Lines that do not
// parse are skipped.
func (l *Log) Entries() ([]Entry, error) {
	lines, err := l.readLines()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entry, err := ParseEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ForOrganization returns the entries recorded for organization.
func (l *Log) ForOrganization(organization string) ([]Entry, error) {
	all, err := l.Entries()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(all))
	for _, entry := range all {
		if entry.Organization == organization {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Organizations returns the sorted set of organizations with pending entries.
func (l *Log) Organizations() ([]string, error) {
	all, err := l.Entries()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0)
	for _, entry := range all {
		if _, ok := seen[entry.Organization]; ok {
			continue
		}
		seen[entry.Organization] = struct{}{}
		out = append(out, entry.Organization)
	}
	sort.Strings(out)
	return out, nil
}

// Remove deletes every line belonging to organization and returns how many
// were removed. The file is rewritten atomically.
func (l *Log) Remove(organization string) (int, error) {
	removed := 0
	err := l.withLock(func() error {
		lines, err := l.readLines()
		if err != nil {
			return err
		}
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if belongsTo(line, organization) {
				removed++
				continue
			}
			kept = append(kept, line)
		}
		if removed == 0 {
			return nil
		}
		return fileutil.WriteFileAtomic(l.path, 0o644, func(w io.Writer) error {
			for _, line := range kept {
				if _, err := io.WriteString(w, line+"\n"); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (l *Log) readLines() ([]string, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open review log: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read review log: %w", err)
	}
	return lines, nil
}

func (l *Log) withLock(fn func() error) error {
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create review log directory: %w", err)
		}
	}
	lock := flock.New(l.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock review log: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fn()
}
