package reviewqueue

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Entry is one flagged pair.
type Entry struct {
	Organization string `json:"organization"`
	NameA        string `json:"name_a"`
	NameB        string `json:"name_b"`
	Score        int    `json:"score"`
}

// ErrMalformedLine reports a review log line that does not follow the format.
var ErrMalformedLine = errors.New("malformed review log line")

const (
	scorePrefix = " (Score: "
	pairSep     = " ~ "
	orgSep      = ": "
)

// String renders the entry as a review log line (without newline).
func (e Entry) String() string {
	return fmt.Sprintf("%s%s%s%s%s%s%d)", e.Organization, orgSep, e.NameA, pairSep, e.NameB, scorePrefix, e.Score)
}

// ParseEntry parses one review log line. Organization names may contain ": ";
// the pair and score are located from the right.
func ParseEntry(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, ")") {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	scoreAt := strings.LastIndex(trimmed, scorePrefix)
	if scoreAt < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	rawScore := strings.TrimSpace(trimmed[scoreAt+len(scorePrefix) : len(trimmed)-1])
	score, err := strconv.ParseFloat(rawScore, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: score %q: %v", ErrMalformedLine, rawScore, err)
	}

	head := trimmed[:scoreAt]
	pairAt := strings.LastIndex(head, pairSep)
	if pairAt < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	left, nameB := head[:pairAt], head[pairAt+len(pairSep):]
	orgAt := strings.LastIndex(left, orgSep)
	if orgAt <= 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	return Entry{
		Organization: left[:orgAt],
		NameA:        left[orgAt+len(orgSep):],
		NameB:        nameB,
		Score:        int(math.RoundToEven(score)),
	}, nil
}

// belongsTo reports whether line was written for organization. Lines that do
// not parse fall back to a prefix test so adjudication still clears them.
func belongsTo(line, organization string) bool {
	if entry, err := ParseEntry(line); err == nil {
		return entry.Organization == organization
	}
	return strings.HasPrefix(line, organization+orgSep)
}
