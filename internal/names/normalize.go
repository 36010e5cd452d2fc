package names

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalizer turns raw display names into NormalizedKeys. It is safe for
// concurrent use; the nickname table is copied at construction and never
// mutated.
type Normalizer struct {
	nicknames NicknameTable
}

// NewNormalizer builds a Normalizer over table. A nil table yields a
// Normalizer that only folds case and whitespace.
func NewNormalizer(table NicknameTable) *Normalizer {
	return &Normalizer{nicknames: table.Merge(nil)}
}

// Normalize returns the NormalizedKey for raw.
func (n *Normalizer) Normalize(raw string) string {
	tokens := strings.Fields(cases.Fold().String(raw))
	if len(tokens) == 0 {
		return ""
	}
	for i, token := range tokens {
		if canonical, ok := n.nicknames[token]; ok {
			tokens[i] = canonical
		}
	}
	return strings.Join(tokens, " ")
}

// NormalizeValue normalizes loosely typed input such as decoded JSON. Anything
// that is not a string yields an empty key.
func (n *Normalizer) NormalizeValue(v any) string {
	switch value := v.(type) {
	case string:
		return n.Normalize(value)
	case *string:
		if value == nil {
			return ""
		}
		return n.Normalize(*value)
	default:
		return ""
	}
}

// SplitName splits a display name into first and last parts. The first token
// becomes the first name and the rest the last name. ok is false when fewer
// than two tokens are present.
func SplitName(raw string) (first, last string, ok bool) {
	tokens := strings.Fields(raw)
	if len(tokens) < 2 {
		return "", "", false
	}
	return tokens[0], strings.Join(tokens[1:], " "), true
}
