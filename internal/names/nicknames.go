package names

import "strings"

// NicknameTable maps a lower-case name token to its canonical form.
type NicknameTable map[string]string

var defaultNicknames = NicknameTable{
	"joe":       "joseph",
	"joseph":    "joseph",
	"bill":      "william",
	"will":      "william",
	"william":   "william",
	"liz":       "elizabeth",
	"elizabeth": "elizabeth",
	"bob":       "robert",
	"rob":       "robert",
	"robert":    "robert",
	"alex":      "alexander",
	"alexander": "alexander",
	"kate":      "katherine",
	"katie":     "katherine",
	"katherine": "katherine",
	"jim":       "james",
	"tom":       "thomas",
	"dave":      "david",
	"dan":       "daniel",
	"mike":      "michael",
	"steve":     "steven",
}

// DefaultNicknames returns a copy of the built-in nickname table.
func DefaultNicknames() NicknameTable {
	return defaultNicknames.Merge(nil)
}

// Merge returns a new table holding t overlaid with extra. Keys and values are
// trimmed and lower-cased; blank entries are skipped.
func (t NicknameTable) Merge(extra map[string]string) NicknameTable {
	out := make(NicknameTable, len(t)+len(extra))
	for _, src := range []map[string]string{t, extra} {
		for token, canonical := range src {
			token = strings.ToLower(strings.TrimSpace(token))
			canonical = strings.ToLower(strings.TrimSpace(canonical))
			if token == "" || canonical == "" {
				continue
			}
			out[token] = canonical
		}
	}
	return out
}
