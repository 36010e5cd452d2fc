package extract

import "strings"

const maxTitleWords = 6

var bioTerms = []string{
	"background",
	"experience",
	"expert",
	"entrepreneur",
	"operator",
	"decades",
	"building",
	"growth",
	"investor",
	"consulting",
	"track record",
	"c-suite",
	"subject-matter",
}

// ValidTitle reports whether text looks like a job title rather than a bio.
func ValidTitle(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if len(strings.Fields(text)) > maxTitleWords {
		return false
	}
	lower := strings.ToLower(text)
	for _, term := range bioTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

// CleanTitle returns the trimmed title, or "" when it is not a valid title.
func CleanTitle(text string) string {
	if !ValidTitle(text) {
		return ""
	}
	return strings.TrimSpace(text)
}
