package extract

import (
	"encoding/json"
	"errors"
	"strings"

	"contactsync/internal/contacts"
	"contactsync/internal/services/llm"
)

var errUndecodable = errors.New("payload is not a contact list")

// wrapperKeys are the object keys models use when asked for a list but forced
// into a JSON object.
var wrapperKeys = []string{"contacts", "team", "members", "people", "results"}

// DecodeCandidates parses a model response into candidates. It falls back to
// line-pair parsing when the payload is not a JSON contact list.
func DecodeCandidates(payload string) []contacts.Candidate {
	candidates, err := decodeJSONCandidates(payload)
	if err == nil {
		return candidates
	}
	return FallbackParse(llm.SanitizeJSONPayload(payload))
}

func decodeJSONCandidates(payload string) ([]contacts.Candidate, error) {
	var raw any
	if err := llm.DecodeLLMJSON(payload, &raw); err != nil {
		return nil, err
	}
	// Some models return the list as a JSON string.
	if s, ok := raw.(string); ok {
		if err := llm.DecodeLLMJSON(s, &raw); err != nil {
			return nil, err
		}
	}
	if obj, ok := raw.(map[string]any); ok {
		raw = unwrapList(obj)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errUndecodable
	}

	candidates := make([]contacts.Candidate, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rawName, present := entry["name"]
		if !present {
			continue
		}
		// Non-string names stay empty so reconciliation flags them as malformed.
		name, _ := rawName.(string)
		title, _ := entry["title"].(string)
		candidates = append(candidates, contacts.Candidate{
			Name:  strings.TrimSpace(name),
			Title: CleanTitle(title),
		})
	}
	return candidates, nil
}

func unwrapList(obj map[string]any) any {
	for _, key := range wrapperKeys {
		if list, ok := obj[key].([]any); ok {
			return list
		}
	}
	// A single-key object wrapping any list.
	if len(obj) == 1 {
		for _, v := range obj {
			if list, ok := v.([]any); ok {
				return list
			}
		}
	}
	return obj
}

// FallbackParse reads non-empty lines in pairs as name then title. A trailing
// unpaired line is ignored.
func FallbackParse(text string) []contacts.Candidate {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	candidates := make([]contacts.Candidate, 0, len(lines)/2)
	for i := 0; i+1 < len(lines); i += 2 {
		candidates = append(candidates, contacts.Candidate{
			Name:  lines[i],
			Title: CleanTitle(lines[i+1]),
		})
	}
	return candidates
}
