// Package extract turns free-form team-page text into contact candidates.
//
// An Extractor asks a JSON-speaking model (OpenRouter via the llm package, or
// Gemini via the gemini package) for a list of {name, title} pairs. Responses
// are decoded leniently: code fences, stringified lists, and objects wrapping
// the list are all accepted. When nothing decodes, the payload is parsed as
// alternating name/title lines. Titles that read like biographies are blanked.
package extract
