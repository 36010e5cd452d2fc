package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeLLM()
	c.normalizeGemini()
	c.normalizeMatching()
	c.normalizeNicknames()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		c.Paths.WorkspaceDir = defaultWorkspaceDir
	}
	if c.Paths.WorkspaceDir, err = expandPath(strings.TrimSpace(c.Paths.WorkspaceDir)); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	base := c.Paths.WorkspaceDir

	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.contacts_csv", &c.Paths.ContactsCSV, defaultContactsCSV},
		{"paths.organizations_csv", &c.Paths.OrganizationsCSV, defaultOrganizationsCSV},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.cleaned_dir", &c.Paths.CleanedDir, defaultCleanedDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.review_log", &c.Paths.ReviewLog, defaultReviewLog},
		{"paths.ledger_path", &c.Paths.LedgerPath, defaultLedgerPath},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		if *field.value, err = resolveUnder(base, *field.value); err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Paths.ContactsEncoding)) {
	case "", "utf8", "utf-8":
		c.Paths.ContactsEncoding = EncodingUTF8
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		c.Paths.ContactsEncoding = EncodingLatin1
	case "cp1252", "windows-1252":
		c.Paths.ContactsEncoding = EncodingWindows1252
	default:
		c.Paths.ContactsEncoding = strings.ToLower(strings.TrimSpace(c.Paths.ContactsEncoding))
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.Provider = strings.ToLower(strings.TrimSpace(c.Extraction.Provider))
	if c.Extraction.Provider == "" {
		c.Extraction.Provider = defaultProvider
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeGemini() {
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeout
	}
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.MatchThreshold == 0 {
		c.Matching.MatchThreshold = defaultMatchThreshold
	}
	if c.Matching.DuplicateThreshold == 0 {
		c.Matching.DuplicateThreshold = defaultDuplicateThreshold
	}
	if c.Matching.ReviewThreshold == 0 {
		c.Matching.ReviewThreshold = defaultReviewThreshold
	}
}

func (c *Config) normalizeNicknames() {
	if len(c.Nicknames) == 0 {
		c.Nicknames = nil
		return
	}
	cleaned := make(map[string]string, len(c.Nicknames))
	for nickname, canonical := range c.Nicknames {
		nickname = strings.ToLower(strings.TrimSpace(nickname))
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if nickname == "" || canonical == "" {
			continue
		}
		cleaned[nickname] = canonical
	}
	c.Nicknames = cleaned
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
