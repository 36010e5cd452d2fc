package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		return errors.New("gemini.timeout_seconds must be positive")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	switch c.Paths.ContactsEncoding {
	case EncodingUTF8, EncodingLatin1, EncodingWindows1252:
	default:
		return fmt.Errorf("paths.contacts_encoding %q is not supported (use %s, %s, or %s)",
			c.Paths.ContactsEncoding, EncodingUTF8, EncodingLatin1, EncodingWindows1252)
	}
	if c.Paths.OutputDir == c.Paths.CleanedDir {
		return errors.New("paths.cleaned_dir must differ from paths.output_dir")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	switch c.Extraction.Provider {
	case ProviderOpenRouter, ProviderGemini:
		return nil
	default:
		return fmt.Errorf("extraction.provider %q is not supported (use %q or %q)",
			c.Extraction.Provider, ProviderOpenRouter, ProviderGemini)
	}
}

func (c *Config) validateMatching() error {
	if err := ensurePercentMap(map[string]int{
		"matching.match_threshold":     c.Matching.MatchThreshold,
		"matching.duplicate_threshold": c.Matching.DuplicateThreshold,
		"matching.review_threshold":    c.Matching.ReviewThreshold,
	}); err != nil {
		return err
	}
	if c.Matching.ReviewThreshold >= c.Matching.DuplicateThreshold {
		return errors.New("matching.review_threshold must be below matching.duplicate_threshold")
	}
	return nil
}

func ensurePercentMap(values map[string]int) error {
	for key, value := range values {
		if value < 1 || value > 100 {
			return fmt.Errorf("%s must be between 1 and 100", key)
		}
	}
	return nil
}
