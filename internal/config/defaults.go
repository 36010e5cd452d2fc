package config

const (
	defaultConfigPath         = "~/.config/contactsync/config.toml"
	defaultWorkspaceDir       = "~/.local/share/contactsync"
	defaultContactsCSV        = "data/contacts.csv"
	defaultOrganizationsCSV   = "data/organizations.csv"
	defaultContactsEncoding   = EncodingUTF8
	defaultOutputDir          = "output"
	defaultCleanedDir         = "output/cleaned"
	defaultLogDir             = "logs"
	defaultReviewLog          = "logs/review_log.txt"
	defaultLedgerPath         = "contactsync.db"
	defaultProvider           = ProviderOpenRouter
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMTitle           = "contactsync"
	defaultLLMTimeoutSeconds  = 60
	defaultGeminiModel        = "gemini-2.5-flash"
	defaultGeminiTimeout      = 60
	defaultMatchThreshold     = 90
	defaultDuplicateThreshold = 95
	defaultReviewThreshold    = 90
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Extraction providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Registry CSV encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin-1"
	EncodingWindows1252 = "windows-1252"
)

// Default returns a Config populated with repository defaults. Paths are not
// yet expanded; Load takes care of that.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir:     defaultWorkspaceDir,
			ContactsCSV:      defaultContactsCSV,
			OrganizationsCSV: defaultOrganizationsCSV,
			ContactsEncoding: defaultContactsEncoding,
			OutputDir:        defaultOutputDir,
			CleanedDir:       defaultCleanedDir,
			LogDir:           defaultLogDir,
			ReviewLog:        defaultReviewLog,
			LedgerPath:       defaultLedgerPath,
		},
		Extraction: Extraction{
			Provider: defaultProvider,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Gemini: Gemini{
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeout,
		},
		Matching: Matching{
			MatchThreshold:     defaultMatchThreshold,
			DuplicateThreshold: defaultDuplicateThreshold,
			ReviewThreshold:    defaultReviewThreshold,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Update:         true,
			Clean:          true,
			Review:         true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
