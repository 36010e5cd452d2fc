package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contactsync/internal/config"
	"contactsync/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	llm        *httptest.Server
}

// setupCLITestEnv writes fixtures and a config pointing at a stub
// OpenRouter endpoint that answers every completion with content.
func setupCLITestEnv(t *testing.T, content string) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		}}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithContacts(
			[]string{"Robert", "Smith", "Partner", "Acme Capital"},
			[]string{"Jane", "Doe", "CFO", "Acme Capital"},
			[]string{"Ann", "Other", "CEO", "Beta Partners"},
		),
		testsupport.WithOrganizations("Acme Capital", "Beta Partners"),
	)
	cfg.LLM.BaseURL = server.URL

	configPath := filepath.Join(cfg.Paths.WorkspaceDir, "contactsync.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    cfg.Paths.WorkspaceDir,
		llm:        server,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, nil)
}

func runCLIWithInput(t *testing.T, args []string, configPath string, stdin io.Reader) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
workspace_dir = %q
contacts_csv = %q
organizations_csv = %q
output_dir = %q
cleaned_dir = %q
log_dir = %q
review_log = %q
ledger_path = %q

[extraction]
provider = "openrouter"

[llm]
api_key = %q
base_url = %q
model = "test-model"

[logging]
level = "error"
`,
		cfg.Paths.WorkspaceDir,
		cfg.Paths.ContactsCSV,
		cfg.Paths.OrganizationsCSV,
		cfg.Paths.OutputDir,
		cfg.Paths.CleanedDir,
		cfg.Paths.LogDir,
		cfg.Paths.ReviewLog,
		cfg.Paths.LedgerPath,
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
	)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
