package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"contactsync/internal/config"
	"contactsync/internal/extract"
	"contactsync/internal/notifications"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigLLMCheckCommand(ctx))
	configCmd.AddCommand(newConfigNotifyTestCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.contacts_csv and llm.api_key (or export OPENROUTER_API_KEY) before running update.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			path := ctx.configPath
			if path == "" {
				path = "(defaults)"
			}
			fmt.Fprintf(out, "Config path: %s\n", path)
			fmt.Fprintln(out, outcomeLine("Contacts CSV", fileOutcome(cfg.Paths.ContactsCSV), cfg.Paths.ContactsCSV, colorize))
			fmt.Fprintln(out, outcomeLine("Organizations CSV", fileOutcome(cfg.Paths.OrganizationsCSV), cfg.Paths.OrganizationsCSV, colorize))
			fmt.Fprintln(out, outcomeLine("Output directory", outcomeOK, cfg.Paths.OutputDir, colorize))
			fmt.Fprintln(out, outcomeLine("Cleaned directory", outcomeOK, cfg.Paths.CleanedDir, colorize))
			if err := cfg.ExtractionReady(); err != nil {
				fmt.Fprintln(out, outcomeLine("Extraction", outcomeMissing, err.Error(), colorize))
			} else {
				fmt.Fprintln(out, outcomeLine("Extraction", outcomeOK, cfg.Extraction.Provider, colorize))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigLLMCheckCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "llm-check",
		Short: "Send a test request to the configured extraction provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			extractor, err := extract.NewFromConfig(cfg, ctx.ensureLogger())
			if err != nil {
				return err
			}
			checkCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if err := extractor.HealthCheck(checkCtx); err != nil {
				fmt.Fprintln(out, outcomeLine(extractor.Provider(), outcomeFailed, err.Error(), colorize))
				return fmt.Errorf("llm check failed: %w", err)
			}
			fmt.Fprintln(out, outcomeLine(extractor.Provider(), outcomeOK, "responded with valid JSON", colorize))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "Maximum time to wait for the provider")
	return cmd
}

func newConfigNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test notification to the configured ntfy topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(out, outcomeLine("Notifications", outcomeMissing, "notifications.ntfy_topic not set", colorize))
				return nil
			}
			svc := notifications.NewService(cfg)
			if err := svc.Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				fmt.Fprintln(out, outcomeLine("Notifications", outcomeFailed, err.Error(), colorize))
				return fmt.Errorf("notification test failed: %w", err)
			}
			fmt.Fprintln(out, outcomeLine("Notifications", outcomeOK, "test notification sent", colorize))
			return nil
		},
	}
}

func fileOutcome(path string) outcome {
	if strings.TrimSpace(path) == "" {
		return outcomeMissing
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return outcomeMissing
	}
	return outcomeOK
}
