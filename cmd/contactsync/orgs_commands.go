package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"contactsync/internal/ledger"
)

func newOrgsCommand(ctx *commandContext) *cobra.Command {
	orgsCmd := &cobra.Command{
		Use:   "orgs",
		Short: "Track progress through the organization list",
	}

	orgsCmd.AddCommand(newOrgsListCommand(ctx))
	orgsCmd.AddCommand(newOrgsNextCommand(ctx))
	orgsCmd.AddCommand(newOrgsStarCommand(ctx, true))
	orgsCmd.AddCommand(newOrgsStarCommand(ctx, false))
	orgsCmd.AddCommand(newOrgsHistoryCommand(ctx))

	return orgsCmd
}

func newOrgsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show processed, remaining, and starred organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			progress, err := svc.Progress(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, progress)
			}
			known, err := svc.Organizations(cmd.Context())
			if err != nil {
				return err
			}
			lastRun := make(map[string]ledger.Organization, len(known))
			for _, org := range known {
				lastRun[strings.ToLower(org.Name)] = org
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Progress", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%d of %d processed, %d remaining, %d starred\n\n",
				len(progress.Processed), progress.Total, len(progress.Remaining), len(progress.Starred))

			rows := make([][]string, 0, progress.Total)
			listed := make(map[string]struct{}, progress.Total)
			appendRows := func(names []string, state string) {
				for _, name := range names {
					key := strings.ToLower(name)
					if _, ok := listed[key]; ok {
						continue
					}
					listed[key] = struct{}{}
					status, when := "-", "-"
					if org, ok := lastRun[key]; ok && org.LastStatus != "" {
						status = fmt.Sprintf("%s %s", org.LastKind, org.LastStatus)
						if !org.LastRunAt.IsZero() {
							when = org.LastRunAt.Local().Format("2006-01-02 15:04")
						}
					}
					rows = append(rows, []string{name, state, status, when})
				}
			}
			appendRows(progress.Processed, "processed")
			appendRows(progress.Starred, "starred")
			appendRows(progress.Remaining, "remaining")
			if len(rows) == 0 {
				fmt.Fprintln(out, "No organizations found")
				return nil
			}
			fmt.Fprintln(out, renderTable([]column{textCol("Organization"), textCol("State"), textCol("Last Run"), textCol("When")}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newOrgsNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next organization to process",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			next, err := svc.Next(cmd.Context())
			if err != nil {
				return err
			}
			if next == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "All organizations processed or starred")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}
}

func newOrgsStarCommand(ctx *commandContext, starred bool) *cobra.Command {
	use, short, verb := "star <organization>", "Mark an organization for a later pass", "Starred"
	if !starred {
		use, short, verb = "unstar <organization>", "Clear an organization's star", "Unstarred"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			if err := svc.Star(cmd.Context(), args[0], starred); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, strings.TrimSpace(args[0]))
			return nil
		},
	}
}

func newOrgsHistoryCommand(ctx *commandContext) *cobra.Command {
	var organization string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			runs, err := svc.History(cmd.Context(), organization, limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, historyJSON(runs))
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Organization,
					string(run.Kind),
					string(run.Status),
					formatDuration(run.Duration()),
					formatCount(run.Stats.New),
					formatCount(run.Stats.Missing),
					formatCount(run.Stats.Flagged),
					run.ErrorMessage,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				textCol("Started"), textCol("Organization"), textCol("Kind"), textCol("Status"),
				countCol("Took"), countCol("New"), countCol("Missing"), countCol("Flagged"), textCol("Error"),
			}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&organization, "org", "", "Only show runs for this organization")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type runJSON struct {
	ID           string    `json:"id"`
	Organization string    `json:"organization"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
	Error        string    `json:"error,omitempty"`
	Candidates   int       `json:"candidates"`
	New          int       `json:"new"`
	Updated      int       `json:"updated"`
	Missing      int       `json:"missing"`
	Dropped      int       `json:"dropped"`
	Flagged      int       `json:"flagged"`
}

func historyJSON(runs []ledger.Run) []runJSON {
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, runJSON{
			ID:           run.ID,
			Organization: run.Organization,
			Kind:         string(run.Kind),
			Status:       string(run.Status),
			StartedAt:    run.StartedAt,
			FinishedAt:   run.FinishedAt,
			Error:        run.ErrorMessage,
			Candidates:   run.Stats.Candidates,
			New:          run.Stats.New,
			Updated:      run.Stats.Updated,
			Missing:      run.Stats.Missing,
			Dropped:      run.Stats.Dropped,
			Flagged:      run.Stats.Flagged,
		})
	}
	return out
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
