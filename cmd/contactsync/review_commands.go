package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"contactsync/internal/reviewqueue"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect and resolve flagged near-duplicates",
	}

	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewApproveCommand(ctx))

	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	var organization string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flagged pairs awaiting review",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := reviewqueue.Open(cfg.Paths.ReviewLog)

			var entries []reviewqueue.Entry
			if strings.TrimSpace(organization) != "" {
				entries, err = log.ForOrganization(organization)
			} else {
				entries, err = log.Entries()
			}
			if err != nil {
				return fmt.Errorf("read review log: %w", err)
			}

			if jsonOutput {
				if entries == nil {
					entries = []reviewqueue.Entry{}
				}
				return printJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No flagged pairs")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.Organization, entry.NameA, entry.NameB, formatCount(entry.Score)})
			}
			fmt.Fprintln(out, renderTable([]column{
				textCol("Organization"), textCol("Name"), textCol("Possible Duplicate"), countCol("Score"),
			}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&organization, "org", "", "Only show pairs for this organization")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newReviewApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <organization>",
		Short: "Accept the reviewed workbook and clear its flagged pairs",
		Long: `Copy the organization's reviewed annotated workbook into the cleaned
directory and remove its entries from the review log.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			report, err := svc.Approve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, outcomeLine("Approved "+report.Organization, outcomeOK,
				fmt.Sprintf("wrote %s, cleared %d flagged pair(s)", report.CleanedPath, report.ReviewsCleared),
				shouldColorize(out)))
			return nil
		},
	}
}
