package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"contactsync/internal/pipeline"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "clean [organization...]",
		Short: "Deduplicate annotated workbooks into cleaned workbooks",
		Long: `Remove duplicate contacts from annotated workbooks and write the cleaned
workbook with its Not Listed section. Near-duplicates are flagged to the
review log. With no arguments every annotated workbook in the output
directory is cleaned. A failure for one organization does not stop the rest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			reports, err := svc.Clean(cmd.Context(), args)
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := printJSON(cmd, reports); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			if len(reports) == 0 {
				if !jsonOutput {
					fmt.Fprintln(out, "No annotated workbooks to clean")
				}
				return nil
			}

			colorize := shouldColorize(errOut)
			rows := make([][]string, 0, len(reports))
			failed := 0
			for _, report := range reports {
				result := cleanOutcome(report)
				if result == outcomeFailed {
					failed++
					fmt.Fprintln(errOut, outcomeLine(report.Organization, result, report.Error, colorize))
					rows = append(rows, []string{report.Organization, "-", "-", "-", "-", "failed"})
					continue
				}
				label := "ok"
				if result == outcomeReview {
					label = "review"
				}
				rows = append(rows, []string{
					report.Organization,
					formatCount(report.Kept),
					formatCount(report.Dropped),
					formatCount(report.NotListed),
					formatCount(len(report.Flagged)),
					label,
				})
			}
			if !jsonOutput {
				fmt.Fprintln(out, renderTable([]column{
					textCol("Organization"), countCol("Kept"), countCol("Dropped"),
					countCol("Not Listed"), countCol("Flagged"), textCol("Result"),
				}, rows))
			}
			if failed > 0 {
				return &batchError{failed: failed, total: len(reports)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// cleanOutcome is failed for an errored organization and review when the
// cleaned workbook left near-duplicates for a human to resolve.
func cleanOutcome(report pipeline.CleanReport) outcome {
	switch {
	case report.Err != nil:
		return outcomeFailed
	case len(report.Flagged) > 0:
		return outcomeReview
	default:
		return outcomeOK
	}
}
