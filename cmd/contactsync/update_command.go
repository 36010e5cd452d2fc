package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"contactsync/internal/contacts"
	"contactsync/internal/pipeline"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var textFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "update <organization>",
		Short: "Reconcile an organization's contacts against its team page text",
		Long: `Extract people from team page text and reconcile them against the
organization's registry contacts. The text is read from --text-file, or from
stdin when the flag is omitted. The annotated workbook is written to the
output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPageText(cmd, textFile)
			if err != nil {
				return err
			}
			svc, err := ctx.service(true)
			if err != nil {
				return err
			}
			report, err := svc.Update(cmd.Context(), args[0], text)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, report)
			}
			printUpdateReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&textFile, "text-file", "f", "", "File containing the team page text (default: stdin)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func readPageText(cmd *cobra.Command, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}

func printUpdateReport(out io.Writer, report *pipeline.UpdateReport) {
	result := outcomeOK
	if report.Malformed > 0 {
		result = outcomeReview
	}
	fmt.Fprintln(out, outcomeLine(report.Organization, result,
		fmt.Sprintf("%d candidates, %d matched, %d new, %d missing, %d titles updated",
			report.Candidates, report.Matched, report.New, report.Missing, report.Updated),
		shouldColorize(out)))
	if report.Malformed > 0 {
		fmt.Fprintf(out, "%d malformed candidate(s) recorded with TBU placeholders\n", report.Malformed)
	}
	if len(report.Records) > 0 {
		fmt.Fprintln(out, renderTable([]column{
			textCol("First"), textCol("Last"), textCol("Title"), textCol("Status"), textCol("Notes"),
		}, recordRows(report.Records)))
	}
	fmt.Fprintf(out, "Wrote %s\n", report.OutputPath)
}

func recordRows(records []contacts.AnnotatedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{rec.FirstName, rec.LastName, rec.Title, recordStatus(rec), rec.Notes})
	}
	return rows
}

func recordStatus(rec contacts.AnnotatedRecord) string {
	switch {
	case rec.IsNew:
		return "new"
	case rec.IsRemoved:
		return "removed"
	default:
		return "current"
	}
}

func formatCount(n int) string {
	return strconv.Itoa(n)
}
