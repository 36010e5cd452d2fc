package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// column describes one table column. Numeric columns are right-aligned.
type column struct {
	title   string
	numeric bool
}

func textCol(title string) column { return column{title: title} }

func countCol(title string) column { return column{title: title, numeric: true} }

// renderTable lays rows out under columns. Missing trailing cells render
// empty and extra cells are ignored.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, Align: text.AlignLeft}
		if col.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(columns))
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		tw.AppendRow(cells)
	}
	return tw.Render()
}

// outcome classifies one checked item or processed organization.
type outcome int

const (
	outcomeOK outcome = iota
	// outcomeMissing marks an input file or setting that is absent.
	outcomeMissing
	// outcomeReview marks an organization whose result needs a human look:
	// flagged pairs after clean, malformed candidates after update.
	outcomeReview
	outcomeFailed
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func (o outcome) tag() string {
	switch o {
	case outcomeMissing:
		return "[MISSING]"
	case outcomeReview:
		return "[REVIEW]"
	case outcomeFailed:
		return "[FAILED]"
	default:
		return "[OK]"
	}
}

func (o outcome) color() string {
	switch o {
	case outcomeMissing, outcomeReview:
		return ansiYellow
	case outcomeFailed:
		return ansiRed
	default:
		return ansiGreen
	}
}

// outcomeLine renders "  [TAG]     subject  detail". Only the tag is colored.
func outcomeLine(subject string, o outcome, detail string, colorize bool) string {
	tag := fmt.Sprintf("%-9s", o.tag())
	if colorize {
		tag = o.color() + tag + ansiReset
	}
	line := fmt.Sprintf("  %s %-24s %s", tag, subject, detail)
	return strings.TrimRight(line, " ")
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
