package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/model"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <year> <month>",
	Short: "Export the raw entries of a month to stdout",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json")
}

func runExport(cmd *cobra.Command, args []string) error {
	year, month, err := parseYearMonth(args)
	if err != nil {
		return err
	}

	ts, closeDB, err := openTimesheet()
	if err != nil {
		return err
	}
	defer closeDB()

	entries, err := ts.MonthEntries(cmd.Context(), year, month)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch exportFormat {
	case "json":
		if entries == nil {
			entries = []model.Entry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "csv":
		printCSV(out, entries)
	default:
		return fmt.Errorf("unknown export format %q (want csv or json)", exportFormat)
	}
	return nil
}

func printCSV(w io.Writer, entries []model.Entry) {
	fmt.Fprintln(w, "id,repo,branch,start,duration_seconds")
	for _, e := range entries {
		repo, branch := "", ""
		if e.Repo != nil {
			repo = *e.Repo
		}
		if e.Branch != nil {
			branch = *e.Branch
		}
		fmt.Fprintf(w, "%d,%s,%s,%s,%d\n",
			e.ID,
			csvEscape(repo),
			csvEscape(branch),
			time.Unix(e.Start, 0).UTC().Format(time.RFC3339),
			e.Duration,
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
