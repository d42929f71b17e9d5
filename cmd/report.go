package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report <year> <month>",
	Short: "Show monthly totals per repo and branch",
	Long: `Sum the credited seconds per repo and branch for entries starting in the
given month (UTC). The default csv output prints one "repo","branch",seconds
line per group.`,
	Args: cobra.ExactArgs(2),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "Output format: csv, md, json (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	year, month, err := parseYearMonth(args)
	if err != nil {
		return err
	}

	format := reportFormat
	if format == "" {
		format = cfg.Report.Format
	}

	ts, closeDB, err := openTimesheet()
	if err != nil {
		return err
	}
	defer closeDB()

	totals, err := ts.Report(cmd.Context(), year, month)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "csv":
		printTotalsCSV(out, totals)
	case "md":
		printTotalsTable(out, year, month, totals)
	case "json":
		return printTotalsJSON(out, year, month, totals)
	default:
		return fmt.Errorf("unknown report format %q (want csv, md or json)", format)
	}
	return nil
}

// parseYearMonth reads <year> <month> arguments.
func parseYearMonth(args []string) (int, int, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q: %w", args[0], err)
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: %w", args[1], err)
	}
	if _, _, err := timecalc.MonthRange(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func printTotalsCSV(w io.Writer, totals []model.Total) {
	for _, t := range totals {
		fmt.Fprintf(w, "%q,%q,%d\n", t.Repo, t.Branch, t.Seconds)
	}
}

func printTotalsTable(w io.Writer, year, month int, totals []model.Total) {
	var grandTotal int64
	for _, t := range totals {
		grandTotal += t.Seconds
	}

	fmt.Fprintln(w, newStyles(w).heading.Render(fmt.Sprintf("Report %04d-%02d", year, month)))
	fmt.Fprintln(w, rule)
	for _, t := range totals {
		fmt.Fprintf(w, "%-20s%-20s%s\n", displayName(t.Repo), displayName(t.Branch), timecalc.FormatDuration(t.Seconds))
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-40s%s\n", "Total", timecalc.FormatDuration(grandTotal))
}

type jsonReport struct {
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	Totals       []model.Total `json:"totals"`
	TotalSeconds int64         `json:"total_seconds"`
}

func printTotalsJSON(w io.Writer, year, month int, totals []model.Total) error {
	r := jsonReport{Year: year, Month: month, Totals: totals}
	if r.Totals == nil {
		r.Totals = []model.Total{}
	}
	for _, t := range totals {
		r.TotalSeconds += t.Seconds
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// displayName shows unassigned repos and branches as "-".
func displayName(s string) string {
	if s == model.Unassigned {
		return "-"
	}
	return s
}
