package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var listWeek bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded entries",
	Long:  `List today's raw entries, or this week's with --week, grouped by day.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's entries")
}

func runList(cmd *cobra.Command, args []string) error {
	t := now()

	var from, to time.Time
	out := cmd.OutOrStdout()
	if listWeek {
		from, to = timecalc.WeekRange(t)
		fmt.Fprintln(out, newStyles(out).heading.Render("Week "+timecalc.ISOWeekLabel(t)))
	} else {
		from = timecalc.StartOfDay(t)
		to = timecalc.Midnight(t)
	}

	ts, closeDB, err := openTimesheet()
	if err != nil {
		return err
	}
	defer closeDB()

	entries, err := ts.Entries(cmd.Context(), from, to)
	if err != nil {
		return err
	}

	printList(out, entries, t.Location())
	return nil
}

// printList groups entries by date and prints them.
func printList(w io.Writer, entries []model.Entry, loc *time.Location) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	st := newStyles(w)
	var currentDay string
	for _, e := range entries {
		start := time.Unix(e.Start, 0).In(loc)
		day := start.Format("2006-01-02")
		if day != currentDay {
			fmt.Fprintln(w, st.heading.Render(day))
			currentDay = day
		}

		name := st.muted.Render("(unassigned)")
		if e.Repo != nil || e.Branch != nil {
			id := e.Identity()
			name = id.Repo + "/" + id.Branch
		}

		dur := ""
		if e.Duration > 0 {
			dur = "  +" + timecalc.FormatDuration(e.Duration)
		}

		fmt.Fprintf(w, "%s  %s%s\n", start.Format("15:04"), name, dur)
	}
}
