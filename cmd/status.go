package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/timecalc"
	"github.com/Tiliavir/timesheet/internal/timesheet"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the open session",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ts, closeDB, err := openTimesheet()
	if err != nil {
		return err
	}
	defer closeDB()

	out := cmd.OutOrStdout()
	st, err := ts.Status(cmd.Context())
	if errors.Is(err, timesheet.ErrNoActiveSession) {
		fmt.Fprintln(out, "No active session.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, newStyles(out).heading.Render("Running:"))
	fmt.Fprintf(out, "  Repo: %s\n", displayName(st.Identity.Repo))
	fmt.Fprintf(out, "  Branch: %s\n", displayName(st.Identity.Branch))
	fmt.Fprintf(out, "  Since: %s\n", st.Since.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "  Elapsed: %s\n", timecalc.FormatDurationHHMMSS(st.Elapsed))
	return nil
}
