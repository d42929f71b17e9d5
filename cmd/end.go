package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End the working day",
	Long:  `Credit the time since the last start, end or job to the current job.`,
	Args:  cobra.NoArgs,
	RunE:  runEnd,
}

func runEnd(cmd *cobra.Command, args []string) error {
	ts, closeDB, err := openTimesheet()
	if err != nil {
		return err
	}
	defer closeDB()

	closed, err := ts.EndDay(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Adding %d seconds to %s (%s)\n",
		closed.Seconds, closed.Identity, formatElapsed(closed.Seconds))
	return nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
