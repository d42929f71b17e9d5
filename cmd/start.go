package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the working day",
	Long: `Open a new session that is not yet assigned to a job.

Running start twice without end or job in between is allowed; the later
start becomes the open session.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	ts, closeDB, err := openTimesheet()
	if err != nil {
		return err
	}
	defer closeDB()

	e, err := ts.StartDay(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Started session at %s\n",
		time.Unix(e.Start, 0).In(now().Location()).Format("15:04:05"))
	return nil
}
