package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var jobCmd = &cobra.Command{
	Use:   "job <repo> <branch>",
	Short: "Switch to a job",
	Long: `Credit the time since the last start, end or job to the previous job,
then start tracking <repo> <branch>. The new job's time is credited by the
next end or job.`,
	Args: cobra.ExactArgs(2),
	RunE: runJob,
}

func runJob(cmd *cobra.Command, args []string) error {
	repo, branch := args[0], args[1]

	ts, closeDB, err := openTimesheet()
	if err != nil {
		return err
	}
	defer closeDB()

	closed, err := ts.AssignJob(cmd.Context(), repo, branch)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Adding %d seconds to %s (%s)\n",
		closed.Seconds, closed.Identity, formatElapsed(closed.Seconds))
	fmt.Fprintf(out, "Now working on %q/%q\n", repo, branch)
	return nil
}
