package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/config"
	"github.com/Tiliavir/timesheet/internal/storage"
	"github.com/Tiliavir/timesheet/internal/timesheet"
)

var (
	configPath string
	dbPath     string

	// cfg is loaded before every command runs.
	cfg *config.Config

	// now is the clock used for new entries; tests replace it.
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Timesheet – track work sessions per repo and branch",
	Long: `timesheet records work sessions tagged by repository and branch in a
local SQLite database and reports monthly totals.

  timesheet start                 begin the day
  timesheet job <repo> <branch>   credit time so far and switch to a job
  timesheet end                   credit time so far to the current job
  timesheet report <year> <month> monthly totals per repo and branch`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.timesheet/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (overrides config and "+config.EnvDB+")")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	config.SetupLogger(cmd.ErrOrStderr(), c.Log.Level)
	cfg = c
	return nil
}

// openTimesheet opens the configured database. The returned func closes it.
func openTimesheet() (*timesheet.Timesheet, func(), error) {
	path := cfg.Storage.DBPath
	if dbPath != "" {
		p, err := config.ExpandHome(dbPath)
		if err != nil {
			return nil, nil, err
		}
		path = p
	}

	store, err := storage.Open(path)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing database", "path", path, "error", err)
		}
	}
	return timesheet.New(store, now), closeFn, nil
}
