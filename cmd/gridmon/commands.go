package main

import (
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/api"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/config"
)

var (
	granularity string
	assumeYes   bool
	asJSON      bool

	rootCmd = &cobra.Command{
		Use:           "gridmon",
		Short:         "Street-level power loss and theft monitor",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load()
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the samplers, log views and the operator console",
		Args:  cobra.NoArgs,
		RunE:  runServe, // cmd_serve.go
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Fetch one snapshot and print its classification",
		Args:  cobra.NoArgs,
		RunE:  runStatus, // cmd_status.go
	}

	alertCmd = &cobra.Command{
		Use:       "alert <investigate|fault>",
		Short:     "Send an operator alert email after confirmation",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"investigate", "fault"},
		RunE:      runAlert, // cmd_alert.go
	}

	logsCmd = &cobra.Command{
		Use:   "logs",
		Short: "Inspect and prune the daily and monthly loss logs",
	}
	logsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List log entries, newest first for daily logs",
		Args:  cobra.NoArgs,
		RunE:  runLogsList, // cmd_logs.go
	}
	logsDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one log entry",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogsDelete,
	}
	logsPurgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Delete every entry of a log",
		Args:  cobra.NoArgs,
		RunE:  runLogsPurge,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, statusCmd, alertCmd, logsCmd)
	logsCmd.AddCommand(logsListCmd, logsDeleteCmd, logsPurgeCmd)

	statusCmd.Flags().BoolVar(&asJSON, "json", false, "print the classification as JSON")
	alertCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	logsCmd.PersistentFlags().StringVarP(&granularity, "granularity", "g", "daily", "daily or monthly")
	logsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	logsPurgeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}

func newClient() *api.Client {
	return api.New(config.APIURL(), config.HTTPTimeout())
}

// confirm asks the operator before anything is sent or deleted. Tests replace
// it.
var confirm = func(title, affirmative string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative(affirmative).
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}
