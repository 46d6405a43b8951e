// Package cli builds the corosched command-line demo driver.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagLogLevel   string

	logger zerolog.Logger
)

// NewRootCmd creates the root cobra command for the corosched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "corosched",
		Short: "corosched — a cooperative, priority-based task scheduler",
		Long: "corosched drives a small demo workload through the cooperative\n" +
			"priority scheduler, so its dispatch order, deferred submission, and\n" +
			"yield behavior can be observed directly.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(flagLogLevel)
			if err != nil {
				return err
			}
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to a YAML scheduler config")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	root.AddCommand(newRunCmd(), newVersionCmd())

	return root
}
