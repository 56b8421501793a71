package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/errata-app/errata-api/internal/config"
	"github.com/errata-app/errata-api/internal/platform/logger"
)

func main() {
	var debugMode bool
	rootCommand := cobra.Command{
		Use:           "errata-admin",
		Short:         "Operational tooling for the errata API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if debugMode {
				level = "debug"
			}
			log, err := logger.Setup(level)
			if err != nil {
				return err
			}
			slog.SetDefault(log)
			return nil
		},
	}
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCommand.AddCommand(
		newMigrateCommand(),
		newLeaderboardCommand(),
		newTokenCommand(),
	)

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads server configuration for commands that need the
// database or signing secret.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
