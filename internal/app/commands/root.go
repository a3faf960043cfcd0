// Package commands defines the hcm command line.
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hcm/internal/platform/config"
)

func New(conf *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hcm",
		Short:         "Human capital management service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: parseLevel(conf.LogLevel),
			}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.AddCommand(newServeCmd(conf))
	rootCmd.AddCommand(newMigrateCmd(conf))
	rootCmd.AddCommand(newSeedCmd(conf))
	rootCmd.AddCommand(newCipherCmd(conf))
	rootCmd.AddCommand(newHousekeepCmd(conf))

	return rootCmd
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}
