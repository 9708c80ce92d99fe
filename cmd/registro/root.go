package main

import (
	"log/slog"
	"os"

	"github.com/registro/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	cfg     = config.FromEnv()
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "registro",
	Short:         "Send registration forms to the registration endpoint",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")
	rootCmd.AddCommand(submitCmd)
}
