package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"winetasting/internal/config"
)

const (
	releaseVersion = "1.0.0"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		cobra.CheckErr(fmt.Errorf("loading .env file: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newCmd(&config.Config{}).ExecuteContext(ctx)
	stop()
	logger.Close()
	cobra.CheckErr(err)
}

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "winetasting",
		Short:         "Organizer console for a blind wine-tasting tournament.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		// Errors always reach stderr; info and warnings only with --verbose.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init("winetasting", cfg.Verbose, false, io.Discard)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.PersistentFlags()
	config.RegisterFlags(fs, cfg)
	config.ApplyEnv(fs)

	cmd.AddCommand(newStandingsCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("winetasting v{{.Version}}\n")

	return cmd
}

