package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"stewardship/internal/app/bootstrap"
	"stewardship/internal/platform/config"
	"stewardship/internal/platform/logging"
)

const programName = "stewardship"

var configFile string

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

// setup loads configuration and installs the process logger.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func apiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Serve the stewardship HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			app, err := bootstrap.BuildAPI(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("bootstrap api failed: %w", err)
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Error("api shutdown close failed", "error", err.Error())
				}
			}()
			return app.Run(cmd.Context())
		},
	}
}

func workerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the outbox relay and membership projector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			app, err := bootstrap.BuildWorker(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("bootstrap worker failed: %w", err)
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Error("worker shutdown close failed", "error", err.Error())
				}
			}()
			return app.Run(cmd.Context())
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return bootstrap.Migrate(cmd.Context(), cfg, logger)
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Trust-weighted role activation for self-governing groups",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file (defaults to $STEWARDSHIP_CONFIG)")

	rootCmd.AddCommand(apiCommand())
	rootCmd.AddCommand(workerCommand())
	rootCmd.AddCommand(migrateCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// cobra has already printed the error
		stop()
		os.Exit(1)
	}
}
