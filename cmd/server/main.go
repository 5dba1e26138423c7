// Package main implements the entry point for the Recall API server, which
// serves spaced-repetition review queues and the daily engagement loop
// around them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. Running the binary without a subcommand serves HTTP.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "recall-api",
		Short:        "Spaced repetition review and engagement API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default ./config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		newMigrateCmd(&configPath),
		newTokenCmd(&configPath),
	)
	return root
}

// initializeApp loads configuration and sets up the process logger. A nil
// logOutput writes logs to stdout.
func initializeApp(configPath string, logOutput io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
		Output: logOutput,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Engagement.Timezone))
	l.Debug("Database configuration", slog.String("url", maskDatabaseURL(cfg.Database.URL)))
	return cfg, l, nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, l, err := initializeApp(configPath, nil)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, l, postgresStores(db, l))
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	app.db = db

	return app.Run(ctx)
}

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status|version|reset]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: migrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := initializeApp(*configPath, nil)
			if err != nil {
				return err
			}
			db, err := setupAppDatabase(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					l.Error("Error closing database connection", slog.String("error", err.Error()))
				}
			}()
			return runMigrations(cmd.Context(), db, args[0], l)
		},
	}
	return cmd
}

func newTokenCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <owner-id>",
		Short: "Mint a development bearer token for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("owner id must be a UUID: %w", err)
			}
			cfg, _, err := initializeApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}
			token, err := jwtService.GenerateToken(cmd.Context(), ownerID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}
