package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "taskpilot-backend/cmd/api"
	authUsecase "taskpilot-backend/internal/auth/usecase"
	taskRepo "taskpilot-backend/internal/task/repository"
	"taskpilot-backend/pkg/config"
	"taskpilot-backend/pkg/database"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:          "taskpilot",
		Short:        "Task manager API with AI task decomposition",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(), newTokenCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			cfg := config.Load()

			// Initialize database
			db, err := database.NewConnection(cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := taskRepo.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := api.NewHandler(cfg, db)
			log.Printf("[Server] Starting on port %s (db: %s)", cfg.Port, cfg.DBDriver)
			return handler.Start(ctx, ":"+cfg.Port)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := database.NewConnection(cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := taskRepo.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			log.Printf("[DB] Schema is up to date (%s)", cfg.DBDriver)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token signed with AUTH_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			token, expiresAt, err := authUsecase.NewAuthUsecase(cfg).IssueToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "owner", "Token subject")
	return cmd
}
