package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/docqa-backend/internal/app"
	"github.com/yungbote/docqa-backend/internal/data/db"
	"github.com/yungbote/docqa-backend/internal/platform/envutil"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

const shutdownTimeout = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:           "docqa",
	Short:         "Upload PDFs and ask questions about the latest one",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the documents schema and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().String("port", "", "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		_ = os.Setenv("PORT", port)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	theDB, err := app.OpenDatabase(log, cfg)
	if err != nil {
		return err
	}
	defer db.Close(theDB)
	log.Info("Migrations applied", "driver", cfg.DB.Driver)
	return nil
}
