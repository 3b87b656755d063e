package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/nlem-api/config"
	"github.com/giygas/nlem-api/data"
	"github.com/giygas/nlem-api/database"
	"github.com/giygas/nlem-api/handlers"
	"github.com/giygas/nlem-api/health"
	"github.com/giygas/nlem-api/logging"
	"github.com/giygas/nlem-api/migrations"
	"github.com/giygas/nlem-api/scheduler"
	"github.com/giygas/nlem-api/seeder"
	"github.com/giygas/nlem-api/server"
	"github.com/giygas/nlem-api/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

// app holds what both the server and the seeder need after startup
type app struct {
	cfg     *config.Config
	logs    *logging.LoggingService
	pool    *database.Pool
	migrate bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logging.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree: `seed` loads a CSV, anything else serves the API
func newRootCommand() *cobra.Command {
	var (
		verbose bool
		migrate bool
	)

	rootCmd := &cobra.Command{
		Use:           "nlem-api",
		Short:         "Thai National List of Essential Medicines API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), verbose, migrate)
			if err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}

	// Anything that is not `seed` serves, stray flags included
	rootCmd.FParseErrWhitelist.UnknownFlags = true

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose console logging")
	rootCmd.PersistentFlags().BoolVar(&migrate, "migrate", false, "Apply database migrations before running (overrides MIGRATE_ON_START)")

	rootCmd.AddCommand(newSeedCommand(&verbose, &migrate))
	return rootCmd
}

func newSeedCommand(verbose, migrate *bool) *cobra.Command {
	var file string

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the formulary with the contents of an NLEM CSV export",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), *verbose, *migrate)
			if err != nil {
				return err
			}
			defer a.close()

			path := a.cfg.SeedFile
			if file != "" {
				path = file
			}

			_, err = seeder.NewSeeder(data.NewSeedStore(a.pool)).SeedFile(cmd.Context(), path)
			return err
		},
	}

	seedCmd.FParseErrWhitelist.UnknownFlags = true
	seedCmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to load (defaults to SEED_FILE)")
	return seedCmd
}

// setup loads the environment, configuration and logger, then opens the pool and migrates
// when asked to
func setup(ctx context.Context, verbose, migrate bool) (*app, error) {
	loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logs := logging.InitLogger(logging.Options{
		LogDir:         cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		Verbose:        verbose,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})

	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := database.NewPool(ctx, database.PoolConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		AcquireTimeout: cfg.DBAcquireTimeout,
	})
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("failed to open database pool: %w", err)
	}

	a := &app{cfg: cfg, logs: logs, pool: pool, migrate: migrate || cfg.MigrateOnStart}
	if a.migrate {
		if err := migrations.Up(pool); err != nil {
			a.close()
			return nil, err
		}
	}

	return a, nil
}

// loadDotEnv reads .env from the working directory, falling back to the executable's directory
func loadDotEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
}

func (a *app) serve(ctx context.Context) error {
	defer a.close()

	repo := data.NewDrugRepository(a.pool)
	handler := handlers.NewHTTPHandler(repo, validation.NewDataValidator(), health.NewHealthChecker(a.pool))
	srv := server.NewServer(a.cfg, handler)

	var logCleaner scheduler.LogCleaner
	if a.logs.Rotating != nil {
		logCleaner = a.logs.Rotating
	}
	sched := scheduler.NewScheduler(srv.RateLimiter(), a.pool, logCleaner, scheduler.DefaultIntervals())
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("Server forced to shutdown", "error", err)
		return err
	}

	logging.Info("Server exited gracefully")
	return nil
}

func (a *app) close() {
	a.pool.Close()
	if err := a.logs.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}
