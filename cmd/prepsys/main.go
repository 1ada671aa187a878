// prepsys: kitchen preparation system
//
// Tracks raw material stock and manufacturing orders, and learns each
// product's recipe from the orders that were actually completed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/habibGamal/preparation-system/internal/config"
	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/database/seed"
	"github.com/habibGamal/preparation-system/internal/httpapi"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
	"github.com/habibGamal/preparation-system/internal/services/recipes"
	"github.com/habibGamal/preparation-system/internal/services/settings"
	"github.com/habibGamal/preparation-system/internal/tui"
	"github.com/habibGamal/preparation-system/internal/util"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

type options struct {
	configPath  string
	migrateOnly bool
	seedData    bool
	serve       bool
	backup      bool
	debug       bool
}

func main() {
	var (
		opts        options
		showVersion bool
	)
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&opts.migrateOnly, "migrate-only", false, "Run migrations and exit")
	flag.BoolVar(&opts.seedData, "seed", false, "Generate demo data and exit")
	flag.BoolVar(&opts.serve, "serve", false, "Serve the HTTP API instead of the terminal UI")
	flag.BoolVar(&opts.backup, "backup", false, "Back up the database and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.Parse()

	if showVersion {
		fmt.Printf("prepsys version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		// Force exit after timeout
		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	if err := run(ctx, opts); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, cfgPath, err := config.Load(opts.configPath, true)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	closeLog, err := setupLogging(cfg, opts.debug)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("prepsys starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
	)

	dbPath, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("ensuring data directory: %w", err)
	}

	backupDir, err := config.BackupDir(cfg)
	if err != nil {
		slog.Warn("failed to create backup directory", "error", err)
		backupDir = ""
	}

	report, err := database.Recover(ctx, dbPath, backupDir)
	if err != nil {
		return fmt.Errorf("database recovery failed: %w", err)
	}
	switch report.Outcome {
	case database.RecoveryFromBackup:
		slog.Warn("database restored from backup", "backup", report.BackupUsed)
	case database.RecoveryWALReplayed:
		slog.Warn("database recovered by WAL checkpoint", "path", dbPath)
	default:
		slog.Debug("database integrity verified")
	}

	db, err := database.Open(dbPath, &cfg.Database, backupDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	slog.Info("database opened", "path", db.Path())
	defer func() {
		slog.Info("closing database")
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	migrator, err := database.NewMigrator(db.DB)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	result, err := migrator.MigrateUp(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if len(result.Applied) > 0 {
		slog.Info("applied migrations",
			"count", len(result.Applied),
			"to_version", result.CurrentVersion,
		)
	}

	switch {
	case opts.migrateOnly:
		slog.Info("migrations complete, exiting")
		return nil

	case opts.backup:
		path, err := db.Backup(ctx)
		if err != nil {
			return fmt.Errorf("backing up database: %w", err)
		}
		fmt.Println(path)
		return nil

	case opts.seedData:
		return seedDatabase(ctx, db, cfg)

	case opts.serve:
		return serve(ctx, db, cfg)
	}

	tui.Version = Version
	tui.BuildTime = BuildTime

	slog.Info("starting TUI", "color_scheme", cfg.Display.ColorScheme)

	if err := tui.Run(ctx, db, cfg, util.SystemClock{}); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	slog.Info("prepsys shutdown complete")
	return nil
}

// setupLogging installs the default slog logger. It logs JSON to the
// configured file, or text to stderr when no file is set.
func setupLogging(cfg *config.Config, debug bool) (func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			level = slog.LevelDebug
		case config.LogLevelWarn:
			level = slog.LevelWarn
		case config.LogLevelError:
			level = slog.LevelError
		}
	}

	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	if logPath == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return func() {}, nil
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level})))
	return func() { logFile.Close() }, nil
}

func seedDatabase(ctx context.Context, db *database.DB, cfg *config.Config) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err == nil && count > 0 {
		slog.Warn("database already contains products, skipping seed generation", "count", count)
		return nil
	}

	seedCfg := seed.DefaultConfig()
	seedCfg.Settings = settings.FromConfig(cfg.Manufacturing)

	summary, err := seed.NewGenerator(db.DB, seedCfg).Generate(ctx)
	if err != nil {
		return fmt.Errorf("generating seed data: %w", err)
	}

	fmt.Printf("seeded %d products, %d completed orders, %d documents and %d recipes\n",
		summary.Products, summary.CompletedOrders, summary.Documents, summary.Recipes)
	return nil
}

// serve runs the HTTP API until ctx is cancelled.
func serve(ctx context.Context, db *database.DB, cfg *config.Config) error {
	clock := util.SystemClock{}
	logger := slog.Default()

	recipeSvc := recipes.NewService(db.DB, recipes.WithClock(clock), recipes.WithLogger(logger))
	settingsSvc := settings.NewService(db.DB, settings.FromConfig(cfg.Manufacturing), logger)
	if _, err := settingsSvc.Seed(ctx); err != nil {
		return err
	}

	handler := httpapi.NewServer(httpapi.Services{
		Inventory:     inventory.NewService(db.DB, inventory.WithClock(clock), inventory.WithLogger(logger)),
		Manufacturing: manufacturing.NewService(db.DB, recipeSvc, manufacturing.WithClock(clock), manufacturing.WithLogger(logger)),
		Recipes:       recipeSvc,
		Settings:      settingsSvc,
		Health:        db,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}
