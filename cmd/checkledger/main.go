package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/checkledger/internal/adapter/driven/excel"
	githubadapter "github.com/ericfisherdev/checkledger/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/checkledger/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/checkledger/internal/adapter/driving/http"
	"github.com/ericfisherdev/checkledger/internal/application"
	"github.com/ericfisherdev/checkledger/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"app_id", cfg.AppID,
		"report_repo", cfg.ReportRepo,
		"timezone", cfg.Location.String(),
		"sheet_prefix", cfg.SheetPrefix,
	)
	if cfg.WebhookSecret == "" {
		slog.Warn("no webhook secret configured, payload signatures will not be validated")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	resultStore := sqliteadapter.NewResultRepo(db)
	ledgerStore := sqliteadapter.NewLedgerRepo(db)
	ghClient := githubadapter.NewClient(cfg.GitHubToken, cfg.ReportRepo)
	exporter := excel.NewExporter()

	// 6. Create services.
	recordSvc := application.NewRecordService(resultStore, ledgerStore, ghClient, cfg.AppID, cfg.SheetPrefix, cfg.Location)
	exportSvc := application.NewExportService(resultStore, exporter, cfg.SheetPrefix)
	healthSvc := application.NewHealthService(ledgerStore, cfg.Location)

	// 7. Create HTTP handler and register routes.
	handler := httphandler.NewHandler(
		resultStore,
		ledgerStore,
		recordSvc,
		exportSvc,
		healthSvc,
		[]byte(cfg.WebhookSecret),
		slog.Default(),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("checkledger started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout to drain in-flight deliveries.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
