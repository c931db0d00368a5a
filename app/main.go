package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lysyi3m/idea-box/app/api"
	"github.com/lysyi3m/idea-box/app/cfg"
	"github.com/lysyi3m/idea-box/app/database"
	"github.com/lysyi3m/idea-box/app/moderation"
	"github.com/lysyi3m/idea-box/app/notifier"
)

func main() {
	// Local .env is optional; absence is not an error
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Idea Box server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	denylist, err := moderation.LoadDenylist(appCfg.DenylistFile)
	if err != nil {
		slog.Error("Failed to load denylist", "file", appCfg.DenylistFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Denylist loaded", "terms", len(denylist))

	submissionRepo := database.NewSubmissionRepository(db)
	ideaRepo := database.NewIdeaRepository(db)
	rateLimitRepo := database.NewRateLimitRepository(db)

	screener := moderation.NewScreener(denylist)
	limiter := moderation.NewLimiter(rateLimitRepo, appCfg.RateLimitMaxAttempts,
		time.Duration(appCfg.RateLimitWindow)*time.Second)

	emailNotifier := notifier.NewEmailNotifier()
	if emailNotifier.Enabled() {
		slog.Info("Email notifications enabled", "recipient", appCfg.NotifyEmail)
	} else {
		slog.Info("Email notifications disabled (SMTP host or recipient not set)")
	}

	service := moderation.NewService(submissionRepo, ideaRepo, limiter, screener, emailNotifier)

	handler := api.NewHandler(service, submissionRepo, ideaRepo)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Idea Box server shutdown complete")
}
