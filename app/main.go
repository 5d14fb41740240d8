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

	"github.com/lgarnier/fleetwatch/app/api"
	"github.com/lgarnier/fleetwatch/app/cfg"
	"github.com/lgarnier/fleetwatch/app/database"
	"github.com/lgarnier/fleetwatch/app/discord"
	"github.com/lgarnier/fleetwatch/app/feed"
	"github.com/lgarnier/fleetwatch/app/metrics"
	"github.com/lgarnier/fleetwatch/app/notify"
	"github.com/lgarnier/fleetwatch/app/scheduler"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
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
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting Fleetwatch", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DatabasePath, "migration_version", version, "dirty", dirty)

	vehicleRepo := database.NewVehicleRepository(db)
	stateRepo := database.NewStateRepository(db)
	subRepo := database.NewSubscriptionRepository(db)
	configRepo := database.NewGuildConfigRepository(db)
	auditRepo := database.NewAuditRepository(db)

	client, err := discord.NewClient(appCfg.DiscordToken)
	if err != nil {
		slog.Error("Failed to create discord client", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewRecorder()
	dispatcher := notify.NewDispatcher(client, configRepo, subRepo, auditRepo)
	fetcher := feed.NewFetcher(time.Duration(appCfg.HTTPTimeoutMs)*time.Millisecond, appCfg.UserAgent)
	parser := feed.NewParser()

	sched := scheduler.New(vehicleRepo, stateRepo, configRepo,
		fetcher, parser, dispatcher, recorder, appCfg.DefaultPollingSec)

	bot := discord.NewBot(client, vehicleRepo, stateRepo, subRepo, configRepo, sched)

	if err := client.Open(); err != nil {
		slog.Error("Failed to connect to Discord", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := bot.RegisterCommands(); err != nil {
		slog.Error("Failed to register commands", "error", err)
		os.Exit(1)
	}

	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(db, vehicleRepo, subRepo, recorder, appCfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Fleetwatch started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Fleetwatch shutdown complete")
}
