package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/puckdrop/tournament-server/config"
	"github.com/puckdrop/tournament-server/db"
	"github.com/puckdrop/tournament-server/handlers"
	"github.com/puckdrop/tournament-server/live"
	"github.com/puckdrop/tournament-server/models"
	"github.com/puckdrop/tournament-server/repositories"
	"github.com/puckdrop/tournament-server/routes"
	"github.com/puckdrop/tournament-server/schedule"
	"github.com/puckdrop/tournament-server/services"
	"github.com/puckdrop/tournament-server/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	snapshotRepo := repositories.NewPostgresSnapshotRepository(dbConn)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := snapshotRepo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to ensure snapshot schema", slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("snapshot repository initialized")

	var archiver storage.SnapshotArchiver
	if cfg.R2Configured() {
		archiver, err = storage.NewCloudflareR2Archiver(storage.CloudflareR2ArchiverConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 archiver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 archiver initialized")
	} else {
		logger.Info("R2 archival disabled, finished tournaments will not be archived")
	}

	var commissioner services.Commissioner
	if cfg.GeminiAPIKey != "" {
		commissioner = services.NewSlapshotCommissioner(services.CommissionerConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, logger)
		logger.Info("commissioner initialized", slog.String("model", cfg.GeminiModel))
	} else {
		logger.Info("commissioner disabled, no API key configured")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()

	generators := map[models.ScheduleMode]schedule.Generator{
		models.ModeRoundRobin: schedule.NewRoundRobinGenerator(nil),
		models.ModeGroupStage: schedule.NewGroupStageGenerator(nil),
	}

	tournamentService := services.NewTournamentService(
		snapshotRepo,
		generators,
		wsHub,
		commissioner,
		archiver,
		logger,
	)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := tournamentService.Rehydrate(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to rehydrate tournament state", slog.Any("error", err))
			os.Exit(1)
		}
	}

	authService, err := services.NewAuthService(cfg.OrganizerPassword, cfg.JWTSecretKey)
	if err != nil {
		logger.Error("failed to initialize auth service", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("services initialized")

	router := routes.InitRoutes(routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Commissioner: handlers.NewCommissionerHandler(commissioner, tournamentService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, logger),
		Health:       handlers.NewHealthHandler(dbConn),
	}, cfg.JWTSecretKey)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
