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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/hackfest-dev/hackfest-server/chat"
	"github.com/hackfest-dev/hackfest-server/config"
	"github.com/hackfest-dev/hackfest-server/db"
	"github.com/hackfest-dev/hackfest-server/handlers"
	"github.com/hackfest-dev/hackfest-server/metrics"
	"github.com/hackfest-dev/hackfest-server/middleware"
	"github.com/hackfest-dev/hackfest-server/repositories"
	api "github.com/hackfest-dev/hackfest-server/routes"
	"github.com/hackfest-dev/hackfest-server/services"
	"github.com/hackfest-dev/hackfest-server/storage"
)

// How often hackathon statuses are refreshed and expired notifications purged.
const schedulerInterval = 30 * time.Second

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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	metrics.Register()

	wsHub := chat.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	hackathonRepo := repositories.NewPostgresHackathonRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	projectRepo := repositories.NewPostgresProjectRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	messageRepo := repositories.NewPostgresMessageRepository(dbConn)
	logger.Info("repositories initialized")

	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	notificationService := services.NewNotificationService(notificationRepo, wsHub, logger)
	hackathonService := services.NewHackathonService(hackathonRepo, uploader, notificationService, logger)
	teamService := services.NewTeamService(teamRepo, userRepo, notificationService, emailService, logger)
	projectService := services.NewProjectService(projectRepo, userRepo, notificationService, emailService, uploader, logger)
	submissionService := services.NewSubmissionService(submissionRepo, projectRepo, notificationService)
	messageService := services.NewMessageService(messageRepo, teamRepo, projectRepo)
	dashboardService := services.NewDashboardService(hackathonRepo, teamRepo, projectRepo, notificationRepo)
	logger.Info("services initialized")

	go runScheduler(logger, hackathonService, notificationService)

	h := api.Handlers{
		Auth:         handlers.NewAuthHandler(authService, userService, emailService, cfg.JWTSecretKey),
		User:         handlers.NewUserHandler(userService),
		Hackathon:    handlers.NewHackathonHandler(hackathonService, userService),
		Team:         handlers.NewTeamHandler(teamService),
		Project:      handlers.NewProjectHandler(projectService, userService),
		Submission:   handlers.NewSubmissionHandler(submissionService, userService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		Message:      handlers.NewMessageHandler(messageService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, messageService, logger),
	}
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, h, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Authenticator:  middleware.NewAuthenticator(cfg.JWTSecretKey),
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})
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

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// runScheduler periodically refreshes hackathon statuses from their dates
// and purges notifications past their retention window.
func runScheduler(logger *slog.Logger, hackathons services.HackathonService, notifications services.NotificationService) {
	ticker := time.NewTicker(schedulerInterval)
	defer ticker.Stop()
	logger.Info("background scheduler started", slog.Duration("interval", schedulerInterval))

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), schedulerInterval)
		defer cancel()

		if err := hackathons.RefreshStatuses(ctx); err != nil {
			logger.Error("scheduler: hackathon status refresh failed", slog.Any("error", err))
		}
		if err := notifications.CleanupExpired(ctx); err != nil {
			logger.Error("scheduler: notification cleanup failed", slog.Any("error", err))
		}
	}

	run()
	for range ticker.C {
		run()
	}
}
