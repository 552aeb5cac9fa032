package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coachsync/wellness-app/internal/api"
	"coachsync/wellness-app/internal/cache"
	"coachsync/wellness-app/internal/config"
	"coachsync/wellness-app/internal/email"
	mongorepo "coachsync/wellness-app/internal/repository/mongo"
	"coachsync/wellness-app/internal/service"
	"coachsync/wellness-app/internal/sideeffect"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logging ---
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("FATAL: Could not init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("Starting check-in engine", zap.String("address", cfg.Server.Address))

	// --- Database Connection ---
	dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongorepo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	// The unique assignment index must exist before traffic: it backs the
	// exactly-once materialization guarantee.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		if err := mongorepo.EnsureAssignmentIndexes(ctx, appDB.Collection("assignments")); err != nil {
			cancel()
			logger.Fatal("Failed to create assignment indexes", zap.Error(err))
		}
		if err := mongorepo.EnsureResponseIndexes(ctx, appDB.Collection("responses")); err != nil {
			logger.Warn("Failed to create response indexes", zap.Error(err))
		}
		if err := mongorepo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications")); err != nil {
			logger.Warn("Failed to create notification indexes", zap.Error(err))
		}
		if err := mongorepo.EnsureGoalIndexes(ctx, appDB.Collection("goals")); err != nil {
			logger.Warn("Failed to create goal indexes", zap.Error(err))
		}
		cancel()
	}

	// --- Initialize Repositories ---
	assignmentRepo := mongorepo.NewMongoAssignmentRepository(appDB)
	responseRepo := mongorepo.NewMongoResponseRepository(appDB)
	notificationRepo := mongorepo.NewMongoNotificationRepository(appDB)
	goalRepo := mongorepo.NewMongoGoalRepository(appDB)
	userRepo := mongorepo.NewMongoUserRepository(appDB)
	txnRunner := mongorepo.NewMongoTxnRunner(dbClient)

	// --- Side-effect collaborators ---
	var mailer sideeffect.Mailer
	if cfg.Email.Enabled {
		mailer = email.NewService(cfg.Email.SendgridKey, cfg.Email.AppName, cfg.Email.FromAddress)
	}

	var dashboardCache sideeffect.Cache
	redisCache, err := cache.New(cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		// Cache invalidation is best-effort; run without it rather than fail.
		logger.Warn("Redis unavailable, dashboard cache invalidation disabled", zap.Error(err))
	} else {
		defer redisCache.Close()
		dashboardCache = redisCache
	}

	goalUpdater := service.NewGoalService(goalRepo)
	dispatcher := sideeffect.NewDispatcher(
		notificationRepo,
		userRepo,
		mailer,
		dashboardCache,
		goalUpdater,
		logger,
		cfg.SideEffects.Timeout,
	)

	// --- Initialize Services ---
	resolverService := service.NewResolverService(assignmentRepo)
	submissionService := service.NewSubmissionService(resolverService, assignmentRepo, responseRepo, txnRunner, dispatcher, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, responseRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	api.SetupRoutes(
		router,
		api.NewCheckInHandler(resolverService, submissionService),
		api.NewAssignmentHandler(assignmentService),
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()
	logger.Info("Server started", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting.")
}
