package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openevent/runsheet-api/internal/config"
	"github.com/openevent/runsheet-api/internal/database"
	"github.com/openevent/runsheet-api/internal/handler"
	"github.com/openevent/runsheet-api/internal/middleware"
	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/repository"
	"github.com/openevent/runsheet-api/internal/router"
	"github.com/openevent/runsheet-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	location, err := cfg.Location()
	if err != nil {
		log.Fatalf("failed to resolve event timezone: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Activity{}, &models.TransitionLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, report caching disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := repository.NewActivityRepository(db)
	transitionRepo := repository.NewTransitionLogRepository(db)

	scheduleService := service.NewScheduleService(activityRepo, logger)
	executionService := service.NewExecutionService(activityRepo, transitionRepo, logger)
	trackerService := service.NewTrackerService(activityRepo, location, cfg.LiveToleranceMinutes, logger)
	reportService := service.NewReportService(activityRepo, redisClient, cfg.ReportCacheTTL, cfg.ReportToleranceMinutes, logger)
	exportService := service.NewExportService(activityRepo, cfg.ReportToleranceMinutes, logger)

	scheduleHandler := handler.NewScheduleHandler(scheduleService, executionService, cfg.DefaultVariant, logger)
	executionHandler := handler.NewExecutionHandler(executionService, validate, logger)
	trackerHandler := handler.NewTrackerHandler(trackerService, cfg.DefaultVariant, logger)
	reportHandler := handler.NewReportHandler(reportService, exportService, cfg.DefaultVariant, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ScheduleHandler:  scheduleHandler,
		ExecutionHandler: executionHandler,
		TrackerHandler:   trackerHandler,
		ReportHandler:    reportHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
