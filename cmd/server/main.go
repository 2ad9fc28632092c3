package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahspaces/storefront-backend/config"
	"github.com/frahspaces/storefront-backend/internal/app/controller"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/internal/app/service"
	"github.com/frahspaces/storefront-backend/internal/db"
	"github.com/frahspaces/storefront-backend/internal/middleware"
	"github.com/frahspaces/storefront-backend/internal/queue"
	"github.com/frahspaces/storefront-backend/internal/router"
	"github.com/frahspaces/storefront-backend/internal/scheduler"
	"github.com/frahspaces/storefront-backend/internal/storage"
	"github.com/frahspaces/storefront-backend/internal/websocket"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	redisclient "github.com/frahspaces/storefront-backend/pkg/redis"
)

const (
	visitBuffer     = 256
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting frah spaces backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed the starter catalog
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	gdb := db.GetDB()

	// Order events go to connected staff and, when configured, RabbitMQ
	hub := websocket.NewHub()
	go hub.Run(ctx)

	events := queue.MultiPublisher{queue.BroadcastPublisher{Target: hub}}
	if cfg.Queue.URL != "" {
		amqpPublisher, err := queue.NewAMQPPublisher(cfg.Queue.URL, cfg.Queue.OrderEvents)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, order events stay local", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer amqpPublisher.Close()
			events = append(events, amqpPublisher)
		}
	}

	// Rate limiting is skipped without Redis
	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled && cfg.Redis.Addr != "" {
		rdb, err := redisclient.Connect(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer rdb.Close()
			limiter = redisclient.NewTokenBucket(rdb, cfg.RateLimit)
		}
	}

	var presigner controller.Presigner
	if cfg.S3.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			logger.Warn("S3 unavailable, uploads disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			presigner = s3Storage
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gdb)
	productRepo := repository.NewProductRepository(gdb)
	categoryRepo := repository.NewCategoryRepository(gdb)
	orderRepo := repository.NewOrderRepository(gdb)
	reviewRepo := repository.NewReviewRepository(gdb)
	wishlistRepo := repository.NewWishlistRepository(gdb)
	visitRepo := repository.NewVisitRepository(gdb)
	statsRepo := repository.NewStatsRepository(gdb)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiry)
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	orderService := service.NewOrderService(gdb, orderRepo, userRepo, cfg.Store, events)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	reviewService := service.NewReviewService(reviewRepo, productRepo, userRepo)
	visitService := service.NewVisitService(visitRepo)
	dashboardService := service.NewDashboardService(statsRepo, visitRepo)

	visitRecorder := service.NewVisitRecorder(visitService, visitBuffer)

	reminders := scheduler.NewOrderReminderScheduler(
		cfg.Scheduler.OrderReminderCron,
		cfg.Scheduler.OrderReminderAfter,
		orderService,
		events,
	)
	if err := reminders.Start(); err != nil {
		logger.Warn("Order reminder scheduler not started", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize controllers
	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewProductController(catalogService),
		controller.NewOrderController(orderService, hub),
		controller.NewWishlistController(wishlistService),
		controller.NewReviewController(reviewService),
		controller.NewAdminController(userService, dashboardService),
		controller.NewUploadController(presigner),
		controller.NewSiteController(gdb, cfg.Database.Driver, visitService),
		middleware.NewAuthMiddleware(authService, userService),
		limiter,
		visitRecorder,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	reminders.Stop()
	visitRecorder.Close()

	logger.Info("Server stopped successfully")
}
