package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointly/config"
	"appointly/cron"
	"appointly/database"
	memoryRepo "appointly/database/repository/memory"
	relationalRepo "appointly/database/repository/relational"
	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/handlers"
	"appointly/middleware"
	"appointly/routes"
	"appointly/services/booking"
	"appointly/services/notification"
	"appointly/services/tasks"
	"appointly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// openStore builds the repository selected by STORE_DRIVER. The returned
// closer releases the underlying connection.
func openStore(ctx context.Context, logger *zap.Logger) (schedulerRepo.SchedulerRepository, func(), error) {
	switch config.AppConfig.StoreDriver {
	case config.StoreMongo:
		client, err := database.InitDB(ctx, logger)
		if err != nil {
			return nil, nil, err
		}
		repo, err := schedulerRepo.NewMongoSchedulerRepo(ctx, client, config.AppConfig.DatabaseName)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.StorePostgres:
		db, err := database.NewPSQLStorage(logger)
		if err != nil {
			return nil, nil, err
		}
		repo, err := relationalRepo.NewGormSchedulerRepo(db)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil

	case config.StoreMemory:
		logger.Warn("main: using in-memory store, data is lost on restart")
		return memoryRepo.NewMemorySchedulerRepo(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", config.AppConfig.StoreDriver)
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.AppConfig.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET must be set")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repo, closeStore, err := openStore(ctx, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open %s store: %v", config.AppConfig.StoreDriver, err)
	}
	defer closeStore()

	engine := &booking.DefaultSchedulingEngine{
		Repo:                  repo,
		Logger:                logger.Named("booking"),
		ReminderLeadTime:      config.AppConfig.ReminderLeadTime,
		BookingNumberAttempts: config.AppConfig.BookingNumberAttempts,
		Location:              config.Location(),
	}

	var redisClients []*redis.Client
	if config.AppConfig.EnableSlotCache {
		cacheClient, err := utils.NewCacheClient(ctx)
		if err != nil {
			logger.Warn("main: slot cache disabled, redis unavailable", zap.Error(err))
		} else {
			defer cacheClient.Close()
			redisClients = append(redisClients, cacheClient)
			ttl := config.AppConfig.SlotCacheTTL
			if ttl <= 0 {
				ttl = utils.DefaultSlotCacheTTL
			}
			engine.Cache = booking.NewRedisSlotCache(cacheClient, ttl, logger.Named("slotcache"))
		}
	}

	var worker *cron.ReminderWorker
	if config.AppConfig.EnableReminders {
		addr, password, db := utils.RedisQueueAddr()
		queueClient := asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password, DB: db})
		defer queueClient.Close()
		engine.Reminders = tasks.NewAsynqReminderScheduler(queueClient)

		notifier := notification.NewLogNotificationService(logger.Named("notification"))
		worker = cron.NewReminderWorker(repo, notifier, logger.Named("reminders"))
		worker.Start()
	}

	monitor := utils.NewHealthMonitor(repo, redisClients...)
	monitor.Start(ctx, 30*time.Second)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger.Named("http")))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewSchedulingHandler(engine),
		handlers.HealthHandler(monitor),
		[]byte(config.AppConfig.JWTSecret),
		config.AppConfig.MaxRequestsPerMin,
	)
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s (store=%s)...", srv.Addr, config.AppConfig.StoreDriver)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	stop()

	logger.Sugar().Info("main: server stopped gracefully")
}
