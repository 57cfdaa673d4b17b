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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/application"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/config"
	bookingEvents "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/events"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/cache"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/middleware"
)

const serviceName = "service-hotel-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("service-hotel-booking exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("service-hotel-booking stopped")
}

func run(ctx context.Context, cfg *config.ServiceConfig, log *zap.Logger) error {
	log.Info("starting service-hotel-booking",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
	)

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	// Cache: redis when configured, otherwise process-local
	var cacheStore cache.Store = cache.NewMemoryStore()
	if cfg.RedisConfig.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		cacheStore = cache.NewRedisStore(rdb)
		log.Info("redis cache enabled", zap.String("addr", cfg.RedisConfig.Addr))
	}

	// Events: kafka when brokers are configured
	var publisher application.EventPublisher = application.NopPublisher{}
	var producer *kafka.Producer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		log.Warn("no kafka brokers configured, booking events are disabled")
	}

	// Initialize application services
	oracle := application.NewAvailabilityService(store.hotels, store.bookings, log)
	reservationService := application.NewReservationService(
		oracle,
		store.hotels,
		store.customers,
		store.bookings,
		cacheStore,
		publisher,
		log,
	)
	bookingService := application.NewBookingService(store.bookings, publisher, log)
	hotelService := application.NewHotelService(store.hotels, cacheStore, log)

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTokenTTL)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	if cfg.RateLimitPerMin > 0 {
		router.Use(middleware.NewRateLimiter(cfg.RateLimitPerMin).Middleware(log))
	}

	// Register health check routes
	checks := map[string]health.Check{"database": store.ping}
	if cfg.RedisConfig.Addr != "" {
		checks["cache"] = cacheStore.Ping
	}
	health.NewHandler(serviceName, checks).RegisterRoutes(router)

	// Register routes
	api := &router.RouterGroup
	handler.NewHotelHandler(hotelService, oracle).RegisterRoutes(api)
	handler.NewBookingHandler(reservationService, bookingService).RegisterRoutes(api)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(api, jwtManager)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if producer != nil {
		groupID := cfg.KafkaConfig.GroupPrefix + "-commands"
		commandConsumer := bookingEvents.NewCommandConsumer(cfg.KafkaConfig.Brokers, groupID, bookingService, log)
		defer func() { _ = commandConsumer.Close() }()

		g.Go(func() error {
			log.Info("starting booking command consumer", zap.String("group_id", groupID))
			if err := commandConsumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("command consumer: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down service-hotel-booking...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced shutdown", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
