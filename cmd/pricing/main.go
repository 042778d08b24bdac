package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chauffio/chauffio/internal/contacts"
	"github.com/chauffio/chauffio/internal/pricing"
	"github.com/chauffio/chauffio/internal/routing"
	"github.com/chauffio/chauffio/internal/vehicles"
	"github.com/chauffio/chauffio/internal/zones"
	"github.com/chauffio/chauffio/pkg/cache"
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/config"
	"github.com/chauffio/chauffio/pkg/database"
	"github.com/chauffio/chauffio/pkg/logger"
	"github.com/chauffio/chauffio/pkg/middleware"
	redisclient "github.com/chauffio/chauffio/pkg/redis"
	"go.uber.org/zap"
)

const (
	serviceName = "pricing-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting pricing service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	var (
		redisClient  *redisclient.Client
		cacheManager *cache.Manager
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisclient.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
		cacheManager = cache.NewManager(redisClient)
		logger.Info("Redis cache enabled", zap.String("addr", cfg.Redis.RedisAddr()))
	}

	var routeProvider routing.Provider
	if cfg.Routing.Enabled {
		routeProvider = routing.NewGoogleProvider(cfg.Routing)
		logger.Info("Routing provider enabled", zap.String("base_url", cfg.Routing.BaseURL))
	}
	routingService := routing.NewService(routeProvider, cacheManager)

	zoneRepo := zones.NewRepository(db)
	zoneService := zones.NewService(zoneRepo, cacheManager)
	contactRepo := contacts.NewRepository(db)
	vehicleRepo := vehicles.NewRepository(db)

	pricingRepo := pricing.NewRepository(db)
	pricingService := pricing.NewService(contactRepo, vehicleRepo, zoneService, pricingRepo, routingService, cacheManager, cfg.Pricing)

	pricingHandler := pricing.NewHandler(pricingService)
	zoneHandler := zones.NewHandler(zoneService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(time.Duration(cfg.Server.WriteTimeout) * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS())

	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Client.Ping(ctx).Err()
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	pricingHandler.RegisterRoutes(api)
	zoneHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
