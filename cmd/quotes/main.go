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
	"github.com/chauffio/chauffio/internal/invoices"
	"github.com/chauffio/chauffio/internal/quotes"
	"github.com/chauffio/chauffio/internal/subcontracting"
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/config"
	"github.com/chauffio/chauffio/pkg/database"
	"github.com/chauffio/chauffio/pkg/eventbus"
	"github.com/chauffio/chauffio/pkg/logger"
	"github.com/chauffio/chauffio/pkg/middleware"
	"go.uber.org/zap"
)

const (
	serviceName = "quotes-service"
	version     = "1.0.0"

	autoExpiryInterval  = 5 * time.Minute
	autoExpiryBatchSize = 200
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

	logger.Info("Starting quotes service",
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

	var bus *eventbus.Bus
	if cfg.Events.Enabled {
		bus, err = eventbus.New(eventbus.Config{
			URL:        cfg.Events.URL,
			Name:       serviceName,
			StreamName: cfg.Events.StreamName,
		})
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer bus.Close()
	}

	quoteRepo := quotes.NewRepository(db)
	quoteService := quotes.NewService(quoteRepo, bus)
	quoteHandler := quotes.NewHandler(quoteService)

	contactRepo := contacts.NewRepository(db)
	invoiceRepo := invoices.NewRepository(db)
	invoiceService := invoices.NewService(invoiceRepo, quoteRepo, contactRepo, bus)
	invoiceHandler := invoices.NewHandler(invoiceService)

	subRepo := subcontracting.NewRepository(db)
	subService := subcontracting.NewService(subRepo, bus)
	subHandler := subcontracting.NewHandler(subService)

	rootCtx, stopExpiry := context.WithCancel(context.Background())
	defer stopExpiry()
	go quoteService.RunAutoExpiry(rootCtx, autoExpiryInterval, autoExpiryBatchSize)
	logger.Info("Auto-expiry runner started",
		zap.Duration("interval", autoExpiryInterval),
		zap.Int("batch_size", autoExpiryBatchSize),
	)

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
	if bus != nil {
		healthChecks["nats"] = func() error {
			if !bus.Connected() {
				return fmt.Errorf("nats disconnected")
			}
			return nil
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	quoteHandler.RegisterRoutes(api)
	invoiceHandler.RegisterRoutes(api)
	subHandler.RegisterRoutes(api)

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
	stopExpiry()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
