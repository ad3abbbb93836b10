package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appgrade "github.com/dealerlink/backend/internal/application/grade"
	appsettlement "github.com/dealerlink/backend/internal/application/settlement"
	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/infrastructure/cache"
	"github.com/dealerlink/backend/internal/infrastructure/config"
	"github.com/dealerlink/backend/internal/infrastructure/event"
	"github.com/dealerlink/backend/internal/infrastructure/logger"
	"github.com/dealerlink/backend/internal/infrastructure/persistence"
	"github.com/dealerlink/backend/internal/interfaces/http/handler"
	"github.com/dealerlink/backend/internal/interfaces/http/middleware"
	"github.com/dealerlink/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting DealerLink settlement engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	policyRepo := persistence.NewGormPolicyRepository(db.DB)
	assignmentRepo := persistence.NewGormPolicyAssignmentRepository(db.DB)
	rateMatrixRepo := persistence.NewGormRateMatrixRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)

	// Read-through cache over the rate matrix
	rateCache, err := cache.NewRateCache(cfg.Cache, cfg.Redis, rateMatrixRepo, log)
	if err != nil {
		log.Fatal("Failed to initialize rate cache", zap.Error(err))
	}
	defer func() {
		if err := rateCache.Close(); err != nil {
			log.Error("Error closing rate cache", zap.Error(err))
		}
	}()

	// Domain resolvers
	hierarchy := network.NewHierarchyResolver(companyRepo)
	rateResolver := policy.NewRateResolver(assignmentRepo, rateCache)

	// Transaction scopes
	settlementTxScope := persistence.NewGormSettlementTransactionScope(db.DB)
	gradeTxScope := persistence.NewGormGradeTransactionScope(db.DB)

	// Event bus and idempotency store
	eventBus := event.NewInMemoryEventBus(log)
	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Event, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Application services
	trackerService := appgrade.NewTrackerService(policyRepo, gradeTxScope, eventBus, log)
	generator := appsettlement.NewGenerator(companyRepo, hierarchy, policyRepo, rateResolver,
		settlementTxScope, trackerService, eventBus, log)
	lifecycleService := appsettlement.NewLifecycleService(settlementRepo, eventBus, log)

	// Order approval events drive settlement generation; duplicates from
	// at-least-once delivery are absorbed by the idempotency store first and
	// the settlement uniqueness constraint second.
	orderHandler := appsettlement.NewOrderFinalApprovedHandler(generator, log)
	idempotencyCfg := shared.DefaultIdempotencyConfig()
	if cfg.Event.IdempotencyTTL > 0 {
		idempotencyCfg.TTL = cfg.Event.IdempotencyTTL
	}
	eventBus.Subscribe(
		event.NewIdempotentHandler(orderHandler, idempotencyStore, idempotencyCfg, log),
		orderHandler.EventTypes()...,
	)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// HTTP handlers
	companyHandler := handler.NewCompanyHandler(companyRepo, hierarchy)
	policyHandler := handler.NewPolicyHandler(policyRepo, assignmentRepo, rateMatrixRepo, rateCache)
	settlementHandler := handler.NewSettlementHandler(generator, lifecycleService)
	gradeHandler := handler.NewGradeHandler(trackerService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(companyHandler).
		Register(policyHandler).
		Register(settlementHandler).
		Register(gradeHandler).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
