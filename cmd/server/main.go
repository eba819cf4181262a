package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/nemean-dev/cdl-admin/docs"
	"github.com/nemean-dev/cdl-admin/internal/application/bulksync"
	"github.com/nemean-dev/cdl-admin/internal/application/inventory"
	"github.com/nemean-dev/cdl-admin/internal/application/reconciliation"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/cache"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/config"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/ecommerce"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/logger"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/persistence"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/scheduler"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/storage"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/telemetry"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/handler"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/middleware"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/router"
)

//	@title			CDL Admin API
//	@version		1.0
//	@description	Shopify catalog sync, vendor reconciliation and batch inventory actions

//	@contact.name	CDL admin maintainers

//	@host		localhost:8080
//	@BasePath	/

//	@externalDocs.description	Shopify Admin GraphQL API
//	@externalDocs.url			https://shopify.dev/docs/api/admin-graphql

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CDL admin",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: traces, metrics and logs share one collector configuration;
	// profiling pushes to its own server when an address is set
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		Profiler: telemetry.ProfilerConfig{
			ServerAddress:        cfg.Telemetry.ProfilerAddress,
			BasicAuthUser:        cfg.Telemetry.ProfilerUser,
			BasicAuthPassword:    cfg.Telemetry.ProfilerPassword,
			MutexProfileFraction: cfg.Telemetry.ProfilerMutexFraction,
		},
	}
	providers, err := telemetry.Setup(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = providers.Bridge(log, zapcore.InfoLevel)

	meter := providers.Meter(cfg.Telemetry.ServiceName)
	integrationMetrics, err := telemetry.NewIntegrationMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create integration metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	stateRepo := persistence.NewGormStateRepository(db.DB)
	townRepo := persistence.NewGormTownRepository(db.DB)
	syncJobRepo := persistence.NewGormSyncJobRepository(db.DB)

	// Object storage for export archives, reports and intake sheets
	blobStore, err := storage.Open(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to open object storage", zap.Error(err))
	}
	defer func() {
		if err := blobStore.Close(); err != nil {
			log.Error("Error closing object storage", zap.Error(err))
		}
	}()
	archive := storage.NewArchive(blobStore, log)
	storageService := storage.NewService(blobStore, log)

	// Reconciliation lock
	locker, closeLocker, err := cache.NewLockerFactory(cfg.Redis, cache.WithLogger(log)).CreateLocker(ctx)
	if err != nil {
		log.Fatal("Failed to create reconciliation lock", zap.Error(err))
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Error("Error closing lock client", zap.Error(err))
		}
	}()

	// Store client
	shopifyCfg, err := ecommerce.NewShopifyConfig(cfg.Shopify.Store, cfg.Shopify.AccessToken,
		ecommerce.WithAPIVersion(cfg.Shopify.APIVersion),
		ecommerce.WithLocationID(cfg.Shopify.LocationID),
		ecommerce.WithBaseURL(cfg.Shopify.BaseURL),
		ecommerce.WithTimeouts(cfg.Shopify.ConnectTimeout, cfg.Shopify.ReadTimeout),
		ecommerce.WithDefaultThrottleWait(cfg.Shopify.DefaultThrottleWait),
	)
	if err != nil {
		log.Fatal("Invalid Shopify configuration", zap.Error(err))
	}
	executor, err := ecommerce.NewShopifyClient(shopifyCfg,
		ecommerce.WithShopifyLogger(log),
		ecommerce.WithShopifyMetrics(integrationMetrics),
	)
	if err != nil {
		log.Fatal("Failed to create Shopify client", zap.Error(err))
	}
	shopifyCatalog := ecommerce.NewShopifyCatalog(executor, shopifyCfg.LocationID, log)
	bulkGateway := ecommerce.NewShopifyBulkGateway(executor, ecommerce.WithBulkLogger(log))

	// Application services
	engine := reconciliation.NewEngine(vendorRepo, stateRepo, townRepo, locker,
		reconciliation.WithLogger(log),
		reconciliation.WithLockTTL(cfg.Reconciliation.LockTTL),
		reconciliation.WithMetrics(integrationMetrics),
	)
	syncService := bulksync.NewService(
		bulksync.Config{
			MaxDuration:     cfg.BulkSync.MaxDuration,
			ArchiveKey:      cfg.BulkSync.ArchiveKey,
			VendorReportKey: cfg.BulkSync.VendorReportKey,
		},
		bulkGateway,
		syncJobRepo,
		archive,
		storageService,
		engine,
		bulksync.WithLogger(log),
		bulksync.WithMetrics(integrationMetrics),
	)
	inventoryService := inventory.NewService(shopifyCatalog,
		inventory.WithLogger(log),
		inventory.WithSheetSource(storageService),
	)

	// Background polling of bulk operations
	var worker *scheduler.BulkSyncWorker
	if cfg.BulkSync.Enabled {
		workerCfg := scheduler.DefaultBulkSyncWorkerConfig()
		if cfg.BulkSync.Workers > 0 {
			workerCfg.Workers = cfg.BulkSync.Workers
		}
		if cfg.BulkSync.QueueSize > 0 {
			workerCfg.QueueSize = cfg.BulkSync.QueueSize
		}
		if cfg.BulkSync.PollInterval > 0 {
			workerCfg.PollInterval = cfg.BulkSync.PollInterval
		}
		worker, err = scheduler.NewBulkSyncWorker(workerCfg, syncService, log)
		if err != nil {
			log.Fatal("Failed to create bulk sync worker", zap.Error(err))
		}
		syncService.SetSubmitter(worker)
		if err := worker.Start(ctx); err != nil {
			log.Fatal("Failed to start bulk sync worker", zap.Error(err))
		}
	} else {
		log.Warn("Bulk sync worker disabled; triggered jobs will not be polled")
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	ginEngine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = ginEngine.SetTrustedProxies(nil)
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = providers.Enabled()

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(middleware.Tracing(tracingCfg))
	ginEngine.Use(middleware.SpanEnricher())
	ginEngine.Use(logger.GinMiddleware(log, "/health"))
	ginEngine.Use(httpMetrics)
	ginEngine.Use(middleware.Secure())
	ginEngine.Use(middleware.CORSWithConfig(corsConfig))
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Routes
	handler.NewSystemHandler(version,
		handler.WithAPIDocs(cfg.Swagger.Enabled),
		handler.WithHealthCheck("database", func(context.Context) error { return db.Ping() }),
		handler.WithHealthCheck("storage", func(ctx context.Context) error {
			_, err := blobStore.Exists(ctx, ".health")
			return err
		}),
	).RegisterRoutes(ginEngine)

	r := router.NewRouter(ginEngine, router.WithAPIVersion("v1"))
	r.Register(handler.NewBulkSyncHandler(syncService).Routes()).
		Register(handler.NewVendorHandler(vendorRepo).Routes()).
		Register(handler.NewInventoryHandler(inventoryService).Routes())
	for _, rt := range r.Setup() {
		log.Debug("Route mounted", zap.String("method", rt.Method), zap.String("path", rt.Path))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		if err := worker.Stop(shutdownCtx); err != nil {
			log.Error("Bulk sync worker did not stop cleanly", zap.Error(err))
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
