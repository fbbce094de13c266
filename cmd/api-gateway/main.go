package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/findnest-api/api/swagger"
	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/handler"
	"github.com/noah-isme/findnest-api/internal/repository"
	"github.com/noah-isme/findnest-api/internal/service"
	"github.com/noah-isme/findnest-api/pkg/cache"
	"github.com/noah-isme/findnest-api/pkg/config"
	"github.com/noah-isme/findnest-api/pkg/database"
	"github.com/noah-isme/findnest-api/pkg/jobs"
	"github.com/noah-isme/findnest-api/pkg/logger"
	"github.com/noah-isme/findnest-api/pkg/storage"
	"github.com/noah-isme/findnest-api/pkg/upstream"
)

// @title FindNest API
// @version 1.0.0
// @description Lost and found gateway over the FindNest backend
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := service.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		logr.Warn("unknown display timezone, using UTC", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	client := upstream.NewClient(cfg.Upstream, logr, upstream.WithObserver(metricsSvc.ObserveUpstream))
	itemRepo := repository.NewItemRepository(client)
	userRepo := repository.NewUserRepository(client)
	validate := service.NewValidator()

	readiness := map[string]handler.ReadinessCheck{}

	var cacheBackend service.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
			cacheBackend = cacheRepo
			readiness["redis"] = cacheRepo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheBackend, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheBackend != nil)

	snapshots := service.NewSnapshotService(itemRepo, userRepo, cacheSvc, cfg.Snapshot.CacheTTL, logr)
	dashboardSvc := service.NewDashboardService(snapshots, cacheSvc, logr, service.DashboardServiceConfig{
		CacheTTL:    cfg.Dashboard.CacheTTL,
		RecentLimit: cfg.Dashboard.RecentLimit,
		Location:    loc,
	})
	authSvc := service.NewAuthService(userRepo, logr, service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	uploadCfg := service.UploadConfig{
		MaxFiles:     cfg.Uploads.MaxFiles,
		MaxFileBytes: cfg.Uploads.MaxFileBytes,
		MaxDimension: cfg.Uploads.MaxDimension,
	}
	var uploadSvc *service.UploadService
	if objects, err := storage.NewObjectStore(ctx, cfg.Storage); err != nil {
		logr.Warn("object storage unavailable, uploads disabled", zap.Error(err))
		uploadSvc = service.NewUploadService(nil, metricsSvc, logr, uploadCfg)
	} else {
		uploadSvc = service.NewUploadService(objects, metricsSvc, logr, uploadCfg)
	}

	itemSvc := service.NewItemService(itemRepo, snapshots, uploadSvc, cacheSvc, validate, logr, loc)
	userSvc := service.NewUserService(userRepo, snapshots, uploadSvc, cacheSvc, validate, logr)

	exportCfg := service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL, Location: loc}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	var exportSvc *service.ExportService
	filesReady := false
	if files, err := storage.NewLocalStorage(cfg.Reports.StorageDir); err != nil {
		logr.Warn("report storage unavailable, async reports disabled", zap.Error(err))
		exportSvc = service.NewExportService(nil, signer, metricsSvc, logr, exportCfg)
	} else {
		exportSvc = service.NewExportService(files, signer, metricsSvc, logr, exportCfg)
		filesReady = true
	}

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled && filesReady {
		db, queue, err := startReportJobs(ctx, cfg, logr, dashboardSvc, exportSvc, validate, loc, &reportSvc)
		if err != nil {
			logr.Error("report jobs disabled", zap.Error(err))
		} else {
			defer db.Close() //nolint:errcheck
			defer queue.Stop()
			readiness["postgres"] = db.PingContext
		}
	}

	clientConfig := dto.ClientConfigResponse{
		Issuer:          cfg.JWT.Issuer,
		DisplayTimezone: loc.String(),
		MaxImages:       uploadSvc.MaxFiles(),
		MaxImageBytes:   cfg.Uploads.MaxFileBytes,
		ReportJobs:      reportSvc != nil,
		Catalog:         itemSvc.Catalog(),
	}

	handlers := routeHandlers{
		auth:      handler.NewAuthHandler(authSvc, clientConfig),
		items:     handler.NewItemHandler(itemSvc),
		dashboard: handler.NewDashboardHandler(dashboardSvc, exportSvc),
		users:     handler.NewUserHandler(userSvc),
		uploads:   handler.NewUploadHandler(uploadSvc),
		metrics:   handler.NewMetricsHandler(metricsSvc, readiness),
	}
	if reportSvc != nil {
		handlers.reports = handler.NewReportHandler(reportSvc, logr)
	}

	router := newRouter(cfg, logr, authSvc, metricsSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// startReportJobs connects the job store, starts the worker queue and replays pending jobs.
func startReportJobs(
	ctx context.Context,
	cfg *config.Config,
	logr *zap.Logger,
	aggregator *service.DashboardService,
	exporter *service.ExportService,
	validate *validator.Validate,
	loc *time.Location,
	out **service.ReportService,
) (*sqlx.DB, *jobs.Queue, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repo := repository.NewReportRepository(db)
	worker := service.NewReportWorker(repo, aggregator, exporter, logr)
	var reportSvc *service.ReportService
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
		OnExhausted: func(ctx context.Context, job jobs.Job, err error) {
			reportSvc.MarkExhausted(ctx, job, err)
		},
	})
	reportSvc = service.NewReportService(repo, queue, exporter, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		Location:        loc,
	})

	queue.Start(ctx)
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)
	*out = reportSvc
	return db, queue, nil
}
