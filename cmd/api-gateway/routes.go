package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/findnest-api/internal/handler"
	"github.com/noah-isme/findnest-api/internal/middleware"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/service"
	"github.com/noah-isme/findnest-api/pkg/config"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/findnest-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/findnest-api/pkg/middleware/requestid"
	"github.com/noah-isme/findnest-api/pkg/response"
)

type routeHandlers struct {
	auth      *handler.AuthHandler
	items     *handler.ItemHandler
	dashboard *handler.DashboardHandler
	reports   *handler.ReportHandler
	users     *handler.UserHandler
	uploads   *handler.UploadHandler
	metrics   *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metricsSvc *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/auth/config", h.auth.Config)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	secured.GET("/auth/me", h.auth.Me)

	items := secured.Group("/items")
	items.GET("", h.items.List)
	items.GET("/gallery", h.items.Gallery)
	items.GET("/history", h.items.History)
	items.GET("/categories", h.items.Categories)
	items.GET("/:id", h.items.Get)
	items.POST("/report", h.items.Report)
	items.POST("/save", h.items.Report)
	items.PUT("/:id", h.items.Update)
	items.PUT("/updateItem/:id", h.items.Update)
	items.PATCH("/:id", h.items.Claim)
	items.PATCH("/:id/turnover", h.items.Turnover)
	items.DELETE("/:id", h.items.Delete)

	dashboard := secured.Group("/dashboard")
	dashboard.GET("", h.dashboard.Summary)
	dashboard.GET("/rows", h.dashboard.Rows)
	dashboard.GET("/report", h.dashboard.Report)

	if h.reports != nil {
		secured.POST("/reports", h.reports.GenerateReport)
		secured.GET("/reports/:id", h.reports.ReportStatus)
		api.GET("/export/:token", h.reports.DownloadReport)
	} else {
		unavailable := func(c *gin.Context) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "report jobs are disabled"))
		}
		secured.POST("/reports", unavailable)
		secured.GET("/reports/:id", unavailable)
		api.GET("/export/:token", unavailable)
	}

	users := secured.Group("/users")
	users.GET("", h.users.List)
	users.GET("/count", h.users.Count)
	users.GET("/:id", h.users.Get)
	users.POST("", h.users.Create)
	users.PUT("/:id", h.users.Update)
	users.DELETE("/:id", h.users.Delete)
	selfOrAdmin := middleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin), middleware.SelfAccess)
	users.POST("/:id/profile-picture", selfOrAdmin, h.users.UploadProfilePicture)
	users.PATCH("/:id/profile-picture", selfOrAdmin, h.users.SetProfilePicture)

	secured.POST("/uploads/images", h.uploads.Images)
	secured.GET("/system/metrics", middleware.RequireRoles(models.RoleSuperAdmin), h.metrics.System)

	return r
}
