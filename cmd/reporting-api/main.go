package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/eduhub-vn/reporting-api/api/swagger"
	"github.com/eduhub-vn/reporting-api/internal/handler"
	"github.com/eduhub-vn/reporting-api/internal/middleware"
	"github.com/eduhub-vn/reporting-api/internal/models"
	"github.com/eduhub-vn/reporting-api/internal/repository"
	"github.com/eduhub-vn/reporting-api/internal/service"
	"github.com/eduhub-vn/reporting-api/internal/upstream"
	"github.com/eduhub-vn/reporting-api/pkg/cache"
	"github.com/eduhub-vn/reporting-api/pkg/config"
	"github.com/eduhub-vn/reporting-api/pkg/database"
	"github.com/eduhub-vn/reporting-api/pkg/logger"
	corsmiddleware "github.com/eduhub-vn/reporting-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eduhub-vn/reporting-api/pkg/middleware/requestid"
)

// @title EduHub Reporting API
// @version 0.1.0
// @description Dashboard reporting aggregation service
// @BasePath /api/v1
// @schemes http

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

	location, err := time.LoadLocation(cfg.Dashboard.Timezone)
	if err != nil {
		logr.Sugar().Warnw("invalid dashboard timezone, using local", "timezone", cfg.Dashboard.Timezone)
		location = time.Local
	}

	metrics := service.NewMetricsService()
	checks := []handler.ReadinessCheck{}

	var (
		source   service.FragmentSource
		resolver service.StudentIDResolver
	)
	switch cfg.Dashboard.Source {
	case config.SourceDatabase:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		repo := repository.NewReportRepository(db)
		source, resolver = repo, repo
		checks = append(checks, handler.ReadinessCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return db.PingContext(ctx) },
		})
	default:
		client := upstream.NewClient(cfg.Upstream, logr)
		source, resolver = client, client
	}

	var cacheService *service.CacheService
	if cfg.Dashboard.IdentityCache {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, identity cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.IdentityCacheTTL, logr, true)
			checks = append(checks, handler.ReadinessCheck{
				Name:  "redis",
				Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			})
		}
	}

	identity := service.NewIdentityService(resolver, cacheService, cfg.Dashboard.IdentityCacheTTL, logr)
	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Source:   source,
		Identity: identity,
		Metrics:  metrics,
		Logger:   logr,
		Config: service.DashboardServiceConfig{
			WindowDays:      cfg.Dashboard.WindowDays,
			TopCoursesLimit: cfg.Dashboard.TopCoursesLimit,
			Location:        location,
		},
	})
	auth := service.NewAuthService(cfg.JWT)

	dashboardHandler := handler.NewDashboardHandler(dashboard, nil)
	if cfg.Exports.Enabled {
		dashboardHandler = handler.NewDashboardHandler(dashboard, service.NewExportService(dashboard))
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(auth))
	api.Use(middleware.WithResponseMeta())

	api.GET("/dashboard/admin",
		middleware.RequireRoles(models.RoleAdmin, models.RoleStaff),
		dashboardHandler.Admin,
	)
	api.GET("/dashboard/admin/export",
		middleware.RequireRoles(models.RoleAdmin, models.RoleStaff),
		dashboardHandler.Export,
	)
	api.GET("/dashboard/student",
		middleware.RequireRoles(models.RoleStudent),
		dashboardHandler.Student,
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "source", cfg.Dashboard.Source)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
