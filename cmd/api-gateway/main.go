package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/scrimplan/scrimplan-api/api/swagger"
	"github.com/scrimplan/scrimplan-api/internal/handler"
	"github.com/scrimplan/scrimplan-api/internal/middleware"
	"github.com/scrimplan/scrimplan-api/internal/repository"
	"github.com/scrimplan/scrimplan-api/internal/service"
	"github.com/scrimplan/scrimplan-api/pkg/cache"
	"github.com/scrimplan/scrimplan-api/pkg/config"
	"github.com/scrimplan/scrimplan-api/pkg/database"
	"github.com/scrimplan/scrimplan-api/pkg/export"
	"github.com/scrimplan/scrimplan-api/pkg/logger"
	corsmiddleware "github.com/scrimplan/scrimplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/scrimplan/scrimplan-api/pkg/middleware/requestid"
)

// @title ScrimPlan API
// @version 0.1.0
// @description Training availability and schedule planning for esports teams
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Planner.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, schedule cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.ScheduleCacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()

	teamRepo := repository.NewTeamRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	preferenceRepo := repository.NewTeamPreferenceRepository(db)
	slotRepo := repository.NewTrainingSlotRepository(db)

	authSvc := service.NewAuthService(cfg.JWT)
	plannerSvc := service.NewPlannerService(validate, logr)
	scheduleSvc := service.NewScheduleService(
		teamRepo,
		availabilityRepo,
		absenceRepo,
		preferenceRepo,
		slotRepo,
		plannerSvc,
		db,
		cacheSvc,
		metricsSvc,
		logr,
		service.ScheduleServiceConfig{
			HorizonDays:      cfg.Planner.HorizonDays,
			ScheduleCacheTTL: cfg.Planner.ScheduleCacheTTL,
		},
	)
	availabilitySvc := service.NewAvailabilityService(teamRepo, availabilityRepo, absenceRepo, validate, logr)
	preferenceSvc := service.NewPreferenceService(teamRepo, preferenceRepo, validate, logr)
	exportSvc := service.NewExportService(scheduleSvc, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Export.Enabled, logr)

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, exportSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	preferenceHandler := handler.NewPreferenceHandler(preferenceSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.GET("/ops/metrics", metricsHandler.Snapshot)

		teams := api.Group("/teams/:teamId")
		{
			teams.GET("/availability", availabilityHandler.ListTeam)
			teams.GET("/availability/me", availabilityHandler.ListMine)
			teams.POST("/availability", availabilityHandler.Create)

			teams.GET("/absences", availabilityHandler.ListTeamAbsences)
			teams.GET("/absences/me", availabilityHandler.ListMyAbsences)
			teams.POST("/absences", availabilityHandler.CreateAbsence)

			teams.GET("/preferences", preferenceHandler.Get)
			teams.PUT("/preferences", preferenceHandler.Upsert)

			teams.GET("/schedule", scheduleHandler.Get)
			teams.POST("/schedule/compute", scheduleHandler.Compute)
			teams.GET("/schedule/next", scheduleHandler.Next)
			teams.GET("/schedule/export", scheduleHandler.Export)
		}

		api.DELETE("/availability/:id", availabilityHandler.Delete)
		api.DELETE("/absences/:id", availabilityHandler.DeleteAbsence)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
