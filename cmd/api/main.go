package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/enroll-leads-api/api/swagger"
	"github.com/noah-isme/enroll-leads-api/internal/handler"
	"github.com/noah-isme/enroll-leads-api/internal/middleware"
	"github.com/noah-isme/enroll-leads-api/internal/repository"
	"github.com/noah-isme/enroll-leads-api/internal/service"
	"github.com/noah-isme/enroll-leads-api/pkg/cache"
	"github.com/noah-isme/enroll-leads-api/pkg/config"
	"github.com/noah-isme/enroll-leads-api/pkg/database"
	"github.com/noah-isme/enroll-leads-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/enroll-leads-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/enroll-leads-api/pkg/middleware/requestid"
	"github.com/noah-isme/enroll-leads-api/pkg/sheets"
)

// @title Enrollment Leads API
// @version 1.0.0
// @description Student enrollment lead capture and admin dashboard API
// @BasePath /api
// @schemes http https

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis only backs the rate limiter, so a missing instance degrades to
	// unlimited traffic rather than a failed boot.
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
			redisClient = nil
		}
	}

	mirror, err := sheets.New(context.Background(), cfg.Sheets, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init sheets mirror", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	leadRepo := repository.NewLeadRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	leadSvc := service.NewLeadService(leadRepo, mirror, validate, logr, metricsSvc)
	authSvc := service.NewAuthService(adminRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	leadHandler := handler.NewLeadHandler(leadSvc)
	authHandler := handler.NewAuthHandler(authSvc, cfg.Cookie)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	limiter := middleware.NewRateLimiter(redisClient, logr)
	requireAuth := middleware.Auth(authSvc, cfg.Cookie.Name)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
	api.Use(limiter.Limit("general", cfg.RateLimit.GeneralLimit, cfg.RateLimit.Window))

	auth := api.Group("/auth")
	auth.POST("/login", limiter.Limit("login", cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow), authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", requireAuth, authHandler.Me)

	leads := api.Group("/leads")
	leads.POST("", limiter.Limit("submit", cfg.RateLimit.SubmitLimit, cfg.RateLimit.SubmitWindow), leadHandler.Create)
	leads.GET("", requireAuth, leadHandler.List)
	leads.GET("/export", requireAuth, leadHandler.Export)
	leads.GET("/:id", requireAuth, leadHandler.Get)
	leads.PATCH("/:id/status", requireAuth, leadHandler.UpdateStatus)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "mirror_active", mirror.Active())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
