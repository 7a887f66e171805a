package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sammy002621/parking-management-system-backend/api/swagger"
	"github.com/sammy002621/parking-management-system-backend/internal/handler"
	"github.com/sammy002621/parking-management-system-backend/internal/middleware"
	"github.com/sammy002621/parking-management-system-backend/internal/models"
	"github.com/sammy002621/parking-management-system-backend/internal/repository"
	"github.com/sammy002621/parking-management-system-backend/internal/service"
	"github.com/sammy002621/parking-management-system-backend/pkg/cache"
	"github.com/sammy002621/parking-management-system-backend/pkg/config"
	"github.com/sammy002621/parking-management-system-backend/pkg/database"
	"github.com/sammy002621/parking-management-system-backend/pkg/logger"
	"github.com/sammy002621/parking-management-system-backend/pkg/mailer"
	corsmiddleware "github.com/sammy002621/parking-management-system-backend/pkg/middleware/cors"
	reqidmiddleware "github.com/sammy002621/parking-management-system-backend/pkg/middleware/requestid"
)

// @title Parking Management API
// @version 1.0.0
// @description Vehicle parking slot management and allocation backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	slotRepo := repository.NewParkingSlotRepository(db)
	requestRepo := repository.NewSlotRequestRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	var mail mailer.Mailer = mailer.Noop{}
	if cfg.Notifications.Enabled {
		mail = mailer.NewSMTP(cfg.SMTP)
	}
	notificationSvc := service.NewNotificationService(mail, cfg.Notifications.Workers, cfg.Notifications.Enabled, logr)

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "parking-management",
	})
	userSvc := service.NewUserService(userRepo, auditRepo, validate, logr)
	vehicleSvc := service.NewVehicleService(vehicleRepo, requestRepo, auditRepo, validate, logr)
	slotSvc := service.NewParkingSlotService(slotRepo, requestRepo, auditRepo, cacheSvc, cfg.Slots.AvailabilityCacheTTL, validate, logr)
	allocationSvc := service.NewAllocationService(requestRepo, vehicleRepo, slotRepo, userRepo, auditRepo, notificationSvc, cacheSvc, validate, logr)
	auditSvc := service.NewAuditService(auditRepo, logr)
	dashboardSvc := service.NewDashboardService(userRepo, vehicleRepo, slotRepo, requestRepo, metricsSvc, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	reportSvc := service.NewReportService(requestRepo, slotRepo, cfg.Reports.Enabled, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	vehicleHandler := handler.NewVehicleHandler(vehicleSvc)
	slotHandler := handler.NewParkingSlotHandler(slotSvc)
	requestHandler := handler.NewSlotRequestHandler(allocationSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	notificationSvc.Start(rootCtx)
	defer notificationSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	users := api.Group("/users", middleware.JWT(authSvc))
	{
		users.GET("/me", userHandler.GetProfile)
		users.PUT("/me", userHandler.UpdateProfile)
		users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
		users.GET("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Get)
		users.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Update)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)
	}

	vehicles := api.Group("/vehicles", middleware.JWT(authSvc))
	{
		vehicles.POST("", vehicleHandler.Create)
		vehicles.GET("", vehicleHandler.List)
		vehicles.GET("/:id", vehicleHandler.Get)
		vehicles.PUT("/:id", vehicleHandler.Update)
		vehicles.DELETE("/:id", vehicleHandler.Delete)
	}

	slots := api.Group("/parking-slots", middleware.JWT(authSvc))
	{
		slots.GET("", slotHandler.List)
		slots.GET("/:id", slotHandler.Get)
		slots.POST("", middleware.RequireRoles(models.RoleAdmin), slotHandler.Create)
		slots.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), slotHandler.Update)
		slots.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), slotHandler.Delete)
	}

	requests := api.Group("/slot-requests", middleware.JWT(authSvc))
	{
		requests.POST("", requestHandler.Create)
		requests.GET("", requestHandler.List)
		requests.GET("/:id", requestHandler.Get)
		requests.PUT("/:id", requestHandler.Update)
		requests.POST("/:id/cancel", requestHandler.Cancel)
		requests.POST("/:id/approve", middleware.RequireRoles(models.RoleAdmin), requestHandler.Approve)
		requests.POST("/:id/reject", middleware.RequireRoles(models.RoleAdmin), requestHandler.Reject)
	}

	api.GET("/action-logs", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), auditHandler.List)

	if cfg.Dashboard.Enabled {
		api.GET("/dashboard", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Summary)
	}
	if cfg.Reports.Enabled {
		api.GET("/reports/:subject", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), reportHandler.Generate)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
